// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"rttdash/internal/cli"
	"rttdash/internal/config"
	"rttdash/internal/dashboard"
	"rttdash/internal/instance"
	"rttdash/internal/logframe"
	"rttdash/internal/logging"
	"rttdash/internal/transport"
	"rttdash/internal/tui"
)

var version = "dev"

// flags holds the raw command-line values.
type flags struct {
	configPath string
	stateDir   string
	session    string

	transport  string
	dir        string
	exec       string
	table      string
	timestamps bool
	logEnabled bool
	logDir     string
	theme      string
	logLevel   string
}

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	var f flags
	flag.StringVarP(&f.configPath, "config", "c", "", "config file (default: ~/.config/rttdash/config.yaml)")
	flag.StringVar(&f.stateDir, "state-dir", "", "state directory for locks and diagnostics (default: ~/.local/state/rttdash)")
	flag.StringVar(&f.session, "session", "", "session name used for log file names (default: start time)")
	flag.StringVarP(&f.transport, "transport", "t", "", "transport kind: sim, dir or exec")
	flag.StringVar(&f.dir, "dir", "", "channel directory (implies --transport dir)")
	flag.StringVar(&f.exec, "exec", "", "command whose PTY is channel 0 (implies --transport exec)")
	flag.StringVar(&f.table, "table", "", "structured log table file")
	flag.BoolVar(&f.timestamps, "timestamps", true, "prefix text lines with their receive time")
	flag.BoolVar(&f.logEnabled, "log", false, "write each channel to a log file on exit")
	flag.StringVar(&f.logDir, "log-dir", "", "directory for channel log files")
	flag.StringVar(&f.theme, "theme", "", "catppuccin flavor: latte, frappe, macchiato, mocha")
	flag.StringVar(&f.logLevel, "log-level", "", "diagnostics level: debug, info, warn, error")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, config.DefaultConfig(), f.stateDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := cli.BuildApp(version, cfg, f.stateDir)
	launch, err := app.Execute(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if launch {
		os.Exit(runTUI(cfg, f))
	}
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(f flags) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFrom(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	cfg.Apply(overrides(f, flag.CommandLine.Changed))
	applySimDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// overrides converts the flags that were set on the command line.
func overrides(f flags, changed func(string) bool) config.Overrides {
	var o config.Overrides
	if changed("transport") {
		o.Transport = &f.transport
	}
	if changed("dir") {
		o.Dir = &f.dir
	}
	if changed("exec") {
		o.Command = strings.Fields(f.exec)
	}
	if changed("table") {
		o.Table = &f.table
	}
	if changed("timestamps") {
		o.ShowTimestamps = &f.timestamps
	}
	if changed("log") {
		o.LogEnabled = &f.logEnabled
	}
	if changed("log-dir") {
		o.LogPath = &f.logDir
	}
	if changed("theme") {
		o.Theme = &f.theme
	}
	if changed("log-level") {
		o.LogLevel = &f.logLevel
	}
	return o
}

// applySimDefaults gives the simulated target its matching tabs when the
// config does not list any.
func applySimDefaults(cfg *config.Config) {
	if cfg.Transport.Kind != transport.KindSim || len(cfg.RTT.Channels) > 0 {
		return
	}
	up0, down0, up1, up2 := 0, 0, 1, 2
	cfg.RTT.Channels = []config.ChannelConfig{
		{Up: &up0, Down: &down0, Format: "text"},
		{Up: &up1, Format: "binary"},
		{Up: &up2, Format: "structured"},
	}
}

// loadTable returns the configured table, or the built-in one for the
// simulated target.
func loadTable(cfg config.Config) (*logframe.Table, error) {
	if cfg.RTT.Table != "" {
		return logframe.LoadTable(cfg.RTT.Table)
	}
	if cfg.Transport.Kind == transport.KindSim {
		return logframe.DemoTable(), nil
	}
	return nil, nil
}

// runTUI attaches to the target, runs the dashboard until the operator quits
// and writes the session logs. It returns the process exit code.
func runTUI(cfg config.Config, f flags) int {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: rttdash needs an interactive terminal (try `rttdash channels`)")
		return 1
	}

	dataDir := cli.ResolveDataDir(f.stateDir)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logManager, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, "rttdash.log"),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app").With("session_id", uuid.NewString())
	appLogger.Info("application starting", "version", version, "transport", cfg.Transport.Kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target, err := transport.Open(ctx, transport.Options{
		Kind:    cfg.Transport.Kind,
		Dir:     cfg.Transport.Dir,
		Command: cfg.Transport.Command,
	}, logManager)
	if err != nil {
		appLogger.Error("failed to open transport", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := target.Close(); err != nil {
			appLogger.Warn("error closing transport", "error", err)
		}
	}()

	// One dashboard per target.
	fl, err := instance.Lock(dataDir, target.ID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer instance.Cleanup(dataDir, target.ID(), fl)

	table, err := loadTable(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	dash, err := dashboard.New(target, dashboard.Options{
		Channels:       cfg.RTT.Channels,
		ShowTimestamps: cfg.RTT.ShowTimestamps,
		Table:          table,
		LogEnabled:     cfg.RTT.LogEnabled,
		LogPath:        cfg.RTT.LogPath,
		Session:        f.session,
		Logs:           logManager,
	})
	if err != nil {
		appLogger.Error("failed to build dashboard", "error", err)
		if errors.Is(err, dashboard.ErrMissingTable) {
			fmt.Fprintln(os.Stderr, "Error: structured channels need a table (set rtt.table or --table)")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}

	model := tui.NewModel(dash, tui.Options{
		Theme:        cfg.Theme,
		PollInterval: cfg.PollInterval,
		Logs:         logManager,
		Diagnostics:  logManager.Entries(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	// The terminal is restored by now; file errors go to stderr.
	dash.Quit()
	code := 0
	if err := dash.WriteLogs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing session logs: %v\n", err)
		code = 1
	} else if dash.LogDir() != "" {
		fmt.Fprintf(os.Stderr, "Session %s logs written to %s\n", dash.Session(), dash.LogDir())
	}

	if runErr != nil {
		appLogger.Error("application exited with error", "error", runErr)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		return 1
	}

	appLogger.Info("application stopped")
	return code
}
