// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rttdash/internal/config"
	"rttdash/internal/dashboard"
	"rttdash/internal/instance"
	"rttdash/internal/logframe"
	"rttdash/internal/logging"
	"rttdash/internal/transport"
)

// ResolveDataDir returns the state directory for lock files and the
// diagnostics log. If stateDir is specified, uses that; otherwise
// $XDG_STATE_HOME/rttdash or ~/.local/state/rttdash.
func ResolveDataDir(stateDir string) string {
	if stateDir != "" {
		return stateDir
	}
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "rttdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "state", "rttdash")
	}
	return filepath.Join(home, ".local", "state", "rttdash")
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, cfg config.Config, stateDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "channels",
		Summary: "List the target's channels and the tabs they pair into",
		Usage:   "Usage: rttdash [--transport kind] channels",
		Run: func(w io.Writer, args []string) error {
			return runChannelsCommand(context.Background(), w, cfg)
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock files left by a crashed dashboard",
		Usage:   "Usage: rttdash cleanup",
		Run: func(w io.Writer, args []string) error {
			return runCleanupCommand(w, stateDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: rttdash version",
		Run: func(w io.Writer, args []string) error {
			_, err := fmt.Fprintln(w, version)
			return err
		},
	})

	tableGroup := app.AddGroup("table", "Inspect structured log tables")
	RegisterTableCommands(tableGroup, cfg)

	return app
}

// runChannelsCommand attaches to the configured target long enough to list
// its endpoints and the tabs the dashboard would build from them.
func runChannelsCommand(ctx context.Context, w io.Writer, cfg config.Config) error {
	target, err := transport.Open(ctx, transport.Options{
		Kind:    cfg.Transport.Kind,
		Dir:     cfg.Transport.Dir,
		Command: cfg.Transport.Command,
	}, quietLogs{})
	if err != nil {
		return err
	}
	defer target.Close()

	fmt.Fprintf(w, "target %s\n", target.ID())
	for _, line := range transport.Describe(target) {
		fmt.Fprintf(w, "  %s\n", line)
	}

	pairs, skipped, err := dashboard.Pair(target.UpChannels(), target.DownChannels(), cfg.RTT.Channels)
	for _, i := range skipped {
		fmt.Fprintf(w, "config entry %d (%s) matches no channel\n", i, cfg.RTT.Channels[i].Name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\ntabs\n")
	for i, p := range pairs {
		fmt.Fprintf(w, "  F%-2d %-20s %-10s %s\n", i+1, tabName(p), p.Format, endpoints(p))
	}
	return nil
}

func tabName(p dashboard.Pairing) string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Up != nil && p.Up.Name() != "":
		return p.Up.Name()
	case p.Down != nil && p.Down.Name() != "":
		return p.Down.Name()
	default:
		return "Unnamed channel"
	}
}

func endpoints(p dashboard.Pairing) string {
	var parts []string
	if p.Up != nil {
		parts = append(parts, fmt.Sprintf("up %d", p.Up.Number()))
	}
	if p.Down != nil {
		parts = append(parts, fmt.Sprintf("down %d", p.Down.Number()))
	}
	return strings.Join(parts, ", ")
}

// runCleanupCommand removes locks no live dashboard holds.
func runCleanupCommand(w io.Writer, stateDir string) error {
	dataDir := ResolveDataDir(stateDir)
	removed, err := instance.RemoveStale(dataDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Cleaned up %d stale lock(s).\n", removed)
	return nil
}

// RegisterTableCommands adds the table subcommands to group.
func RegisterTableCommands(group *Group, cfg config.Config) {
	group.AddCommand(&Command{
		Name:    "check",
		Summary: "Validate a table file",
		Usage:   "Usage: rttdash table check [file]\n\nDefaults to rtt.table from the config.",
		Run: func(w io.Writer, args []string) error {
			return runTableCheck(w, tablePath(args, cfg))
		},
	})
	group.AddCommand(&Command{
		Name:    "show",
		Summary: "Print the entries of a table file",
		Usage:   "Usage: rttdash table show [file]\n\nDefaults to rtt.table from the config.",
		Run: func(w io.Writer, args []string) error {
			return runTableShow(w, tablePath(args, cfg))
		},
	})
	group.AddCommand(&Command{
		Name:    "demo",
		Summary: "Print the table used by the simulated target",
		Usage:   "Usage: rttdash table demo",
		Run: func(w io.Writer, args []string) error {
			printTable(w, logframe.DemoTable())
			return nil
		},
	})
}

func tablePath(args []string, cfg config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.RTT.Table
}

func runTableCheck(w io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("no table file given and rtt.table is not set")
	}
	table, err := logframe.LoadTable(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d entries, encoding %s, locations %v\n", path, table.Len(), table.Encoding, table.HasLocations())
	return nil
}

func runTableShow(w io.Writer, path string) error {
	if path == "" {
		return fmt.Errorf("no table file given and rtt.table is not set")
	}
	table, err := logframe.LoadTable(path)
	if err != nil {
		return err
	}
	printTable(w, table)
	return nil
}

func printTable(w io.Writer, table *logframe.Table) {
	for _, entry := range table.Entries() {
		loc := ""
		if l, ok := table.Location(entry.Index); ok {
			loc = fmt.Sprintf("  (%s:%d)", l.File, l.Line)
		}
		fmt.Fprintf(w, "%4d  %-6s %s%s\n", entry.Index, strings.ToUpper(entry.Level), entry.Format, loc)
	}
}

// quietLogs discards transport diagnostics for one-shot commands.
type quietLogs struct{}

func (quietLogs) For(string) *logging.ScopedLogger { return logging.NopLogger() }
