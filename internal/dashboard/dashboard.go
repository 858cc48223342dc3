// pattern: Imperative Shell

package dashboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rttdash/internal/channel"
	"rttdash/internal/config"
	"rttdash/internal/logframe"
	"rttdash/internal/logging"
	"rttdash/internal/transport"
)

// SessionLayout names a session after its start time.
const SessionLayout = "2006-01-02_15-04-05"

var (
	// ErrNoChannels is returned when pairing yields no tab to show.
	ErrNoChannels = errors.New("target exposes no usable channels")
	// ErrMissingTable is returned when a structured channel is configured without a frame table.
	ErrMissingTable = channel.ErrMissingTable
)

// State is the dashboard lifecycle state.
type State int

const (
	Running State = iota
	ShuttingDown
)

func (s State) String() string {
	if s == ShuttingDown {
		return "shutting down"
	}
	return "running"
}

// Options configure a Dashboard.
type Options struct {
	Channels       []config.ChannelConfig
	ShowTimestamps bool
	Table          *logframe.Table

	LogEnabled bool
	LogPath    string
	Session    string // defaults to the start time in SessionLayout

	Logs logging.LoggerProvider
	Now  func() time.Time
}

// Dashboard owns the ordered tabs, the selection and the session metadata.
// All methods must be called from one goroutine.
type Dashboard struct {
	decoders []*channel.Decoder
	selected int
	state    State

	logDir  string
	session string
	logger  *logging.ScopedLogger
}

// New pairs the target's endpoints into tabs. It fails when no tab results
// or when a structured tab has no table. When session logging is enabled
// the log directory is created now; if that fails logging is disabled with
// a warning.
func New(target transport.Target, opts Options) (*Dashboard, error) {
	logs := opts.Logs
	if logs == nil {
		logs = nopProvider{}
	}
	logger := logs.For("dashboard")
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	pairs, skipped, err := Pair(target.UpChannels(), target.DownChannels(), opts.Channels)
	for _, i := range skipped {
		entry := opts.Channels[i]
		logger.Warn("configured channel matches no endpoint, skipping",
			"index", i, "name", entry.Name, "up", optInt(entry.Up), "down", optInt(entry.Down))
	}
	if err != nil {
		return nil, err
	}

	d := &Dashboard{session: opts.Session, logger: logger}
	if d.session == "" {
		d.session = now().Format(SessionLayout)
	}

	for i, p := range pairs {
		if p.Format == channel.FormatStructured && opts.Table == nil {
			return nil, fmt.Errorf("tab %d (%s): %w", i, p.Name, ErrMissingTable)
		}
		dec, err := channel.NewDecoder(channel.Options{
			Up:             p.Up,
			Down:           p.Down,
			Name:           p.Name,
			Format:         p.Format,
			ShowTimestamps: opts.ShowTimestamps,
			Table:          opts.Table,
			Logger:         logs.For(fmt.Sprintf("channel.%d", i)),
			Now:            now,
		})
		if err != nil {
			return nil, fmt.Errorf("tab %d: %w", i, err)
		}
		d.decoders = append(d.decoders, dec)
	}

	if opts.LogEnabled {
		if err := os.MkdirAll(opts.LogPath, 0o755); err != nil {
			logger.Warn("could not create log directory, session logging disabled", "path", opts.LogPath, "error", err)
		} else {
			d.logDir = opts.LogPath
		}
	}

	logger.Info("dashboard ready", "tabs", len(d.decoders), "session", d.session, "log_dir", d.logDir)
	return d, nil
}

func optInt(v *int) any {
	if v == nil {
		return "none"
	}
	return *v
}

// Decoders returns the tabs in display order.
func (d *Dashboard) Decoders() []*channel.Decoder { return d.decoders }

// Selected is the index of the active tab.
func (d *Dashboard) Selected() int { return d.selected }

// Current is the active tab.
func (d *Dashboard) Current() *channel.Decoder { return d.decoders[d.selected] }

// State reports whether the dashboard is running or shutting down.
func (d *Dashboard) State() State { return d.state }

// Session is the name used for session log files.
func (d *Dashboard) Session() string { return d.session }

// LogDir is where session logs are written, empty when disabled.
func (d *Dashboard) LogDir() string { return d.logDir }

// Select switches to tab n. Out-of-range indices are ignored.
func (d *Dashboard) Select(n int) bool {
	if n < 0 || n >= len(d.decoders) {
		return false
	}
	d.selected = n
	return true
}

// Poll reads and decodes pending bytes on every tab, in tab order.
func (d *Dashboard) Poll() {
	if d.state != Running {
		return
	}
	for _, dec := range d.decoders {
		dec.Poll()
	}
}

// Quit moves to ShuttingDown. Further polls are ignored.
func (d *Dashboard) Quit() {
	if d.state == Running {
		d.logger.Info("shutting down", "session", d.session)
	}
	d.state = ShuttingDown
}

// WriteLogs writes one file per tab into the log directory, named
// {session}_channel{tab}.{ext}. Structured tabs are skipped with a
// diagnostic. A failing file does not stop the others; all failures are
// returned joined.
func (d *Dashboard) WriteLogs() error {
	if d.logDir == "" {
		return nil
	}

	var errs []error
	for i, dec := range d.decoders {
		ext, ok := dec.Format().Extension()
		if !ok {
			d.logger.Warn("structured log tab is not written to the session log", "tab", i, "name", dec.Name())
			continue
		}
		path := filepath.Join(d.logDir, fmt.Sprintf("%s_channel%d.%s", d.session, i, ext))
		if err := writeLogFile(path, dec); err != nil {
			d.logger.Error("failed to write session log", "tab", i, "path", path, "error", err)
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		d.logger.Debug("session log written", "tab", i, "path", path)
	}
	return errors.Join(errs...)
}

func writeLogFile(path string, dec *channel.Decoder) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dec.WriteLog(f)
}

type nopProvider struct{}

func (nopProvider) For(string) *logging.ScopedLogger { return logging.NopLogger() }
