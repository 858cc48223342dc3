package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"rttdash/internal/dashboard"
	"rttdash/internal/logging"
)

const (
	// defaultPollInterval paces target polling when none is configured.
	defaultPollInterval = 20 * time.Millisecond
	// maxLogEntries bounds the diagnostics kept for the panel.
	maxLogEntries = 500
	// maxDrainPerTick bounds diagnostics consumed per tick.
	maxDrainPerTick = 256
)

// Options configure the TUI.
type Options struct {
	Theme        string
	PollInterval time.Duration

	// Logs provides the "tui" scoped logger. Diagnostics delivers every
	// logged entry for the diagnostics panel; either may be nil.
	Logs        logging.LoggerProvider
	Diagnostics <-chan logging.LogEntry
}

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles
	keys   keyMap
	help   help.Model

	dash         *dashboard.Dashboard
	pollInterval time.Duration
	logger       *logging.ScopedLogger

	diagnostics  <-chan logging.LogEntry
	logEntries   []logging.LogEntry
	logPanelOpen bool
}

// NewModel creates a TUI model driving dash.
func NewModel(dash *dashboard.Dashboard, opts Options) Model {
	logger := logging.NopLogger()
	if opts.Logs != nil {
		logger = opts.Logs.For("tui")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	styles := NewStyles(opts.Theme)
	h := help.New()
	h.Styles.ShortKey = styles.AccentStyle()
	h.Styles.ShortDesc = styles.HelpStyle()
	h.Styles.ShortSeparator = styles.HelpStyle()

	logger.Debug("tui initialized", "tabs", len(dash.Decoders()), "poll_interval", interval)

	return Model{
		styles:       styles,
		keys:         newKeyMap(),
		help:         h,
		dash:         dash,
		pollInterval: interval,
		logger:       logger,
		diagnostics:  opts.Diagnostics,
	}
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// tick schedules the next poll of every channel.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return tickMsg{time: t}
	})
}

// LogPanelOpen reports whether the diagnostics panel is shown.
func (m Model) LogPanelOpen() bool { return m.logPanelOpen }

// LogEntries returns the diagnostics collected so far.
func (m Model) LogEntries() []logging.LogEntry { return m.logEntries }
