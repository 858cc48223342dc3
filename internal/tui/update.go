// pattern: Imperative Shell

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rttdash/internal/dashboard"
	"rttdash/internal/logging"
)

type tickMsg struct {
	time time.Time
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.dash.State() != dashboard.Running {
			return m, nil
		}
		m.dash.Poll()
		m.drainDiagnostics()
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dash.State() != dashboard.Running {
		return m, nil
	}
	dec := m.dash.Current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.logger.Info("quit requested")
		m.dash.Quit()
		return m, tea.Quit

	case key.Matches(msg, m.keys.SelectTab):
		if n, ok := tabIndex(msg.String()); ok {
			m.dash.Select(n)
		}

	case key.Matches(msg, m.keys.Submit):
		dec.SubmitInput()

	case key.Matches(msg, m.keys.Backspace):
		dec.Backspace()

	case key.Matches(msg, m.keys.ScrollUp):
		dec.ScrollUp()

	case key.Matches(msg, m.keys.ScrollDown):
		dec.ScrollDown()

	case key.Matches(msg, m.keys.Newest):
		dec.ScrollToNewest()

	case key.Matches(msg, m.keys.Logs):
		m.logPanelOpen = !m.logPanelOpen

	case msg.Type == tea.KeySpace:
		dec.TypeRune(' ')

	case msg.Type == tea.KeyRunes && !msg.Alt && !msg.Paste:
		for _, r := range msg.Runes {
			dec.TypeRune(r)
		}

	case msg.Type == tea.KeyRunes && msg.Paste:
		for _, r := range msg.Runes {
			if r != '\n' && r != '\r' {
				dec.TypeRune(r)
			}
		}
	}

	return m, nil
}

// drainDiagnostics moves pending diagnostics into the bounded panel buffer
// without blocking.
func (m *Model) drainDiagnostics() {
	if m.diagnostics == nil {
		return
	}
	for range maxDrainPerTick {
		select {
		case entry, ok := <-m.diagnostics:
			if !ok {
				m.diagnostics = nil
				return
			}
			m.addLogEntry(entry)
		default:
			return
		}
	}
}

func (m *Model) addLogEntry(entry logging.LogEntry) {
	m.logEntries = append(m.logEntries, entry)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = append(m.logEntries[:0], m.logEntries[over:]...)
	}
}
