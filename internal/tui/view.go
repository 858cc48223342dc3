// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"rttdash/internal/channel"
	"rttdash/internal/dashboard"
)

// maxTabLabel bounds the width of a single tab label.
const maxTabLabel = 24

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.dash.State() == dashboard.ShuttingDown {
		return m.styles.HelpStyle().Render("Writing session logs...")
	}

	dec := m.dash.Current()
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen, dec.HasDown())

	sections := []string{m.renderTabs(layout.Tabs)}
	if dec.Format() == channel.FormatBinary {
		sections = append(sections, m.renderChart(dec, layout.Content))
	} else {
		sections = append(sections, m.renderLines(dec, layout.Content))
	}
	if layout.Input.Height > 0 {
		sections = append(sections, m.renderInput(dec, layout.Input))
	}
	if m.logPanelOpen {
		sections = append(sections,
			m.styles.SeparatorStyle().Render(strings.Repeat("─", layout.Separator.Width)),
			m.renderLogPanel(layout.Logs),
		)
	}
	sections = append(sections, m.renderStatusBar(layout.StatusBar))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// tabLabel is the plain text of tab i, truncated to maxTabLabel cells.
func tabLabel(i int, name string) string {
	label := fmt.Sprintf("F%d %s", i+1, name)
	return runewidth.Truncate(label, maxTabLabel, "…")
}

func (m Model) renderTabs(r Region) string {
	selected := m.dash.Selected()
	tabs := make([]string, 0, len(m.dash.Decoders()))
	for i, dec := range m.dash.Decoders() {
		style := m.styles.InactiveTabStyle()
		if i == selected {
			style = m.styles.ActiveTabStyle()
		}
		tabs = append(tabs, style.Render(tabLabel(i, dec.Name())))
	}
	row := ansi.Truncate(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), r.Width, "")
	return m.styles.TabBarStyle().Width(r.Width).Render(row)
}

func (m Model) renderLines(dec *channel.Decoder, r Region) string {
	rows := dec.VisibleLines(r.Width, r.Height)
	return fitHeight(strings.Join(rows, "\n"), r)
}

func (m Model) renderChart(dec *channel.Decoder, r Region) string {
	legend := make([]string, 0, 4)
	for i, name := range []string{"x", "y", "z"} {
		legend = append(legend, m.styles.SeriesStyle(i).Render("━ "+name))
	}
	samples := len(dec.Samples())
	legend = append(legend, m.styles.HelpStyle().Render(
		fmt.Sprintf("±%.0f  %d samples", channel.ChartBound, samples)))
	header := strings.Join(legend, "  ")

	canvas := newBrailleCanvas(r.Width, r.Height-1)
	canvas.plot(dec.Series(), channel.ChartPoints, channel.ChartBound)
	rows := canvas.render(m.styles.SeriesStyle)

	return fitHeight(strings.Join(append([]string{header}, rows...), "\n"), r)
}

func (m Model) renderInput(dec *channel.Decoder, r Region) string {
	style := m.styles.InputStyle()
	if dec.Format() == channel.FormatBinary {
		style = m.styles.InputDisabledStyle()
	}
	// Keep the cursor end visible once the line outgrows the row.
	text := "> " + dec.Input() + "█"
	if over := runewidth.StringWidth(text) - r.Width; over > 0 {
		text = runewidth.TruncateLeft(text, over+1, "…")
	}
	return style.Width(r.Width).Render(text)
}

func (m Model) renderLogPanel(r Region) string {
	entries := m.logEntries
	if len(entries) > r.Height {
		entries = entries[len(entries)-r.Height:]
	}
	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		row := m.styles.LogTimestampStyle().Render(e.Timestamp.Format("15:04:05")) + " " +
			m.styles.LogLevelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level)) + " " +
			m.styles.LogScopeStyle().Render("["+e.Scope+"]") + " " +
			e.Message
		if f := e.FieldsString(); f != "" {
			row += " " + m.styles.HelpStyle().Render(f)
		}
		rows = append(rows, lipgloss.NewStyle().MaxWidth(r.Width).Render(row))
	}
	return fitHeight(strings.Join(rows, "\n"), r)
}

// renderStatusBar shows the most recent warning or error, then the key help.
func (m Model) renderStatusBar(r Region) string {
	helpView := m.help.View(m.keys)
	for i := len(m.logEntries) - 1; i >= 0; i-- {
		e := m.logEntries[i]
		if !e.IsProblem() {
			continue
		}
		style := m.styles.WarnStyle()
		if e.Level == "ERROR" {
			style = m.styles.ErrorStyle()
		}
		msg := runewidth.Truncate(e.Message, max(r.Width/2, 1), "…")
		helpView = style.Render(msg) + "  " + helpView
		break
	}
	return lipgloss.NewStyle().MaxWidth(r.Width).Render(helpView)
}

// fitHeight pads or cuts s to exactly r.Height lines.
func fitHeight(s string, r Region) string {
	return lipgloss.NewStyle().Height(r.Height).MaxHeight(r.Height).Render(s)
}
