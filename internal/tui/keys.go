package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	SelectTab  key.Binding
	Submit     key.Binding
	Backspace  key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Newest     key.Binding
	Logs       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	tabKeys := make([]string, 0, 21)
	for i := 1; i <= 12; i++ {
		tabKeys = append(tabKeys, "f"+strconv.Itoa(i))
	}
	for i := 1; i <= 9; i++ {
		tabKeys = append(tabKeys, "alt+"+strconv.Itoa(i))
	}

	return keyMap{
		SelectTab: key.NewBinding(
			key.WithKeys(tabKeys...),
			key.WithHelp("f1-f12", "tab"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Newest: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "follow"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "diagnostics"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SelectTab, k.Submit, k.ScrollUp, k.Newest, k.Logs, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// tabIndex maps "f3" or "alt+3" to tab 2.
func tabIndex(keyName string) (int, bool) {
	var digits string
	switch {
	case strings.HasPrefix(keyName, "alt+"):
		digits = strings.TrimPrefix(keyName, "alt+")
	case strings.HasPrefix(keyName, "f"):
		digits = strings.TrimPrefix(keyName, "f")
	default:
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
