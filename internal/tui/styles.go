package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	flavor catppuccin.Flavor
}

func NewStyles(themeName string) *Styles {
	flavor := flavorFromName(themeName)
	return &Styles{flavor: flavor}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0()))
}

func (s *Styles) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Teal()))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Red())).
		Bold(true)
}

func (s *Styles) WarnStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Yellow()))
}

// ActiveTabStyle highlights the selected channel tab.
func (s *Styles) ActiveTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Base())).
		Background(s.color(s.flavor.Yellow())).
		Padding(0, 1)
}

func (s *Styles) InactiveTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext0())).
		Background(s.color(s.flavor.Surface0())).
		Padding(0, 1)
}

// TabBarStyle fills the rest of the tab row.
func (s *Styles) TabBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(s.color(s.flavor.Mantle()))
}

// InputStyle renders the operator input line.
func (s *Styles) InputStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Yellow())).
		Background(s.color(s.flavor.Surface1()))
}

func (s *Styles) InputDisabledStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0())).
		Background(s.color(s.flavor.Surface0()))
}

func (s *Styles) SeparatorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Surface1()))
}

// SeriesStyle colours chart series x, y and z.
func (s *Styles) SeriesStyle(series int) lipgloss.Style {
	colors := []catppuccin.Color{s.flavor.Yellow(), s.flavor.Green(), s.flavor.Blue()}
	return lipgloss.NewStyle().Foreground(s.color(colors[series%len(colors)]))
}

func (s *Styles) LogTimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay1()))
}

func (s *Styles) LogScopeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Mauve()))
}

// LogLevelStyle colours a diagnostics level badge.
func (s *Styles) LogLevelStyle(level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay0()))
	case "WARN":
		return lipgloss.NewStyle().Foreground(s.color(s.flavor.Yellow())).Bold(true)
	case "ERROR":
		return lipgloss.NewStyle().Foreground(s.color(s.flavor.Red())).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(s.color(s.flavor.Blue()))
	}
}
