// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Tabs      Region // Tab bar (1 line)
	Content   Region // Scrollback or chart (dynamic)
	Input     Region // Operator input (1 line, zero for chart tabs)
	Separator Region // Separator above the diagnostics panel (1 line when open)
	Logs      Region // Diagnostics panel when open
	StatusBar Region // Status bar (1 line)
}

// Fixed heights for chrome elements
const (
	tabsHeight      = 1
	inputHeight     = 1
	statusBarHeight = 1
	separatorHeight = 1
	minContent      = 1
)

// ComputeLayout calculates regions based on terminal dimensions.
// When logPanelOpen is true, the space left after chrome splits 60/40
// between content and diagnostics.
func ComputeLayout(width, height int, logPanelOpen, showInput bool) Layout {
	fixedHeight := tabsHeight + statusBarHeight
	if showInput {
		fixedHeight += inputHeight
	}
	if logPanelOpen {
		fixedHeight += separatorHeight
	}
	availableHeight := max(height-fixedHeight, minContent)

	contentHeight, logsHeight := availableHeight, 0
	if logPanelOpen {
		logsHeight = availableHeight * 2 / 5
		contentHeight = max(availableHeight-logsHeight, minContent)
	}

	y := 0
	tabs := Region{X: 0, Y: y, Width: width, Height: tabsHeight}
	y += tabsHeight

	content := Region{X: 0, Y: y, Width: width, Height: contentHeight}
	y += contentHeight

	var input Region
	if showInput {
		input = Region{X: 0, Y: y, Width: width, Height: inputHeight}
		y += inputHeight
	}

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight

		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	statusBar := Region{X: 0, Y: y, Width: width, Height: statusBarHeight}

	return Layout{
		Tabs:      tabs,
		Content:   content,
		Input:     input,
		Separator: separator,
		Logs:      logs,
		StatusBar: statusBar,
	}
}
