// pattern: Functional Core

package channel

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ClampOffset returns the scroll offset to use for total rows and a
// viewport of height rows. Whenever total < height+offset the offset is
// pulled back to max(0, total-height).
func ClampOffset(total, height, offset int) int {
	if offset < 0 {
		return 0
	}
	if height < 0 {
		height = 0
	}
	if total < height+offset {
		return max(0, total-height)
	}
	return offset
}

// Window returns the half-open range [lo, hi) of the rows visible with the
// given viewport height and offset (rows hidden below the bottom). The
// offset is clamped first, so the range is always within [0, total].
func Window(total, height, offset int) (lo, hi int) {
	if height <= 0 || total <= 0 {
		return total, total
	}
	offset = ClampOffset(total, height, offset)
	hi = total - offset
	lo = total - min(total, height+offset)
	return lo, hi
}

// wrapCache holds the visual rows of each logical line for one width.
// Lines are append-only apart from the trailing line, which text decoding
// may replace, so entries are invalidated from the tail.
type wrapCache struct {
	width int
	rows  [][]string
	total int
}

// invalidateFrom drops cached rows for logical lines at index >= from.
func (c *wrapCache) invalidateFrom(from int) {
	if from >= len(c.rows) {
		return
	}
	for _, r := range c.rows[from:] {
		c.total -= len(r)
	}
	c.rows = c.rows[:from]
}

// wrapped returns every visual row for lines at width. width <= 0 disables wrapping.
func (c *wrapCache) wrapped(lines []string, width int) []string {
	if width != c.width {
		c.width = width
		c.rows = c.rows[:0]
		c.total = 0
	}
	if len(c.rows) > len(lines) {
		c.invalidateFrom(len(lines))
	}
	for _, line := range lines[len(c.rows):] {
		r := wrapLine(line, width)
		c.rows = append(c.rows, r)
		c.total += len(r)
	}

	out := make([]string, 0, c.total)
	for _, r := range c.rows {
		out = append(out, r...)
	}
	return out
}

// wrapLine splits one logical line into visual rows no wider than width,
// breaking at word boundaries and hard-breaking long words.
func wrapLine(line string, width int) []string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return []string{line}
	}
	return strings.Split(ansi.Wrap(line, width, ""), "\n")
}
