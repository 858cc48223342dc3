// pattern: Functional Core

package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rttdash/internal/channel"
)

// brailleBase is U+2800, the empty braille pattern. Each cell holds a 2x4
// grid of dots.
const brailleBase = 0x2800

// brailleDots maps a dot's (column, row) inside a cell to its bit.
var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// brailleCanvas is a width x height grid of braille cells. Each cell
// remembers the series that last drew into it for colouring.
type brailleCanvas struct {
	width, height int
	dots          []uint8
	series        []int8
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	width, height = max(width, 0), max(height, 0)
	c := &brailleCanvas{
		width:  width,
		height: height,
		dots:   make([]uint8, width*height),
		series: make([]int8, width*height),
	}
	for i := range c.series {
		c.series[i] = -1
	}
	return c
}

// set lights the dot at pixel (px, py); pixels outside the canvas are ignored.
func (c *brailleCanvas) set(px, py, series int) {
	if px < 0 || py < 0 || px >= c.width*2 || py >= c.height*4 {
		return
	}
	i := (py/4)*c.width + px/2
	c.dots[i] |= brailleDots[px%2][py%4]
	c.series[i] = int8(series)
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *brailleCanvas) line(x0, y0, x1, y1, series int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, series)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// plot draws each series with x spanning [0, points-1] and y spanning
// [-bound, bound].
func (c *brailleCanvas) plot(series [3][]channel.Point, points int, bound float64) {
	if c.width == 0 || c.height == 0 {
		return
	}
	xMax := float64(max(points-1, 1))
	pxMax := float64(c.width*2 - 1)
	pyMax := float64(c.height*4 - 1)

	toPixel := func(p channel.Point) (int, int, bool) {
		if math.IsNaN(p.Y) || p.Y > bound || p.Y < -bound {
			return 0, 0, false
		}
		px := int(math.Round(p.X / xMax * pxMax))
		py := int(math.Round((bound - p.Y) / (2 * bound) * pyMax))
		return px, py, true
	}

	for s, pts := range series {
		havePrev := false
		var prevX, prevY int
		for _, p := range pts {
			px, py, ok := toPixel(p)
			if !ok {
				havePrev = false
				continue
			}
			if havePrev {
				c.line(prevX, prevY, px, py, s)
			} else {
				c.set(px, py, s)
			}
			prevX, prevY, havePrev = px, py, true
		}
	}
}

// render returns one string per cell row, colouring cells by series.
func (c *brailleCanvas) render(styleFor func(series int) lipgloss.Style) []string {
	rows := make([]string, c.height)
	var sb strings.Builder
	for y := range c.height {
		sb.Reset()
		for x := range c.width {
			i := y*c.width + x
			if c.dots[i] == 0 {
				sb.WriteByte(' ')
				continue
			}
			cell := string(rune(brailleBase + int(c.dots[i])))
			if styleFor != nil {
				cell = styleFor(int(c.series[i])).Render(cell)
			}
			sb.WriteString(cell)
		}
		rows[y] = sb.String()
	}
	return rows
}
