package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a braille canvas with one colour per character cell. A cell
// hit by several stars shows the mean of their colours.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	sums [][]colorful.Color
	hits [][]int
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		sums:   make([][]colorful.Color, h),
		hits:   make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.sums[i] = make([]colorful.Color, w)
		c.hits[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// SubWidth and SubHeight are the canvas size in dots.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Set turns on the dot at (x, y) in dot coordinates with colour col. It
// reports whether the dot was on the canvas.
func (c *Canvas) Set(x, y int, col colorful.Color) bool {
	if x < 0 || y < 0 {
		return false
	}

	cx := x / 2
	cy := y / 4
	if cx >= c.Width || cy >= c.Height {
		return false
	}

	c.Grid[cy][cx] |= rune(pixelMap[y%4][x%2])
	s := &c.sums[cy][cx]
	s.R += col.R
	s.G += col.G
	s.B += col.B
	c.hits[cy][cx]++
	return true
}

// Cell returns the mean colour of the dots set in a cell and whether any
// dot was set.
func (c *Canvas) Cell(col, row int) (colorful.Color, bool) {
	n := c.hits[row][col]
	if n == 0 {
		return colorful.Color{}, false
	}
	s := c.sums[row][col]
	f := 1 / float64(n)
	return colorful.Color{R: s.R * f, G: s.G * f, B: s.B * f}.Clamped(), true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.sums[i][j] = colorful.Color{}
			c.hits[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the canvas with each cell in its mean colour.
func (c *Canvas) Render() string {
	var b strings.Builder
	for y, row := range c.Grid {
		for x, r := range row {
			col, ok := c.Cell(x, y)
			if !ok {
				b.WriteRune(r)
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(col.Hex()))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
