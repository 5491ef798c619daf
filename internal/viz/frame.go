package viz

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

var boundsColor = colorful.Color{R: 0.25, G: 0.25, B: 0.35}

// Frame draws stars onto a canvas. zoom is the number of dots that one
// area length spans on screen.
type Frame struct {
	Canvas *Canvas
	Drawn  int // stars that landed on the canvas in the last Draw
}

// NewFrame allocates a frame of w by h character cells.
func NewFrame(w, h int) *Frame {
	return &Frame{Canvas: NewCanvas(w, h)}
}

// Draw clears the canvas and plots every live star, centred on center.
// It only reads the stars.
func (f *Frame) Draw(stars []star.Star, center vec.Vec3, view View, zoom, area float64) int {
	f.Canvas.Clear()
	f.Drawn = 0
	if area <= 0 {
		return 0
	}

	scale := zoom / area
	ox := float64(f.Canvas.SubWidth()) / 2
	oy := float64(f.Canvas.SubHeight()) / 2

	for i := range stars {
		s := &stars[i]
		if !s.Alive {
			continue
		}
		u, w := view.Project(s.Pos.Sub(center))
		x, y, ok := toScreen(ox+u*scale, oy-w*scale)
		if !ok {
			continue
		}
		if f.Canvas.Set(x, y, s.Color) {
			f.Drawn++
		}
	}
	return f.Drawn
}

// DrawBounds outlines the cube of half-edge area whose centre sits at
// offset from the view centre.
func (f *Frame) DrawBounds(offset vec.Vec3, view View, zoom, area float64) {
	if area <= 0 {
		return
	}
	scale := zoom / area
	ox := float64(f.Canvas.SubWidth()) / 2
	oy := float64(f.Canvas.SubHeight()) / 2

	var corners [8][2]int
	for i := range corners {
		c := vec.New(sign(i&1)*area, sign(i&2)*area, sign(i&4)*area)
		u, w := view.Project(c.Add(offset))
		corners[i] = [2]int{round(ox + u*scale), round(oy - w*scale)}
	}

	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			j := i | bit
			if j == i {
				continue
			}
			a, b := corners[i], corners[j]
			if !f.lineVisible(a, b) {
				continue
			}
			f.Canvas.DrawLine(a[0], a[1], b[0], b[1], boundsColor)
		}
	}
}

// lineVisible rejects segments that cannot touch the canvas so a tiny zoom
// level does not walk millions of off-screen dots.
func (f *Frame) lineVisible(a, b [2]int) bool {
	w, h := f.Canvas.SubWidth(), f.Canvas.SubHeight()
	const limit = 1 << 16
	for _, p := range [][2]int{a, b} {
		if absInt(p[0]) > limit || absInt(p[1]) > limit {
			return false
		}
	}
	if (a[0] < 0 && b[0] < 0) || (a[1] < 0 && b[1] < 0) {
		return false
	}
	if (a[0] >= w && b[0] >= w) || (a[1] >= h && b[1] >= h) {
		return false
	}
	return true
}

func (f *Frame) String() string { return f.Canvas.String() }
func (f *Frame) Render() string { return f.Canvas.Render() }

func toScreen(x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= math.MaxInt32 || y >= math.MaxInt32 {
		return 0, 0, false
	}
	return int(x), int(y), true
}

func round(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	return int(math.Round(math.Max(math.MinInt32, math.Min(math.MaxInt32, x))))
}

func sign(bit int) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}
