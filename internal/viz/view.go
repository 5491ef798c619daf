package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/vec"
)

// View selects the projection of the volume onto the screen.
type View int

const (
	ViewDefault View = iota
	ViewXY
	ViewXZ
	ViewYZ
)

var viewNames = [...]string{"default", "xy", "xz", "yz"}

// tilt of the default view, radians from face-on.
const tilt = math.Pi / 3

var (
	tiltCos = math.Cos(tilt)
	tiltSin = math.Sin(tilt)
)

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

func ParseView(name string) (View, error) {
	for i, n := range viewNames {
		if n == name {
			return View(i), nil
		}
	}
	return ViewDefault, fmt.Errorf("unknown view %q (want default, xy, xz or yz)", name)
}

func ViewNames() []string {
	return append([]string(nil), viewNames[:]...)
}

// Next cycles through the views in order.
func (v View) Next() View {
	return View((int(v) + 1) % len(viewNames))
}

// Project maps a position relative to the view centre onto screen axes,
// u to the right and w up. xy, xz and yz are orthographic; the default view
// looks at the disk plane tilted by 60 degrees.
func (v View) Project(p vec.Vec3) (u, w float64) {
	switch v {
	case ViewXY:
		return p.X, p.Y
	case ViewXZ:
		return p.X, p.Z
	case ViewYZ:
		return p.Y, p.Z
	default:
		return p.X, p.Y*tiltCos + p.Z*tiltSin
	}
}
