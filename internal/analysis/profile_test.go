package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

// ring returns n unit-mass stars on a circle of radius r in the xy plane,
// moving counterclockwise at speed v.
func ring(n int, r, v float64) []star.Star {
	stars := make([]star.Star, n)
	for i := range stars {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos := vec.New(r*math.Cos(a), r*math.Sin(a), 0)
		vel := vec.New(-v*math.Sin(a), v*math.Cos(a), 0)
		stars[i] = star.New(pos, vel, 1)
	}
	return stars
}

func TestRotationAxis(t *testing.T) {
	axis := RotationAxis(ring(16, 1, 1), vec.Vec3{})
	if vec.Distance(axis, vec.New(0, 0, 1)) > 1e-12 {
		t.Errorf("expected +z, got %v", axis)
	}

	clockwise := ring(16, 1, -1)
	axis = RotationAxis(clockwise, vec.Vec3{})
	if vec.Distance(axis, vec.New(0, 0, -1)) > 1e-12 {
		t.Errorf("expected -z, got %v", axis)
	}

	still := []star.Star{star.New(vec.New(1, 0, 0), vec.Vec3{}, 1)}
	if RotationAxis(still, vec.Vec3{}) != vec.New(0, 0, 1) {
		t.Error("non-rotating stars should fall back to +z")
	}
}

func TestRadialProfile(t *testing.T) {
	stars := append(ring(8, 1.5, 100), ring(4, 3.5, 50)...)
	stars = append(stars, star.New(vec.New(10, 0, 0), vec.Vec3{}, 1))

	p := RadialProfile(stars, vec.Vec3{}, vec.New(0, 0, 1), 4, 4)
	if len(p) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(p))
	}

	tests := []struct {
		bin   int
		count int
		speed float64
	}{
		{0, 0, 0},
		{1, 8, 100},
		{2, 0, 0},
		{3, 4, 50},
	}
	for _, tt := range tests {
		b := p[tt.bin]
		if b.Count != tt.count {
			t.Errorf("bin %d: expected %d stars, got %d", tt.bin, tt.count, b.Count)
		}
		if math.Abs(b.Speed-tt.speed) > 1e-9 {
			t.Errorf("bin %d: expected speed %g, got %g", tt.bin, tt.speed, b.Speed)
		}
	}

	if p.Count() != 12 {
		t.Errorf("star outside the radius should be ignored, counted %d", p.Count())
	}
	want := 8 / (math.Pi * (4 - 1))
	if math.Abs(p[1].Density-want) > 1e-12 {
		t.Errorf("expected surface density %g, got %g", want, p[1].Density)
	}
	if len(p.Speeds()) != 4 || len(p.Densities()) != 4 {
		t.Error("series should have one value per bin")
	}
}

func TestRadialProfileIgnoresHeight(t *testing.T) {
	stars := ring(6, 3, 10)
	for i := range stars {
		stars[i].Pos.Z = float64(i) - 3
	}

	p := RadialProfile(stars, vec.Vec3{}, vec.New(0, 0, 1), 4, 2)
	if p[1].Count != 6 {
		t.Errorf("height above the plane should not change the bin, got %d", p[1].Count)
	}
}

func TestRadialProfileDegenerate(t *testing.T) {
	if len(RadialProfile(ring(4, 1, 1), vec.Vec3{}, vec.New(0, 0, 1), 0, 4)) != 0 {
		t.Error("zero radius should give an empty profile")
	}
	if len(RadialProfile(ring(4, 1, 1), vec.Vec3{}, vec.New(0, 0, 1), 2, 0)) != 0 {
		t.Error("zero bins should give an empty profile")
	}
}
