package analysis

import (
	"math"

	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

// Bin is one annulus of a radial profile, measured in the disk plane.
type Bin struct {
	Inner, Outer float64 // m
	Count        int
	Mass         float64 // kg
	Speed        float64 // mean tangential speed, m/s
	Density      float64 // surface density, kg/m²
}

type Profile []Bin

// RotationAxis is the direction of the angular momentum of stars about
// center. It falls back to +z when the stars do not rotate.
func RotationAxis(stars []star.Star, center vec.Vec3) vec.Vec3 {
	var l vec.Vec3
	for i := range stars {
		r := stars[i].Pos.Sub(center)
		l = l.Add(r.Cross(stars[i].Vel).Scale(stars[i].Mass))
	}
	if l.Norm2() == 0 || !l.IsFinite() {
		return vec.New(0, 0, 1)
	}
	return l.Normalize()
}

// RadialProfile bins stars by their distance from axis through center,
// out to radius, in equal-width annuli. Stars beyond radius are ignored.
func RadialProfile(stars []star.Star, center, axis vec.Vec3, radius float64, bins int) Profile {
	if bins < 1 || radius <= 0 {
		return Profile{}
	}
	axis = axis.Normalize()
	width := radius / float64(bins)

	p := make(Profile, bins)
	for i := range p {
		p[i].Inner = float64(i) * width
		p[i].Outer = float64(i+1) * width
	}

	for i := range stars {
		s := &stars[i]
		r := s.Pos.Sub(center)
		planar := r.AddScaled(axis, -r.Dot(axis))
		dist := planar.Length()
		if dist >= radius || dist == 0 {
			continue
		}

		b := &p[int(dist/width)]
		tangent := axis.Cross(planar.Scale(1 / dist))
		b.Count++
		b.Mass += s.Mass
		b.Speed += s.Vel.Dot(tangent)
	}

	for i := range p {
		b := &p[i]
		if b.Count > 0 {
			b.Speed /= float64(b.Count)
		}
		b.Density = b.Mass / (math.Pi * (b.Outer*b.Outer - b.Inner*b.Inner))
	}
	return p
}

// Speeds returns the rotation curve of p.
func (p Profile) Speeds() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Speed
	}
	return out
}

// Densities returns the surface density of every bin of p.
func (p Profile) Densities() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Density
	}
	return out
}

func (p Profile) Count() int {
	n := 0
	for _, b := range p {
		n += b.Count
	}
	return n
}
