package vec

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func New(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Norm2() float64       { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Norm2()) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Normalize returns the unit vector in the direction of v, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

// AddScaled returns v + o*s without an intermediate value.
func (v Vec3) AddScaled(o Vec3, s float64) Vec3 {
	return Vec3{v.X + o.X*s, v.Y + o.Y*s, v.Z + o.Z*s}
}

func Distance(a, b Vec3) float64 { return a.Sub(b).Length() }

// IsFinite reports whether no component is NaN or Inf.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Axis returns component i (0=x, 1=y, 2=z).
func (v Vec3) Axis(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
