package star

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/galaxysim/internal/vec"
)

// Field is the read-only view of the spatial structure a star queries
// during its update.
type Field interface {
	Accel(pos vec.Vec3, precision float64) (vec.Vec3, float64)
	Contains(pos vec.Vec3) bool
}

type Star struct {
	Pos  vec.Vec3
	Prev vec.Vec3 // position before the last step
	Vel  vec.Vec3
	Acc  vec.Vec3

	Mass        float64 // kg
	Density     float64
	Temperature float64 // K

	Alive bool
	Color colorful.Color
}

// Params are the per-run settings every star update shares.
type Params struct {
	Dt         float64 // s
	Area       float64 // m
	Precision  float64
	Verlet     bool
	RealColors bool
}

func New(pos, vel vec.Vec3, mass float64) Star {
	return Star{
		Pos:   pos,
		Prev:  pos,
		Vel:   vel,
		Mass:  mass,
		Alive: true,
		Color: colorful.Color{R: 1, G: 1, B: 1},
	}
}

// UpdateAccelerationAndDensity reads the field at the star's position.
// Only Acc and Density are written.
func (s *Star) UpdateAccelerationAndDensity(precision float64, f Field) {
	s.Acc, s.Density = f.Accel(s.Pos, precision)
}

// UpdateSpeed is the explicit Euler velocity step. The speed is capped so
// that one step cannot carry the star further than area.
func (s *Star) UpdateSpeed(dt, area float64) {
	s.Vel = s.Vel.AddScaled(s.Acc, dt)
	if dt <= 0 {
		return
	}
	limit := area / dt
	if v := s.Vel.Length(); v > limit {
		s.Vel = s.Vel.Scale(limit / v)
	}
}

// UpdatePosition advances the star by dt. With verlet it uses the stored
// previous position and sets Vel to the central difference; otherwise it
// uses the velocity already updated this step.
func (s *Star) UpdatePosition(dt float64, verlet bool) {
	cur := s.Pos
	if verlet {
		next := cur.Scale(2).Sub(s.Prev).AddScaled(s.Acc, dt*dt)
		if dt > 0 {
			s.Vel = next.Sub(s.Prev).Scale(1 / (2 * dt))
		}
		s.Pos = next
	} else {
		s.Pos = cur.AddScaled(s.Vel, dt)
	}
	s.Prev = cur
}

// CheckBounds marks the star dead once it leaves the simulated volume.
func (s *Star) CheckBounds(f Field) bool {
	if s.Alive && !f.Contains(s.Pos) {
		s.Alive = false
	}
	return s.Alive
}

// Update runs one full step for the star.
func (s *Star) Update(p Params, f Field) {
	s.UpdateAccelerationAndDensity(p.Precision, f)
	if !p.Verlet {
		s.UpdateSpeed(p.Dt, p.Area)
	}
	s.UpdatePosition(p.Dt, p.Verlet)

	if !s.CheckBounds(f) {
		return
	}
	if !p.RealColors {
		s.UpdateColor()
	}
}

// InitHistory seeds the Verlet history so the first step continues the
// current velocity.
func (s *Star) InitHistory(dt float64) {
	s.Prev = s.Pos.AddScaled(s.Vel, -dt)
}

func (s *Star) Speed() float64 { return s.Vel.Length() }
