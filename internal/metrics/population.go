package metrics

import (
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

// Survival is the fraction of the first observed population still alive.
type Survival struct {
	initial int
	current int
}

func NewSurvival() *Survival { return &Survival{} }

func (s *Survival) Name() string { return "survival" }

func (s *Survival) Observe(live []star.Star, t float64) {
	if s.initial == 0 {
		s.initial = len(live)
	}
	s.current = len(live)
}

func (s *Survival) Value() float64 {
	if s.initial == 0 {
		return 0
	}
	return float64(s.current) / float64(s.initial)
}

func (s *Survival) Reset() {
	s.initial = 0
	s.current = 0
}

// CenterDrift is the distance, in meters, the center of mass of the live
// stars moved since the first observation.
type CenterDrift struct {
	origin  vec.Vec3
	drift   float64
	started bool
}

func NewCenterDrift() *CenterDrift { return &CenterDrift{} }

func (c *CenterDrift) Name() string { return "center_drift" }

func (c *CenterDrift) Observe(live []star.Star, t float64) {
	com := MassCenter(live)
	if !c.started {
		c.origin = com
		c.started = true
	}
	c.drift = vec.Distance(com, c.origin)
}

func (c *CenterDrift) Value() float64 { return c.drift }

func (c *CenterDrift) Reset() {
	c.origin = vec.Vec3{}
	c.drift = 0
	c.started = false
}
