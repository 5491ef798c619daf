package metrics

import "github.com/san-kum/galaxysim/internal/star"

// Metric accumulates a scalar over the live stars of every step.
type Metric interface {
	Name() string
	Observe(live []star.Star, t float64)
	Value() float64
	Reset()
}
