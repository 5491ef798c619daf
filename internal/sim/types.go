package sim

import (
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

// StepResult describes one completed step.
type StepResult struct {
	Step       int
	Time       float64 // s
	Live       int
	Died       int
	MassCenter vec.Vec3
}

// Observer is notified after every completed step. live aliases the
// simulator's storage and is only valid during the call.
type Observer interface {
	OnStep(r StepResult, live []star.Star)
}

type ObserverFunc func(r StepResult, live []star.Star)

func (f ObserverFunc) OnStep(r StepResult, live []star.Star) { f(r, live) }

type Result struct {
	Steps       int
	Time        float64
	Live        int
	Died        int
	MassCenter  vec.Vec3
	LiveHistory []float64
	Metrics     map[string]float64
	Extinct     bool
}
