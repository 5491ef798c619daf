package metrics

import (
	"math"

	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/vec"
)

// Energy is the total mechanical energy of stars, using the same Plummer
// softening as the force law. It is an O(n²) sum.
func Energy(stars []star.Star, softening float64) float64 {
	eps2 := softening * softening
	ke, pe := 0.0, 0.0

	for i := range stars {
		si := &stars[i]
		ke += 0.5 * si.Mass * si.Vel.Norm2()

		for j := i + 1; j < len(stars); j++ {
			r2 := stars[j].Pos.Sub(si.Pos).Norm2() + eps2
			pe -= units.G * si.Mass * stars[j].Mass / math.Sqrt(r2)
		}
	}

	return ke + pe
}

func AngularMomentum(stars []star.Star) vec.Vec3 {
	var l vec.Vec3
	for i := range stars {
		l = l.Add(stars[i].Pos.Cross(stars[i].Vel).Scale(stars[i].Mass))
	}
	return l
}

func MassCenter(stars []star.Star) vec.Vec3 {
	var moment vec.Vec3
	total := 0.0
	for i := range stars {
		moment = moment.AddScaled(stars[i].Pos, stars[i].Mass)
		total += stars[i].Mass
	}
	if total == 0 {
		return vec.Vec3{}
	}
	return moment.Scale(1 / total)
}

// EnergyDrift tracks the largest relative deviation from the energy seen
// on the first observation.
type EnergyDrift struct {
	name          string
	softening     float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(softening float64) *EnergyDrift {
	return &EnergyDrift{
		name:      "energy_drift",
		softening: softening,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(live []star.Star, t float64) {
	energy := Energy(live, e.softening)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
