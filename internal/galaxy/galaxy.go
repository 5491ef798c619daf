// Package galaxy populates the star container for a new run.
package galaxy

import (
	"math"
	"math/rand"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/vec"
)

const (
	minStarMass = 0.1  // solar masses
	maxStarMass = 10.0 // solar masses
)

// Initialize creates cfg.Stars stars in a rotating disk of diameter
// cfg.Area. With a black hole enabled the first star is the central body,
// at rest in the origin, and disk stars get the matching circular speed on
// top of cfg.InitialSpeed. cfg is expected to be sanitized.
func Initialize(cfg *config.Config, rng *rand.Rand) []star.Star {
	area := cfg.AreaMeters()
	dt := cfg.StepSeconds()
	bh := cfg.BlackHoleKg()

	stars := make([]star.Star, 0, cfg.Stars)
	if bh > 0 {
		stars = append(stars, star.New(vec.Vec3{}, vec.Vec3{}, bh))
	}

	radius := area / 2
	halfThickness := cfg.Thickness * area / 2

	for len(stars) < cfg.Stars {
		// uniform over the disk surface
		r := radius * math.Sqrt(rng.Float64())
		theta := rng.Float64() * 2 * math.Pi
		z := (rng.Float64()*2 - 1) * halfThickness

		pos := vec.New(r*math.Cos(theta), r*math.Sin(theta), z)
		tangent := vec.New(-math.Sin(theta), math.Cos(theta), 0)

		speed := cfg.InitialSpeed
		if bh > 0 && r > 0 {
			speed += math.Sqrt(units.G * bh / r)
		}

		mass := logUniform(rng, minStarMass, maxStarMass) * units.SolarMass
		s := star.New(pos, tangent.Scale(speed), mass)
		stars = append(stars, s)
	}

	for i := range stars {
		s := &stars[i]
		s.InitHistory(dt)
		if cfg.Render.RealColors {
			s.UseRealColor()
		} else {
			s.Color = star.DensityColor(0, s.Speed())
		}
	}
	return stars
}

func logUniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo * math.Exp(rng.Float64()*math.Log(hi/lo))
}
