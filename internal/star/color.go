package star

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/galaxysim/internal/units"
)

const (
	// DensityScale is one solar mass per cubic light year.
	DensityScale = units.SolarMass / (units.LightYear * units.LightYear * units.LightYear)
	// SpeedScale is the speed mapped to full brightness, in m/s.
	SpeedScale = 2e5

	minDecade = -3.0
	maxDecade = 3.0
)

// UpdateColor recomputes the simplified display color: hue runs from blue
// in sparse regions to red in dense ones, brightness follows speed.
func (s *Star) UpdateColor() {
	if !s.Alive {
		return
	}
	s.Color = DensityColor(s.Density, s.Speed())
}

func DensityColor(density, speed float64) colorful.Color {
	t := 0.0
	if density > 0 {
		d := math.Log10(density / DensityScale)
		t = clamp01((d - minDecade) / (maxDecade - minDecade))
	}
	value := 0.45 + 0.55*clamp01(speed/SpeedScale)
	return colorful.Hsv(240*(1-t), 0.65, value).Clamped()
}

var temperatureStops = []struct {
	kelvin float64
	color  colorful.Color
}{
	{2000, colorful.Color{R: 1.00, G: 0.22, B: 0.00}},
	{3500, colorful.Color{R: 1.00, G: 0.60, B: 0.30}},
	{5000, colorful.Color{R: 1.00, G: 0.85, B: 0.65}},
	{6500, colorful.Color{R: 1.00, G: 1.00, B: 1.00}},
	{10000, colorful.Color{R: 0.75, G: 0.82, B: 1.00}},
	{30000, colorful.Color{R: 0.60, G: 0.70, B: 1.00}},
}

// TemperatureColor approximates the color of a black body at kelvin.
func TemperatureColor(kelvin float64) colorful.Color {
	first, last := temperatureStops[0], temperatureStops[len(temperatureStops)-1]
	if kelvin <= first.kelvin {
		return first.color
	}
	if kelvin >= last.kelvin {
		return last.color
	}
	for i := 1; i < len(temperatureStops); i++ {
		hi := temperatureStops[i]
		if kelvin > hi.kelvin {
			continue
		}
		lo := temperatureStops[i-1]
		t := (kelvin - lo.kelvin) / (hi.kelvin - lo.kelvin)
		return lo.color.BlendLab(hi.color, t).Clamped()
	}
	return last.color
}

// TemperatureFromMass uses the main sequence relation T ∝ M^0.505.
func TemperatureFromMass(kg float64) float64 {
	return units.SunTemp * math.Pow(kg/units.SolarMass, 0.505)
}

// UseRealColor sets the star's temperature from its mass and paints it
// with the matching black body color.
func (s *Star) UseRealColor() {
	s.Temperature = TemperatureFromMass(s.Mass)
	s.Color = TemperatureColor(s.Temperature)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
