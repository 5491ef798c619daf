// Package units holds the SI constants the simulation works in.
package units

const (
	// G is the gravitational constant in m³·kg⁻¹·s⁻².
	G = 6.6743e-11

	LightYear = 9.4607e15      // m
	Year      = 3.15576e7      // s (Julian)
	SolarMass = 1.98892e30     // kg
	AU        = 1.495978707e11 // m
	SunTemp   = 5778.0         // K
)
