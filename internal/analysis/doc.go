// Package analysis measures the structure of a star snapshot.
//
//   - [RotationAxis]: direction of the total angular momentum
//   - [RadialProfile]: annuli in the disk plane with star count, mass,
//     surface density and mean tangential speed
//
// A flat rotation curve from [Profile.Speeds] is the usual sign of a
// disk held together by its own mass rather than a central body:
//
//	axis := analysis.RotationAxis(stars, center)
//	curve := analysis.RadialProfile(stars, center, axis, radius, 20).Speeds()
package analysis
