// Package analysis inspects recorded rigid-body runs.
//
// The package includes:
//
//   - [PowerSpectrum], [DominantFrequency]: spectrum of a body coordinate,
//     used to spot solver jitter in resting contacts
//   - [GeneratePhasePortrait]: 2D trajectory of two body coordinates
//   - [FindImpacts]: bounce events and their effective restitution
//   - [Sensitivity]: growth of a tiny initial perturbation
//   - [Scan]: sweep one scene parameter and record a summary per value
//
// # Jitter Detection
//
// A resting body should have a flat spectrum. A strong peak near the frame
// rate means the solver is oscillating:
//
//	ys := analysis.Coordinate(result.Track(id), analysis.CoordY)
//	freq, power := analysis.DominantFrequency(analysis.Detrend(ys), dt)
package analysis
