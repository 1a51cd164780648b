// Package physics is a deterministic, discrete-time 2D rigid-body engine for
// axis aligned boxes and circles.
//
// The package is built around a few types:
//
//   - [Vector2]: value type for positions, velocities and impulses
//   - [Body]: shared physical state with a [Shape] payload (box or circle)
//   - [Manifold]: contact data and impulse solver for one overlapping pair
//   - [World]: body registries, manifold pool and the sub-stepped loop
//
// # Example
//
//	w := physics.NewWorld(physics.Vec(0, 100), 10, 10)
//	w.AddBody(physics.MustBox(physics.Vec(0, 0), physics.Vec(100, 20), 0, 0))
//	w.AddBody(physics.MustBox(physics.Vec(0, -30), physics.Vec(20, 20), 1, 0))
//	for i := 0; i < 100; i++ {
//	    w.Update(0.016)
//	}
//
// # Stepping
//
// Each Update runs a fixed number of sub-steps. A sub-step finds contacts,
// integrates half a step of forces, sets up manifolds, runs the sequential
// impulse solver for a fixed number of iterations, integrates velocities and
// the second half step, applies positional correction and refreshes bounds.
//
// The solver is a Gauss-Seidel relaxation, so results depend on traversal
// order: statics in registration order, then the dynamics registered after
// the current one. Two worlds built the same way and fed the same dt
// sequence produce identical trajectories.
//
// # Scaling
//
// The broad phase pairs every dynamic body with every static and every other
// dynamic body. This is O(n²) and only suitable for small scenes; replacing it
// would also change contact order and therefore solver output.
//
// # Thread Safety
//
// A World and its bodies must not be shared between goroutines. Independent
// worlds may step in parallel.
package physics
