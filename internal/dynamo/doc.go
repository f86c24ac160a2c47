// Package dynamo provides core simulation primitives shared by the
// integrators and the cardiovascular engine.
//
//   - [State]: vector of integrated quantities
//   - [System]: interface for plain ODE systems (dX/dt = f(X, t))
//   - [Guard]: checked transcendental math that records the first non-finite result
//   - [SimulationError]: error wrapper carrying step, time and state
//
// # Example
//
//	var g dynamo.Guard
//	y := g.Atan(x) * scale
//	if err := g.Err(); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Values in this package are not safe for concurrent mutation. A [Guard]
// belongs to a single evaluation.
package dynamo
