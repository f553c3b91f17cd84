// Package physics provides the tank model and the closed loop that couples it
// to the level controller.
//
// [Tank] is a vessel with gravity-driven outflow through an orifice:
//
//	dh/dt = f/A - (k/A)·sqrt(h)
//
// [ClosedLoop] implements [dynamo.System]. Each evaluation resolves the active
// setpoint, asks the controller for the pump forcing f and returns the level
// rate, so the integrator only ever sees a plain ODE right-hand side.
package physics
