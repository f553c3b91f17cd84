// Package dynamo provides the core primitives shared by the tank simulation.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Stepper]: fixed-step numerical integrator
//   - [AdaptiveStepper]: error-controlled integrator used by the simulator
//   - the error taxonomy surfaced by setters and runs
//
// # Example
//
//	loop := physics.NewClosedLoop(tank, pid, schedule)
//	res, err := integrators.NewRK45().StepAdaptive(loop, x, t, dt, tol)
//
// # Thread Safety
//
// Steppers keep scratch buffers and are NOT thread-safe. Use one stepper per
// simulator; independent simulators may run on separate goroutines.
package dynamo
