// Package control provides the gated discrete PID law that drives the tank.
//
// The controller sees time only through [PID.Update]. An update fires when
// more than [MinDt] has elapsed since the previous one and the tracking error
// lies outside the deadband; otherwise the previous output is returned and
// nothing is mutated. This makes the law safe to evaluate at every internal
// stage of an adaptive integrator:
//
//	pid := control.NewPID(gains, control.Limits{Low: 0, High: 7})
//	u, fired := pid.Update(t, level, setpoint)
//
// Every fired update is recorded as an [Event]; [PID.Events] exposes the trace.
package control
