// Package viz renders finished tank runs for the terminal.
//
//   - [PlotLevel]: level trace against the setpoint stairs
//   - [PlotForcing]: actuator output held between controller updates
//   - [TankFrame]: Braille drawing of the tank at one instant
//   - [Summary]: styled panel with tracking and solver figures
package viz
