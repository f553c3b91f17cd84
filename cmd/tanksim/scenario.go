package main

import (
	"fmt"

	"github.com/san-kum/tanksim/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	integrator string

	area, outflow         float64
	kp, ki, kd            float64
	antiWindup, deadband  float64
	satLow, satHigh       float64
	h0, tStart, tEnd      float64
	setpoints, stairTimes []float64
)

func addScenarioFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "scenario file (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&integrator, "integrator", d.Integrator, "integrator: rk45, rk4 or euler")
	f.Float64Var(&area, "area", d.Tank.SurfaceArea, "tank surface area")
	f.Float64Var(&outflow, "outflow", d.Tank.OutflowCoefficient, "outflow coefficient")
	f.Float64Var(&kp, "kp", d.PID.Kp, "pid kp")
	f.Float64Var(&ki, "ki", d.PID.Ki, "pid ki")
	f.Float64Var(&kd, "kd", d.PID.Kd, "pid kd")
	f.Float64Var(&antiWindup, "anti-windup", d.PID.AntiWindup, "back-calculation gain")
	f.Float64Var(&deadband, "deadband", d.PID.Deadband, "deadband as a fraction of the setpoint")
	f.Float64Var(&satLow, "low", d.Saturation.Low, "lower actuator limit")
	f.Float64Var(&satHigh, "high", d.Saturation.High, "upper actuator limit")
	f.Float64Var(&h0, "h0", d.InitialLevel, "initial level")
	f.Float64Var(&tStart, "t0", d.Time.Start, "start time")
	f.Float64Var(&tEnd, "t-end", d.Time.End, "end time (exclusive)")
	f.Float64SliceVar(&setpoints, "setpoints", d.Trajectory.Values, "setpoint values")
	f.Float64SliceVar(&stairTimes, "times", d.Trajectory.Times, "times at which each setpoint starts")
}

// resolveConfig layers defaults, a preset, a scenario file and changed flags,
// in that order. The file overrides only the fields it names.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("area") {
		cfg.Tank.SurfaceArea = area
	}
	if flags.Changed("outflow") {
		cfg.Tank.OutflowCoefficient = outflow
	}
	if flags.Changed("kp") {
		cfg.PID.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.PID.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.PID.Kd = kd
	}
	if flags.Changed("anti-windup") {
		cfg.PID.AntiWindup = antiWindup
	}
	if flags.Changed("deadband") {
		cfg.PID.Deadband = deadband
	}
	if flags.Changed("low") {
		cfg.Saturation.Low = satLow
	}
	if flags.Changed("high") {
		cfg.Saturation.High = satHigh
	}
	if flags.Changed("h0") {
		cfg.InitialLevel = h0
	}
	if flags.Changed("t0") {
		cfg.Time.Start = tStart
	}
	if flags.Changed("t-end") {
		cfg.Time.End = tEnd
	}
	if flags.Changed("setpoints") {
		cfg.Trajectory.Values = setpoints
	}
	if flags.Changed("times") {
		cfg.Trajectory.Times = stairTimes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
