package config

import "sort"

var Presets = map[string]*Config{
	// demo parameters with a stiff proportional gain
	"reference": {
		Integrator: "rk45",
		Tank:       TankConfig{SurfaceArea: 2.0, OutflowCoefficient: 1.2},
		PID:        PIDConfig{Kp: 20, Ki: 0.8, AntiWindup: 0.1},
		Saturation: SaturationConfig{Low: 0, High: 7},
		Time:       TimeConfig{Start: 0, End: 100},
		Trajectory: TrajectoryConfig{
			Values: []float64{10, 5, 0, 15, 5},
			Times:  []float64{0, 20, 40, 60, 80},
		},
	},
	"convergence": {
		Integrator: "rk45",
		Tank:       TankConfig{SurfaceArea: 2.0, OutflowCoefficient: 1.2},
		PID:        PIDConfig{Kp: 2, Ki: 0.8, AntiWindup: 0.1},
		Saturation: SaturationConfig{Low: 0, High: 7},
		Time:       TimeConfig{Start: 0, End: 100},
		Trajectory: TrajectoryConfig{
			Values: []float64{10, 5, 0, 15, 5},
			Times:  []float64{0, 20, 40, 60, 80},
		},
	},
	"deadband": {
		Integrator: "rk45",
		Tank:       TankConfig{SurfaceArea: 2.0, OutflowCoefficient: 1.2},
		PID:        PIDConfig{Kp: 2, Ki: 0.8, AntiWindup: 0.2, Deadband: 0.05},
		Saturation: SaturationConfig{Low: 0, High: 7},
		Time:       TimeConfig{Start: 0, End: 30},
		Trajectory: TrajectoryConfig{
			Values: []float64{5, 7.6, 2},
			Times:  []float64{0, 10, 20},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
