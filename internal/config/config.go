package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/integrators"
	"github.com/san-kum/tanksim/internal/physics"
	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultArea       = 2.0
	DefaultOutflow    = 1.2
	DefaultKp         = 2.0
	DefaultKi         = 0.8
	DefaultAntiWindup = 0.1
	DefaultHigh       = 7.0
	DefaultEnd        = 100.0
)

type Config struct {
	Integrator   string           `yaml:"integrator"`
	Tank         TankConfig       `yaml:"tank"`
	PID          PIDConfig        `yaml:"pid"`
	Saturation   SaturationConfig `yaml:"saturation"`
	InitialLevel float64          `yaml:"initial_level"`
	Time         TimeConfig       `yaml:"time"`
	Trajectory   TrajectoryConfig `yaml:"trajectory"`
	Solver       SolverConfig     `yaml:"solver"`
}

type TankConfig struct {
	SurfaceArea        float64 `yaml:"surface_area"`
	OutflowCoefficient float64 `yaml:"outflow_coefficient"`
}

type PIDConfig struct {
	Kp         float64 `yaml:"kp"`
	Ki         float64 `yaml:"ki"`
	Kd         float64 `yaml:"kd"`
	AntiWindup float64 `yaml:"anti_windup"`
	Deadband   float64 `yaml:"deadband"` // fraction of |setpoint|
}

type SaturationConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

type TimeConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type TrajectoryConfig struct {
	Values []float64 `yaml:"values"`
	Times  []float64 `yaml:"times"`
}

// SolverConfig tunes the integrator. Zero values keep the simulator defaults.
type SolverConfig struct {
	AbsTol     float64 `yaml:"abs_tol,omitempty"`
	RelTol     float64 `yaml:"rel_tol,omitempty"`
	MaxStep    float64 `yaml:"max_step,omitempty"`
	OutputStep float64 `yaml:"output_step,omitempty"`
	MaxSteps   int     `yaml:"max_steps,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk45",
		Tank: TankConfig{
			SurfaceArea:        DefaultArea,
			OutflowCoefficient: DefaultOutflow,
		},
		PID: PIDConfig{
			Kp:         DefaultKp,
			Ki:         DefaultKi,
			AntiWindup: DefaultAntiWindup,
		},
		Saturation: SaturationConfig{High: DefaultHigh},
		Time:       TimeConfig{End: DefaultEnd},
		Trajectory: TrajectoryConfig{
			Values: []float64{10, 5, 0, 15, 5},
			Times:  []float64{0, 20, 40, 60, 80},
		},
	}
}

// Load reads a scenario file over the defaults and validates it.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a scenario file over a copy of base and validates it. Fields
// absent from the file keep their base values.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Trajectory.Values = append([]float64(nil), c.Trajectory.Values...)
	out.Trajectory.Times = append([]float64(nil), c.Trajectory.Times...)
	return &out
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error
	if _, e := integrators.ByName(c.Integrator); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := physics.NewTank(c.Tank.SurfaceArea, c.Tank.OutflowCoefficient); e != nil {
		err = multierr.Append(err, e)
	}
	err = multierr.Append(err, c.gains().Validate())
	err = multierr.Append(err, c.limits().Validate())

	if math.IsNaN(c.InitialLevel) || math.IsInf(c.InitialLevel, 0) || c.InitialLevel < 0 {
		err = multierr.Append(err, dynamo.Configurationf("initial_level must be finite and >= 0, got %g", c.InitialLevel))
	}
	if math.IsNaN(c.Time.Start) || math.IsInf(c.Time.Start, 0) || math.IsNaN(c.Time.End) || math.IsInf(c.Time.End, 0) {
		err = multierr.Append(err, dynamo.Configurationf("time span must be finite, got [%g, %g)", c.Time.Start, c.Time.End))
	} else if !(c.Time.End > c.Time.Start) {
		err = multierr.Append(err, dynamo.Configurationf("time.end %g must be after time.start %g", c.Time.End, c.Time.Start))
	}
	if _, e := trajectory.New(c.Trajectory.Values, c.Trajectory.Times, c.Time.End); e != nil {
		err = multierr.Append(err, e)
	}

	s := c.Solver
	if s.AbsTol < 0 || s.RelTol < 0 || s.MaxStep < 0 || s.OutputStep < 0 || s.MaxSteps < 0 {
		err = multierr.Append(err, dynamo.Configurationf("solver settings must not be negative"))
	}
	return err
}

func (c *Config) gains() control.Gains {
	return control.Gains{
		Kp:         c.PID.Kp,
		Ki:         c.PID.Ki,
		Kd:         c.PID.Kd,
		AntiWindup: c.PID.AntiWindup,
		Deadband:   c.PID.Deadband,
	}
}

func (c *Config) limits() control.Limits {
	return control.Limits{Low: c.Saturation.Low, High: c.Saturation.High}
}

// SetGain sets one controller gain by name: kp, ki, kd, anti_windup or
// deadband.
func (c *Config) SetGain(name string, value float64) error {
	pid := control.NewPID(c.gains(), c.limits())
	if err := pid.SetParam(name, value); err != nil {
		return err
	}
	g := pid.Gains
	c.PID = PIDConfig{Kp: g.Kp, Ki: g.Ki, Kd: g.Kd, AntiWindup: g.AntiWindup, Deadband: g.Deadband}
	return nil
}

// Options translates the solver section into simulator options.
func (c *Config) Options() ([]sim.Option, error) {
	stepper, err := integrators.ByName(c.Integrator)
	if err != nil {
		return nil, err
	}
	opts := []sim.Option{
		sim.WithStepper(stepper),
		sim.WithMaxStep(c.Solver.MaxStep),
		sim.WithOutputStep(c.Solver.OutputStep),
		sim.WithMaxSteps(c.Solver.MaxSteps),
	}
	if c.Solver.AbsTol > 0 || c.Solver.RelTol > 0 {
		tol := dynamo.DefaultTolerance()
		if c.Solver.AbsTol > 0 {
			tol.Abs = c.Solver.AbsTol
		}
		if c.Solver.RelTol > 0 {
			tol.Rel = c.Solver.RelTol
		}
		opts = append(opts, sim.WithTolerance(tol))
	}
	return opts, nil
}

// Apply pushes the scenario through the simulator's setters.
func (c *Config) Apply(s *sim.Simulator) error {
	if err := s.SetTankVariables(c.Tank.SurfaceArea, c.Tank.OutflowCoefficient); err != nil {
		return err
	}
	g := c.gains()
	if err := s.SetPIDSettings(g.Kp, g.Ki, g.Kd, sim.WithAntiWindup(g.AntiWindup), sim.WithDeadband(g.Deadband)); err != nil {
		return err
	}
	if err := s.SetSaturation(c.Saturation.Low, c.Saturation.High); err != nil {
		return err
	}
	if err := s.SetInitialCondition(c.InitialLevel); err != nil {
		return err
	}
	if err := s.SetSimTime(c.Time.Start, c.Time.End); err != nil {
		return err
	}
	return s.SetTrajectory(c.Trajectory.Values, c.Trajectory.Times)
}

// NewSimulator builds a configured simulator for the scenario.
func (c *Config) NewSimulator(logger *zap.SugaredLogger) (*sim.Simulator, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	s := sim.New(append(opts, sim.WithLogger(logger))...)
	if err := c.Apply(s); err != nil {
		return nil, err
	}
	return s, nil
}
