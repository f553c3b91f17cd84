package sim

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/integrators"
	"github.com/san-kum/tanksim/internal/physics"
	"github.com/san-kum/tanksim/internal/trajectory"
	"go.uber.org/zap"
)

// Simulator runs the closed tank loop. Setters validate eagerly; Run resets
// the controller and schedule cursor and integrates over the configured span.
//
// A Simulator is not safe for concurrent use. Independent simulators share no
// state and may run on separate goroutines.
type Simulator struct {
	tank     *physics.Tank
	gains    control.Gains
	limits   control.Limits
	h0       float64
	t0, tEnd float64
	grid     []float64
	values   []float64
	times    []float64
	schedule *trajectory.Schedule

	haveGains  bool
	haveLimits bool

	stepper    dynamo.AdaptiveStepper
	tol        dynamo.Tolerance
	maxStep    float64
	outputStep float64
	maxSteps   int
	logger     *zap.SugaredLogger

	loop    *physics.ClosedLoop
	running atomic.Bool
	phase   Phase
	result  *Result
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		stepper:    integrators.NewRK45(),
		tol:        dynamo.DefaultTolerance(),
		maxStep:    DefaultMaxStep,
		outputStep: DefaultOutputStep,
		maxSteps:   DefaultMaxSteps,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) SetTankVariables(area, k float64) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	tank, err := physics.NewTank(area, k)
	if err != nil {
		return err
	}
	s.tank = tank
	s.phase = Configured
	return nil
}

func (s *Simulator) SetPIDSettings(kp, ki, kd float64, opts ...PIDOption) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	g := control.Gains{Kp: kp, Ki: ki, Kd: kd}
	for _, opt := range opts {
		opt(&g)
	}
	if err := g.Validate(); err != nil {
		return err
	}
	s.gains = g
	s.haveGains = true
	s.phase = Configured
	return nil
}

func (s *Simulator) SetSaturation(low, high float64) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	l := control.Limits{Low: low, High: high}
	if err := l.Validate(); err != nil {
		return err
	}
	s.limits = l
	s.haveLimits = true
	s.phase = Configured
	return nil
}

func (s *Simulator) SetInitialCondition(h0 float64) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	if math.IsNaN(h0) || math.IsInf(h0, 0) || h0 < 0 {
		return dynamo.Configurationf("initial level must be finite and >= 0, got %g", h0)
	}
	s.h0 = h0
	s.phase = Configured
	return nil
}

// SetSimTime sets the span [t0, tEnd) and builds the output grid
// t0, t0+step, ... below tEnd.
func (s *Simulator) SetSimTime(t0, tEnd float64) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(tEnd) || math.IsInf(tEnd, 0) {
		return dynamo.Configurationf("time span must be finite, got [%g, %g)", t0, tEnd)
	}
	if !(tEnd > t0) {
		return dynamo.Configurationf("empty or inverted time span [%g, %g)", t0, tEnd)
	}

	n := int(math.Ceil((tEnd-t0)/s.outputStep - 1e-9))
	if n < 1 {
		n = 1
	}
	if n > maxGridPoints {
		return dynamo.Configurationf("time span yields %d output points, limit is %d", n, maxGridPoints)
	}

	grid := make([]float64, n)
	for i := range grid {
		grid[i] = t0 + float64(i)*s.outputStep
	}

	if s.values != nil {
		sched, err := trajectory.New(s.values, s.times, tEnd)
		if err != nil {
			return err
		}
		s.schedule = sched
	}

	s.t0, s.tEnd = t0, tEnd
	s.grid = grid
	s.phase = Configured
	return nil
}

// SetTrajectory sets the setpoint values and the times at which each becomes
// active. A sentinel boundary beyond the horizon keeps the last value active.
func (s *Simulator) SetTrajectory(values, times []float64) error {
	if s.running.Load() {
		return dynamo.ErrBusy
	}
	sched, err := trajectory.New(values, times, s.tEnd)
	if err != nil {
		return err
	}
	s.values = append([]float64(nil), values...)
	s.times = append([]float64(nil), times...)
	s.schedule = sched
	s.phase = Configured
	return nil
}

// Phase reports where the simulator is in its run cycle.
func (s *Simulator) Phase() Phase { return s.phase }

func (s *Simulator) ready() error {
	var missing []string
	if s.tank == nil {
		missing = append(missing, "tank variables")
	}
	if !s.haveGains {
		missing = append(missing, "pid settings")
	}
	if !s.haveLimits {
		missing = append(missing, "saturation")
	}
	if s.grid == nil {
		missing = append(missing, "simulation time")
	}
	if s.schedule == nil {
		missing = append(missing, "trajectory")
	}
	if len(missing) > 0 {
		return dynamo.Configurationf("missing %v", missing)
	}
	return nil
}

// Run resets the controller state and schedule cursor, then integrates the
// closed loop over the configured span. On failure the previous result is
// discarded and the error is returned.
func (s *Simulator) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return dynamo.ErrBusy
	}
	defer s.running.Store(false)

	if err := s.ready(); err != nil {
		return err
	}

	s.phase = Resetting
	s.result = nil
	s.reset()

	s.phase = Integrating
	s.logger.Debugw("run started",
		"t0", s.t0, "t_end", s.tEnd, "points", len(s.grid),
		"kp", s.gains.Kp, "ki", s.gains.Ki, "kd", s.gains.Kd)

	res, err := s.integrate()
	if err != nil {
		s.phase = Failed
		s.logger.Warnw("run failed", "error", err)
		return err
	}

	s.result = res
	s.phase = Done
	s.logger.Debugw("run finished",
		"accepted", res.Stats.Accepted, "rejected", res.Stats.Rejected,
		"evaluations", res.Stats.Evaluations, "updates", res.Stats.Updates)
	return nil
}

func (s *Simulator) reset() {
	if s.loop == nil {
		s.loop = physics.NewClosedLoop(s.tank, control.NewPID(s.gains, s.limits), s.schedule)
	} else {
		s.loop.Tank = s.tank
		s.loop.Schedule = s.schedule
		s.loop.Controller.Gains = s.gains
		s.loop.Controller.Limits = s.limits
	}
	s.loop.Reset()
}

// integrate advances grid point to grid point. Steps never exceed maxStep and
// are clipped to land exactly on the next output time.
func (s *Simulator) integrate() (*Result, error) {
	grid := s.grid
	h := make([]float64, len(grid))
	h[0] = s.h0

	x := dynamo.State{s.h0}
	t := grid[0]
	dt := math.Min(DefaultInitialStep, s.maxStep)
	var stats Stats

	fail := func(err error) (*Result, error) {
		return nil, &dynamo.SimulationError{
			Step:    stats.Accepted,
			Time:    t,
			State:   x.Clone(),
			Wrapped: err,
		}
	}

	for i := 1; i < len(grid); i++ {
		target := grid[i]
		for t < target {
			if stats.Accepted+stats.Rejected >= s.maxSteps {
				return fail(fmt.Errorf("%w: step budget of %d exhausted", dynamo.ErrIntegration, s.maxSteps))
			}

			proposed := math.Min(dt, s.maxStep)
			step := proposed
			hit := false
			if remaining := target - t; step >= remaining {
				step = remaining
				hit = true
			}

			res, err := s.stepper.StepAdaptive(s.loop, x, t, step, s.tol)
			if err == nil && (!res.X.IsValid() || res.X[0] < -s.tank.DomainTolerance) {
				err = fmt.Errorf("%w: level %g after step at t=%.6f", dynamo.ErrNumericDomain, res.X[0], t+step)
			}
			if err != nil {
				if !errors.Is(err, dynamo.ErrNumericDomain) {
					return fail(err)
				}
				// trial stages left the domain; retry with a shorter step
				stats.Rejected++
				dt = step / 2
				if dt < DefaultMinStep {
					return fail(err)
				}
				continue
			}

			if !res.Accepted {
				stats.Rejected++
				dt = res.NextDt
				if dt < DefaultMinStep {
					return fail(fmt.Errorf("%w: step size %g below minimum", dynamo.ErrIntegration, dt))
				}
				continue
			}

			stats.Accepted++
			x = res.X
			dt = res.NextDt
			if hit {
				t = target
				dt = math.Max(dt, proposed)
			} else {
				t += step
			}
		}
		// accepted states may sit just below zero inside the domain tolerance
		h[i] = math.Max(x[0], 0)
	}

	events := s.loop.Controller.Events()
	res := newResult(grid, h, events)
	stats.Evaluations = s.loop.Evaluations()
	stats.Updates = len(events)
	res.Stats = stats
	return res, nil
}

// Output returns the dense trace (t, h) and the controller trace (tt, ee, ff)
// of the last successful run. The slices must not be modified.
func (s *Simulator) Output() (t, h, tt, ee, ff []float64, err error) {
	if s.result == nil {
		return nil, nil, nil, nil, nil, dynamo.ErrNoResult
	}
	r := s.result
	return r.T, r.H, r.TT, r.EE, r.FF, nil
}

// Result returns the last successful run.
func (s *Simulator) Result() (*Result, error) {
	if s.result == nil {
		return nil, dynamo.ErrNoResult
	}
	return s.result, nil
}

// Trajectory returns the setpoint values and the stair boundaries, including
// the sentinel end.
func (s *Simulator) Trajectory() (values, boundaries []float64, err error) {
	if s.schedule == nil {
		return nil, nil, dynamo.Configurationf("trajectory not set")
	}
	return s.schedule.Values(), s.schedule.Boundaries(), nil
}

// Schedule returns the configured setpoint schedule, or nil.
func (s *Simulator) Schedule() *trajectory.Schedule { return s.schedule }

// Tank returns the configured plant, or nil.
func (s *Simulator) Tank() *physics.Tank { return s.tank }

// Limits returns the configured actuator range.
func (s *Simulator) Limits() control.Limits { return s.limits }
