package sim

import (
	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"go.uber.org/zap"
)

const (
	DefaultOutputStep  = 0.01
	DefaultMaxStep     = 0.01
	DefaultInitialStep = 1e-3
	DefaultMinStep     = 1e-12
	DefaultMaxSteps    = 5_000_000

	// maxGridPoints bounds the dense trace allocation.
	maxGridPoints = 50_000_000
)

// Phase is the run state of a Simulator.
type Phase int

const (
	Configured Phase = iota
	Resetting
	Integrating
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Configured:
		return "configured"
	case Resetting:
		return "reset"
	case Integrating:
		return "integrating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats describes the work done by one run.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	Updates     int
}

// Result holds the dense plant trace (T, H) on the output grid and the sparse
// controller trace (TT, EE, FF) recorded at fired updates.
type Result struct {
	T  []float64
	H  []float64
	TT []float64
	EE []float64
	FF []float64

	Stats Stats
}

func newResult(grid, h []float64, events []control.Event) *Result {
	r := &Result{
		T:  grid,
		H:  h,
		TT: make([]float64, len(events)),
		EE: make([]float64, len(events)),
		FF: make([]float64, len(events)),
	}
	for i, ev := range events {
		r.TT[i] = ev.T
		r.EE[i] = ev.Error
		r.FF[i] = ev.Output
	}
	return r
}

type Option func(*Simulator)

// WithStepper selects the adaptive integrator. Defaults to RK45.
func WithStepper(st dynamo.AdaptiveStepper) Option {
	return func(s *Simulator) {
		if st != nil {
			s.stepper = st
		}
	}
}

func WithTolerance(tol dynamo.Tolerance) Option {
	return func(s *Simulator) {
		if tol.Abs > 0 && tol.Rel >= 0 {
			s.tol = tol
		}
	}
}

// WithMaxStep bounds the integrator step so the controller is evaluated at
// least this often.
func WithMaxStep(dt float64) Option {
	return func(s *Simulator) {
		if dt > 0 {
			s.maxStep = dt
		}
	}
}

// WithOutputStep sets the spacing of the dense output grid.
func WithOutputStep(dt float64) Option {
	return func(s *Simulator) {
		if dt > 0 {
			s.outputStep = dt
		}
	}
}

// WithMaxSteps bounds the number of step attempts in one run.
func WithMaxSteps(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// PIDOption sets an optional controller gain.
type PIDOption func(*control.Gains)

func WithAntiWindup(gain float64) PIDOption {
	return func(g *control.Gains) { g.AntiWindup = gain }
}

func WithDeadband(fraction float64) PIDOption {
	return func(g *control.Gains) { g.Deadband = fraction }
}
