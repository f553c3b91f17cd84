package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an ODE right-hand side. Derive may fail when x lies outside the
// model's domain; steppers return that error unchanged.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

type Stepper interface {
	Step(dyn System, x State, t, dt float64) (State, error)
}

// Tolerance is the mixed absolute/relative error bound of an adaptive step.
type Tolerance struct {
	Abs float64
	Rel float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{Abs: 1e-8, Rel: 1e-6}
}

// Scaled returns the normalized RMS error of errEst against the tolerance
// envelope built from the old and new states. Values <= 1 are acceptable.
func (tol Tolerance) Scaled(errEst, x, xNew State) float64 {
	if len(errEst) == 0 {
		return 0
	}
	sum := 0.0
	for i := range errEst {
		sc := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := errEst[i] / sc
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

// StepResult is the outcome of one adaptive attempt.
type StepResult struct {
	X        State
	ErrRatio float64
	Accepted bool
	NextDt   float64
}

type AdaptiveStepper interface {
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (StepResult, error)
}
