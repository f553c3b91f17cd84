package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
)

// OrderedStepper is a fixed-step method that reports its order of accuracy.
type OrderedStepper interface {
	dynamo.Stepper
	Order() int
}

// Doubling turns a fixed-step method into an adaptive one by comparing a
// full step against two half steps (Richardson extrapolation of the error).
type Doubling struct {
	stepper  OrderedStepper
	safety   float64
	minScale float64
	maxScale float64
}

func NewDoubling(s OrderedStepper) *Doubling {
	return &Doubling{
		stepper:  s,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

// StepAdaptive runs the half steps first so the right-hand side is sampled in
// time order before the full step revisits the interval.
func (d *Doubling) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.StepResult, error) {
	half := dt / 2
	xHalf, err := d.stepper.Step(dyn, x, t, half)
	if err != nil {
		return dynamo.StepResult{}, err
	}
	x2, err := d.stepper.Step(dyn, xHalf, t+half, half)
	if err != nil {
		return dynamo.StepResult{}, err
	}
	x1, err := d.stepper.Step(dyn, x, t, dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	p := float64(d.stepper.Order())
	denom := math.Pow(2, p) - 1
	errEst := x2.Sub(x1)
	for i := range errEst {
		errEst[i] /= denom
	}
	errRatio := tol.Scaled(errEst, x, x2)

	scale := d.maxScale
	if errRatio > 0 {
		scale = d.safety * math.Pow(errRatio, -1/(p+1))
		scale = math.Min(d.maxScale, math.Max(d.minScale, scale))
	}

	return dynamo.StepResult{
		X:        x2,
		ErrRatio: errRatio,
		Accepted: errRatio <= 1,
		NextDt:   dt * scale,
	}, nil
}

// ByName returns the adaptive stepper registered under name.
func ByName(name string) (dynamo.AdaptiveStepper, error) {
	switch name {
	case "", "rk45", "dopri":
		return NewRK45(), nil
	case "rk4":
		return NewDoubling(NewRK4()), nil
	case "euler":
		return NewDoubling(NewEuler()), nil
	default:
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrConfiguration, name)
	}
}

// Names lists the integrators accepted by ByName.
func Names() []string {
	return []string{"rk45", "rk4", "euler"}
}
