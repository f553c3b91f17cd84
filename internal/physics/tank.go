package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
)

// DefaultDomainTolerance is how far below zero a trial level may dip and still
// be treated as an empty tank.
const DefaultDomainTolerance = 1e-6

type Tank struct {
	SurfaceArea        float64
	OutflowCoefficient float64
	DomainTolerance    float64
}

func NewTank(area, k float64) (*Tank, error) {
	t := &Tank{SurfaceArea: area, OutflowCoefficient: k, DomainTolerance: DefaultDomainTolerance}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tank) Validate() error {
	if !(t.SurfaceArea > 0) || math.IsInf(t.SurfaceArea, 0) {
		return dynamo.Configurationf("surface area must be positive and finite, got %g", t.SurfaceArea)
	}
	if !(t.OutflowCoefficient >= 0) || math.IsInf(t.OutflowCoefficient, 0) {
		return dynamo.Configurationf("outflow coefficient must be >= 0 and finite, got %g", t.OutflowCoefficient)
	}
	return nil
}

// Rate returns dh/dt for level h under forcing f.
func (t *Tank) Rate(h, f float64) (float64, error) {
	if math.IsNaN(h) || h < -t.DomainTolerance {
		return 0, fmt.Errorf("%w: level %g below zero", dynamo.ErrNumericDomain, h)
	}
	if h < 0 {
		h = 0
	}
	return f/t.SurfaceArea - (t.OutflowCoefficient/t.SurfaceArea)*math.Sqrt(h), nil
}

// Outflow is the volumetric flow leaving the tank at level h.
func (t *Tank) Outflow(h float64) float64 {
	return t.OutflowCoefficient * math.Sqrt(math.Max(h, 0))
}

// Equilibrium is the level at which a constant forcing f balances outflow.
func (t *Tank) Equilibrium(f float64) float64 {
	if t.OutflowCoefficient == 0 || f <= 0 {
		return 0
	}
	r := f / t.OutflowCoefficient
	return r * r
}
