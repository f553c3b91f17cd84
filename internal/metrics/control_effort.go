package metrics

import (
	"math"

	"github.com/san-kum/tanksim/internal/control"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ControlEffort is the mean absolute forcing over the recorded updates.
func ControlEffort(ff []float64) float64 {
	if len(ff) == 0 {
		return 0
	}
	abs := make([]float64, len(ff))
	for i, f := range ff {
		abs[i] = math.Abs(f)
	}
	return stat.Mean(abs, nil)
}

// PeakForcing is the largest absolute forcing applied.
func PeakForcing(ff []float64) float64 {
	if len(ff) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(ff)), math.Abs(floats.Min(ff)))
}

// SaturationRatio is the fraction of updates whose output sits on a limit.
func SaturationRatio(ff []float64, limits control.Limits) float64 {
	if len(ff) == 0 {
		return 0
	}
	n := 0
	for _, f := range ff {
		if f <= limits.Low || f >= limits.High {
			n++
		}
	}
	return float64(n) / float64(len(ff))
}
