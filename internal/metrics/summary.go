package metrics

import (
	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
	"gonum.org/v1/gonum/stat"
)

// DefaultBand is the tracking band used by Compute.
const DefaultBand = 0.5

// Summary condenses one run into tracking and actuation figures.
type Summary struct {
	IAE         float64 `json:"iae"`
	ISE         float64 `json:"ise"`
	MaxAbsError float64 `json:"max_abs_error"`
	FinalError  float64 `json:"final_error"`
	InBand      float64 `json:"in_band"`

	MeanLevel float64 `json:"mean_level"`
	StdLevel  float64 `json:"std_level"`

	ControlEffort   float64 `json:"control_effort"`
	PeakForcing     float64 `json:"peak_forcing"`
	SaturationRatio float64 `json:"saturation_ratio"`
	Updates         int     `json:"updates"`
	UpdateRate      float64 `json:"update_rate"`
}

func Compute(res *sim.Result, sched *trajectory.Schedule, limits control.Limits) Summary {
	var s Summary
	if len(res.T) == 0 {
		return s
	}

	iae, ise, maxErr, band := NewIAE(), NewISE(), NewMaxError(), NewInBand(DefaultBand)
	Replay(res, sched, iae, ise, maxErr, band)
	s.IAE = iae.Value()
	s.ISE = ise.Value()
	s.MaxAbsError = maxErr.Value()
	s.InBand = band.Value()

	var c trajectory.Cursor
	last := len(res.T) - 1
	s.FinalError = sched.SetpointAt(res.T[last], &c) - res.H[last]

	if len(res.H) > 1 {
		s.MeanLevel, s.StdLevel = stat.MeanStdDev(res.H, nil)
	} else {
		s.MeanLevel = res.H[0]
	}

	s.ControlEffort = ControlEffort(res.FF)
	s.PeakForcing = PeakForcing(res.FF)
	s.SaturationRatio = SaturationRatio(res.FF, limits)
	s.Updates = len(res.TT)
	if span := res.T[last] - res.T[0]; span > 0 {
		s.UpdateRate = float64(s.Updates) / span
	}
	return s
}
