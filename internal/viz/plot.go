package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
)

// resample picks n evenly spaced samples of a function of time over
// [t0, t1]. at is called with increasing t.
func resample(t0, t1 float64, n int, at func(t float64) float64) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	for i := range out {
		t := t0 + (t1-t0)*float64(i)/float64(n-1)
		if i == n-1 {
			t = t1
		}
		out[i] = at(t)
	}
	return out
}

// denseAt returns a sampler over the dense trace using the last grid point at
// or before t.
func denseAt(res *sim.Result) func(t float64) float64 {
	i := 0
	return func(t float64) float64 {
		for i+1 < len(res.T) && res.T[i+1] <= t {
			i++
		}
		return res.H[i]
	}
}

// heldAt returns a sampler over the controller trace that holds each output
// until the next update, starting from zero.
func heldAt(res *sim.Result) func(t float64) float64 {
	i := -1
	return func(t float64) float64 {
		for i+1 < len(res.TT) && res.TT[i+1] <= t {
			i++
		}
		if i < 0 {
			return 0
		}
		return res.FF[i]
	}
}

// PlotLevel charts the level and, when sched is non-nil, the setpoint.
func PlotLevel(res *sim.Result, sched *trajectory.Schedule, width, height int) string {
	if len(res.T) == 0 {
		return ""
	}
	t0, t1 := res.T[0], res.T[len(res.T)-1]
	series := [][]float64{resample(t0, t1, width, denseAt(res))}
	colors := []asciigraph.AnsiColor{asciigraph.Green}
	caption := fmt.Sprintf("level h, t in [%.2f, %.2f]", t0, t1)

	if sched != nil {
		var c trajectory.Cursor
		series = append(series, resample(t0, t1, width, func(t float64) float64 {
			return sched.SetpointAt(t, &c)
		}))
		colors = append(colors, asciigraph.Yellow)
		caption = fmt.Sprintf("level h (green) vs setpoint (yellow), t in [%.2f, %.2f]", t0, t1)
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// PlotForcing charts the actuator output as a step signal.
func PlotForcing(res *sim.Result, width, height int) string {
	if len(res.T) == 0 {
		return ""
	}
	t0, t1 := res.T[0], res.T[len(res.T)-1]
	data := resample(t0, t1, width, heldAt(res))
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("forcing f, %d updates", len(res.TT))),
	)
}
