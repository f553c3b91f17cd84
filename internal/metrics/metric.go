package metrics

import (
	"github.com/san-kum/tanksim/internal/sim"
	"github.com/san-kum/tanksim/internal/trajectory"
)

// Metric accumulates a scalar over the dense level trace.
type Metric interface {
	Name() string
	Observe(t, level, setpoint float64)
	Value() float64
	Reset()
}

// Replay feeds every dense sample of res, paired with its active setpoint,
// to each metric.
func Replay(res *sim.Result, sched *trajectory.Schedule, ms ...Metric) {
	var c trajectory.Cursor
	for i, t := range res.T {
		sp := sched.SetpointAt(t, &c)
		for _, m := range ms {
			m.Observe(t, res.H[i], sp)
		}
	}
}
