// Package trajectory holds the piecewise-constant setpoint schedule followed
// by the level controller.
package trajectory

import (
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
)

// SentinelEnd is the boundary appended after the last user segment when the
// horizon is short enough.
const SentinelEnd = 1000.0

// Segment is one stair of the schedule: Value holds on [Start, End].
type Segment struct {
	Value float64
	Start float64
	End   float64
}

// Cursor indexes the active segment. It only moves forward within a run.
type Cursor int

type Schedule struct {
	segments []Segment
}

// New builds a schedule from setpoint values and the times at which each value
// becomes active. A sentinel boundary beyond horizon closes the last segment.
func New(values, times []float64, horizon float64) (*Schedule, error) {
	if len(values) == 0 {
		return nil, dynamo.ErrSchedule
	}
	if len(values) != len(times) {
		return nil, &LengthError{Values: len(values), Times: len(times)}
	}
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) ||
			math.IsNaN(times[i]) || math.IsInf(times[i], 0) {
			return nil, &ValueError{Index: i, Reason: "not finite"}
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, &ValueError{Index: i, Reason: "times not strictly increasing"}
		}
	}

	last := times[len(times)-1]
	sentinel := sentinelFor(last, horizon)

	segs := make([]Segment, len(values))
	for i := range values {
		end := sentinel
		if i+1 < len(times) {
			end = times[i+1]
		}
		segs[i] = Segment{Value: values[i], Start: times[i], End: end}
	}
	return &Schedule{segments: segs}, nil
}

func sentinelFor(last, horizon float64) float64 {
	s := SentinelEnd
	if h := 10 * math.Abs(horizon); h > s {
		s = h
	}
	if l := 2*math.Abs(last) + 1; l > s {
		s = l
	}
	return s
}

// SetpointAt advances c past every segment that ended before t and returns the
// value of the segment it lands on. The cursor never moves backwards, so an
// earlier t after a later one keeps the later setpoint.
func (s *Schedule) SetpointAt(t float64, c *Cursor) float64 {
	i := int(*c)
	for i+1 < len(s.segments) && s.segments[i].End < t {
		i++
	}
	*c = Cursor(i)
	return s.segments[i].Value
}

// Values returns the setpoint of every segment.
func (s *Schedule) Values() []float64 {
	out := make([]float64, len(s.segments))
	for i, seg := range s.segments {
		out[i] = seg.Value
	}
	return out
}

// Boundaries returns the stair edges: every segment start plus the sentinel.
func (s *Schedule) Boundaries() []float64 {
	out := make([]float64, 0, len(s.segments)+1)
	for _, seg := range s.segments {
		out = append(out, seg.Start)
	}
	return append(out, s.segments[len(s.segments)-1].End)
}
