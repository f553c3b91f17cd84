package metrics

import (
	"math"
)

// InBand is the fraction of samples whose level lies within threshold of the
// setpoint.
type InBand struct {
	name      string
	threshold float64
	inside    int
	samples   int
}

func NewInBand(threshold float64) *InBand {
	return &InBand{
		name:      "in_band",
		threshold: threshold,
	}
}

func (s *InBand) Name() string {
	return s.name
}

func (s *InBand) Observe(t, level, setpoint float64) {
	s.samples++
	if math.Abs(setpoint-level) <= s.threshold {
		s.inside++
	}
}

func (s *InBand) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *InBand) Reset() {
	s.inside = 0
	s.samples = 0
}
