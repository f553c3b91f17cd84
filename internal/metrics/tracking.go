package metrics

import "math"

// integral accumulates a function of the tracking error with the left
// rectangle rule over the sample spacing.
type integral struct {
	name   string
	weight func(e float64) float64

	sum     float64
	prevT   float64
	prevE   float64
	samples int
}

func (m *integral) Name() string { return m.name }

func (m *integral) Observe(t, level, setpoint float64) {
	e := setpoint - level
	if m.samples > 0 {
		m.sum += m.weight(m.prevE) * (t - m.prevT)
	}
	m.prevT, m.prevE = t, e
	m.samples++
}

func (m *integral) Value() float64 { return m.sum }

func (m *integral) Reset() {
	m.sum, m.prevT, m.prevE = 0, 0, 0
	m.samples = 0
}

// NewIAE integrates |e| over time.
func NewIAE() Metric {
	return &integral{name: "iae", weight: math.Abs}
}

// NewISE integrates e² over time.
func NewISE() Metric {
	return &integral{name: "ise", weight: func(e float64) float64 { return e * e }}
}

type MaxError struct {
	name string
	max  float64
}

func NewMaxError() *MaxError {
	return &MaxError{name: "max_abs_error"}
}

func (m *MaxError) Name() string { return m.name }

func (m *MaxError) Observe(t, level, setpoint float64) {
	m.max = math.Max(m.max, math.Abs(setpoint-level))
}

func (m *MaxError) Value() float64 { return m.max }

func (m *MaxError) Reset() { m.max = 0 }
