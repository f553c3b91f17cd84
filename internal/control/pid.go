package control

import (
	"fmt"
	"math"

	"github.com/san-kum/tanksim/internal/dynamo"
)

// MinDt is the minimum time between two controller updates.
const MinDt = 0.009

type Gains struct {
	Kp         float64
	Ki         float64
	Kd         float64
	AntiWindup float64 // back-calculation gain
	Deadband   float64 // fraction of |setpoint|
}

func (g Gains) Validate() error {
	named := []struct {
		name string
		v    float64
	}{{"kp", g.Kp}, {"ki", g.Ki}, {"kd", g.Kd}, {"anti_windup", g.AntiWindup}, {"deadband", g.Deadband}}
	for _, n := range named {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			return dynamo.Configurationf("%s must be finite, got %v", n.name, n.v)
		}
	}
	if g.AntiWindup < 0 {
		return dynamo.Configurationf("anti-windup gain must be >= 0, got %g", g.AntiWindup)
	}
	if g.Deadband < 0 {
		return dynamo.Configurationf("deadband fraction must be >= 0, got %g", g.Deadband)
	}
	return nil
}

// Limits is the actuator range.
type Limits struct {
	Low  float64
	High float64
}

func (l Limits) Validate() error {
	if math.IsNaN(l.Low) || math.IsNaN(l.High) {
		return dynamo.Configurationf("saturation limits must not be NaN")
	}
	if l.Low > l.High {
		return dynamo.Configurationf("saturation low %g above high %g", l.Low, l.High)
	}
	return nil
}

// Clamp limits v to the range and reports whether it had to.
func (l Limits) Clamp(v float64) (float64, bool) {
	if v < l.Low {
		return l.Low, true
	}
	if v > l.High {
		return l.High, true
	}
	return v, false
}

// State is the controller memory between updates.
type State struct {
	PrevError  float64
	PrevTime   float64
	Integral   float64
	PrevOutput float64
}

// Event is one fired update.
type Event struct {
	T      float64
	Error  float64
	Output float64
}

type PID struct {
	Gains  Gains
	Limits Limits
	State  State
	events []Event
}

func NewPID(g Gains, l Limits) *PID {
	return &PID{Gains: g, Limits: l}
}

// Update evaluates the control law at time t. It returns the actuator output
// and whether a new output was computed.
func (p *PID) Update(t, measured, setpoint float64) (float64, bool) {
	e := setpoint - measured
	dt := t - p.State.PrevTime

	if !(dt > MinDt) || !(math.Abs(e) > math.Abs(setpoint)*p.Gains.Deadband) {
		return p.State.PrevOutput, false
	}

	p.State.Integral += e * dt
	derivative := (e - p.State.PrevError) / dt
	raw := p.Gains.Kp*e + p.Gains.Ki*p.State.Integral + p.Gains.Kd*derivative

	out, clamped := p.Limits.Clamp(raw)
	if clamped {
		p.State.Integral -= p.Gains.AntiWindup * (raw - out)
	}

	p.State.PrevError = e
	p.State.PrevTime = t
	p.State.PrevOutput = out
	p.events = append(p.events, Event{T: t, Error: e, Output: out})

	return out, true
}

// Reset clears the controller memory and the event trace.
func (p *PID) Reset() {
	p.State = State{}
	p.events = p.events[:0]
}

// Events returns the updates fired since the last Reset. The slice is shared;
// callers that keep it across a Reset must copy it.
func (p *PID) Events() []Event {
	return p.events
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":          p.Gains.Kp,
		"ki":          p.Gains.Ki,
		"kd":          p.Gains.Kd,
		"anti_windup": p.Gains.AntiWindup,
		"deadband":    p.Gains.Deadband,
	}
}

// SetParam adjusts one gain by name.
func (p *PID) SetParam(name string, value float64) error {
	g := p.Gains
	switch name {
	case "kp":
		g.Kp = value
	case "ki":
		g.Ki = value
	case "kd":
		g.Kd = value
	case "anti_windup":
		g.AntiWindup = value
	case "deadband":
		g.Deadband = value
	default:
		return fmt.Errorf("%w: unknown pid param: %s", dynamo.ErrConfiguration, name)
	}
	if err := g.Validate(); err != nil {
		return err
	}
	p.Gains = g
	return nil
}
