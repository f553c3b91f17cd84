package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/tanksim/internal/control"
	"github.com/san-kum/tanksim/internal/dynamo"
	"github.com/san-kum/tanksim/internal/trajectory"
)

// ClosedLoop binds the plant, controller and schedule for one run. It owns the
// schedule cursor; the controller owns its own memory.
type ClosedLoop struct {
	Tank       *Tank
	Controller *control.PID
	Schedule   *trajectory.Schedule

	cursor trajectory.Cursor
	evals  int
}

func NewClosedLoop(tank *Tank, pid *control.PID, schedule *trajectory.Schedule) *ClosedLoop {
	return &ClosedLoop{Tank: tank, Controller: pid, Schedule: schedule}
}

func (c *ClosedLoop) StateDim() int { return 1 }

// Derive evaluates the controller at (t, h) and returns the level rate.
func (c *ClosedLoop) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	c.evals++
	h := x[0]
	if math.IsNaN(h) || h < -c.Tank.DomainTolerance {
		return nil, fmt.Errorf("%w: level %g at t=%.6f", dynamo.ErrNumericDomain, h, t)
	}

	sp := c.Schedule.SetpointAt(t, &c.cursor)
	f, _ := c.Controller.Update(t, h, sp)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: forcing %g at t=%.6f", dynamo.ErrNumericDomain, f, t)
	}

	dh, err := c.Tank.Rate(h, f)
	if err != nil {
		return nil, err
	}
	return dynamo.State{dh}, nil
}

// Reset rewinds the cursor and clears the controller for a new run.
func (c *ClosedLoop) Reset() {
	c.cursor = 0
	c.evals = 0
	c.Controller.Reset()
}

func (c *ClosedLoop) Cursor() trajectory.Cursor { return c.cursor }

// Evaluations counts Derive calls since the last Reset.
func (c *ClosedLoop) Evaluations() int { return c.evals }
