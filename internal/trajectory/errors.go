package trajectory

import (
	"fmt"

	"github.com/san-kum/tanksim/internal/dynamo"
)

type LengthError struct {
	Values int
	Times  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: %d values but %d times", dynamo.ErrSchedule, e.Values, e.Times)
}

func (e *LengthError) Unwrap() error { return dynamo.ErrSchedule }

type ValueError struct {
	Index  int
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%v: entry %d: %s", dynamo.ErrSchedule, e.Index, e.Reason)
}

func (e *ValueError) Unwrap() error { return dynamo.ErrSchedule }
