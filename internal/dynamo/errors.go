package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates invalid parameters supplied before a run.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrSchedule indicates a malformed setpoint trajectory.
	ErrSchedule = fmt.Errorf("%w: malformed trajectory", ErrConfiguration)

	// ErrNumericDomain indicates the liquid level left its valid domain.
	ErrNumericDomain = errors.New("dynamo: state outside numeric domain")

	// ErrIntegration indicates the adaptive solver failed to converge or ran
	// out of its step budget.
	ErrIntegration = errors.New("dynamo: integration failed")

	// ErrBusy indicates a run was requested while another run on the same
	// simulator is in progress.
	ErrBusy = errors.New("dynamo: simulation already running")

	// ErrNoResult indicates output was requested before a successful run.
	ErrNoResult = errors.New("dynamo: no simulation result")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Configurationf builds an ErrConfiguration with a formatted reason.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
