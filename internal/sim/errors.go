package sim

import (
	"errors"
	"fmt"
)

// ErrExtinct is returned when stepping a simulation with no live stars.
var ErrExtinct = errors.New("sim: no live stars left")

// StepError wraps a failure with the step it happened in.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g s): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
