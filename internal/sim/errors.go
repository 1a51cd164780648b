package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a run configuration that cannot be stepped.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")

	// ErrUnstable indicates a body picked up NaN or Inf during the run.
	ErrUnstable = errors.New("sim: simulation unstable (non-finite body state)")
)

// StepError wraps an error with the frame it happened in.
type StepError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
