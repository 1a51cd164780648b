package physics

import (
	"errors"
	"fmt"
)

// Construction errors. The stepping loop itself never fails; invalid input
// is rejected when a body is built.
var (
	// ErrInvalidExtent indicates a box half extent that is not strictly positive.
	ErrInvalidExtent = errors.New("physics: box half extent must be positive")

	// ErrInvalidRadius indicates a circle radius that is not strictly positive.
	ErrInvalidRadius = errors.New("physics: circle radius must be positive")

	// ErrInvalidMass indicates a negative or non-finite mass.
	ErrInvalidMass = errors.New("physics: mass must be finite and non-negative")

	// ErrInvalidInertia indicates a negative or non-finite inertia.
	ErrInvalidInertia = errors.New("physics: inertia must be finite and non-negative")

	// ErrInvalidDensity indicates a negative or non-finite density.
	ErrInvalidDensity = errors.New("physics: density must be finite and non-negative")

	// ErrNonFinite indicates a body whose state picked up NaN or Inf.
	ErrNonFinite = errors.New("physics: non-finite body state")
)

// BodyError wraps an error with the body and field it concerns.
type BodyError struct {
	ID      uint64
	Field   string
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d: %s: %v", e.ID, e.Field, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
