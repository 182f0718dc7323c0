package similarity

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch matches any *DimensionMismatchError via errors.Is.
	ErrDimensionMismatch = errors.New("similarity: dimension mismatch")

	// ErrDegenerateVector is returned when a similarity is undefined for the
	// inputs: an empty or zero-norm vector, or a non-finite result.
	ErrDegenerateVector = errors.New("similarity: degenerate vector")
)

// DimensionMismatchError reports two vectors of different lengths.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("similarity: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
