package placement

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates the layout or cell width cannot be
	// legalized at all: fewer than two rows, a non-positive row pitch, or a
	// cell width that is not a positive multiple of every row's site pitch.
	ErrInvalidConfiguration = errors.New("placement: invalid configuration")

	// ErrCapacityExhausted indicates a cell could not be placed in any row.
	ErrCapacityExhausted = errors.New("placement: no space to place cell")
)

// CapacityError reports the cell that could not be placed.
// It matches ErrCapacityExhausted with errors.Is.
type CapacityError struct {
	Cell string
	X, Y float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no space to place cell %s (%g, %g)", e.Cell, e.X, e.Y)
}

// Is reports whether target is ErrCapacityExhausted.
func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExhausted }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
