package matching

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned for non-positive quantities or prices,
	// before any state is touched.
	ErrInvalidInput = errors.New("invalid input")

	ErrUnknownInstrument   = errors.New("unknown instrument")
	ErrDuplicateInstrument = errors.New("duplicate instrument")
	ErrUnknownOrder        = errors.New("unknown order")
)
