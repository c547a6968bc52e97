package series

import (
	"errors"
	"fmt"
)

// Precondition failures. Callers match them with errors.Is; the returned
// errors wrap these with the offending values.
var (
	ErrInvalidRange        = errors.New("series: invalid range")
	ErrLengthMismatch      = errors.New("series: length mismatch")
	ErrInvalidProportion   = errors.New("series: proportion must be between 0 and 1")
	ErrInvalidBinWidth     = errors.New("series: bin width must be greater than 0")
	ErrMultipleAlertValues = errors.New("series: more than one distinct alert value")
)

func lengthMismatch(a, b int) error {
	return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, a, b)
}
