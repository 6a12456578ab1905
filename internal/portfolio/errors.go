package portfolio

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for negative, NaN or infinite power requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingLCOE is returned when a site is allocated while one of its
	// plants has no current LCOE to rank it by.
	ErrMissingLCOE = errors.New("plant has no current LCOE")
)

func validatePower(power float64) error {
	if math.IsNaN(power) || math.IsInf(power, 0) || power < 0 {
		return fmt.Errorf("%w: power %v kWc", ErrInvalidInput, power)
	}
	return nil
}
