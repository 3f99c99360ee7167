package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrConfiguration marks a malformed system or malformed analysis
	// parameters: bad capacities, negative costs, dangling references.
	// Always fatal to the call, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoWitness is the well-defined negative result: the searched space
	// was exhausted and contains no non-closure witness.
	ErrNoWitness = errors.New("no witness found")

	// ErrSearchBudgetExceeded means the enumeration budget ran out before a
	// witness or an exhaustive negative result was reached. Recoverable by
	// re-invoking with a larger budget; never to be conflated with
	// ErrNoWitness.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")

	// ErrNumericTolerance marks a comparison that landed inside the
	// ambiguous band around the chosen tolerance. Reported, not resolved:
	// the caller picks a tighter tolerance or accepts the ambiguity.
	ErrNumericTolerance = errors.New("result within numeric tolerance band")

	// ErrArithmeticDomain signals an upstream programming or configuration
	// bug surfacing as an impossible arithmetic state (negative
	// discriminant, zero trace, n < 0 in a dimension formula).
	ErrArithmeticDomain = errors.New("arithmetic domain error")

	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: field %s: %s", ErrConfiguration, field, reason)
}

func NewArithmeticDomainError(operation string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrArithmeticDomain, operation, reason)
}

func NewToleranceAmbiguityError(test string, deviation, tolerance float64) error {
	return fmt.Errorf("%w: %s deviation %g within ambiguous band above tolerance %g",
		ErrNumericTolerance, test, deviation, tolerance)
}

// Error checking helpers

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrSearchBudgetExceeded)
}

func IsNegativeResult(err error) bool {
	return errors.Is(err, ErrNoWitness)
}
