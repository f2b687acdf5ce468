// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; app code never imports an adapter directly.
//
// Conventions:
//   - context.Context is always the first parameter
//   - arguments and results are domain types, never transport DTOs
//   - failures are reported with domain errors (domain.ErrValidation, domain.ErrUnavailable)
package ports

import (
	"context"

	"github.com/jsamuelsen/age-service/internal/domain"
)

// AgeCalculator computes the age in whole years between two dates.
//
// The in-process rule is domain.AgeBetween. Implementations of this port
// are alternative calculators, typically a peer service, whose answers the
// application verifies against that rule before use.
type AgeCalculator interface {
	// Calculate returns the age for birth at ref.
	// Returns domain.ErrUnavailable when the calculator cannot be reached
	// and domain.ErrValidation when it rejects the input.
	Calculate(ctx context.Context, birth, ref domain.Date) (int, error)
}
