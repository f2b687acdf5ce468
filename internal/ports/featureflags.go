package ports

import "context"

// FeatureFlags evaluates runtime feature toggles.
type FeatureFlags interface {
	// IsEnabled reports whether flag is on, or defaultValue when the flag
	// is unknown to the provider.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetInt returns an integer flag value, or defaultValue when unknown.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
