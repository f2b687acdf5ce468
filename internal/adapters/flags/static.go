// Package flags provides a FeatureFlags adapter backed by values fixed at
// startup from configuration.
package flags

import (
	"context"
	"maps"
	"sync"
)

// Static serves flags from an in-memory table. Values can be replaced at
// runtime with Set, which is safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	bools map[string]bool
	ints  map[string]int
}

// NewStatic creates a flag set with the given boolean flags.
func NewStatic(bools map[string]bool) *Static {
	s := &Static{
		bools: make(map[string]bool, len(bools)),
		ints:  make(map[string]int),
	}
	maps.Copy(s.bools, bools)

	return s
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.bools[flag]; ok {
		return v
	}
	return defaultValue
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.ints[flag]; ok {
		return v
	}
	return defaultValue
}

// Set overrides a boolean flag.
func (s *Static) Set(flag string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bools[flag] = enabled
}

// SetInt overrides an integer flag.
func (s *Static) SetInt(flag string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ints[flag] = value
}
