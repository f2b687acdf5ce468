package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	// Name identifies the component in health responses.
	Name() string

	// Check returns nil when the component is healthy.
	Check(ctx context.Context) error
}

// OptionalDependency may be implemented by a HealthChecker whose failure
// the service can work around. A failing optional dependency makes the
// overall status degraded rather than unhealthy.
type OptionalDependency interface {
	Optional() bool
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{}
}

// Register adds checker, rejecting duplicate names.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every registered check concurrently and folds the results:
// any required failure is unhealthy, otherwise any optional failure is
// degraded.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Go(func() {
			start := time.Now()
			err := checker.Check(ctx)

			cr := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
			if err != nil {
				cr.Status = HealthStatusUnhealthy
				if isOptional(checker) {
					cr.Status = HealthStatusDegraded
				}
				cr.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[checker.Name()] = cr
			result.Status = worse(result.Status, cr.Status)
		})
	}

	wg.Wait()

	return result
}

func isOptional(c HealthChecker) bool {
	o, ok := c.(OptionalDependency)
	return ok && o.Optional()
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{
		HealthStatusHealthy:   0,
		HealthStatusDegraded:  1,
		HealthStatusUnhealthy: 2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
