package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/age-service/internal/platform/logging"
	"github.com/jsamuelsen/age-service/internal/platform/telemetry"
)

// Operations run as Validate → Perform → Verify → Respond.
//
//   - VALIDATE checks inputs before anything is computed or called.
//   - PERFORM produces a candidate result, possibly from a dependency.
//   - VERIFY decides what the candidate is worth; nothing unverified is returned.
//   - RESPOND shapes the verified value for the caller.

// ExecutionStep names a step of an operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs operations step by step, tracing and logging each one.
type Executor struct {
	tracer trace.Tracer
}

// NewExecutor creates an executor. A nil tracer uses the service tracer
// from the global provider.
func NewExecutor(tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = telemetry.Tracer()
	}

	return &Executor{tracer: tracer}
}

// Operation defines the functions for each step. Nil steps are skipped;
// a nil Verify passes the performed value through unchanged only when P
// and V are the same type, otherwise V's zero value is used.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation in logs and spans.
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op over input.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	ctx, span := exec.tracer.Start(ctx, op.Name)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("operation", op.Name))
	start := time.Now()

	result, err := run(ctx, logger, op, input)
	if err != nil {
		if step, ok := GetExecutionStep(err); ok {
			span.SetAttributes(attribute.String("operation.failed_step", string(step)))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return zero, err
	}

	logger.Log(ctx, logging.LevelTrace, "operation completed",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func run[I, P, V, O any](ctx context.Context, logger *slog.Logger, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
	)

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			logger.DebugContext(ctx, "validation failed", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepValidate, Message: "input validation failed", Cause: err}
		}
	}

	if op.Perform != nil {
		p, err := op.Perform(ctx, input)
		if err != nil {
			logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepPerform, Message: "operation failed", Cause: err}
		}
		performed = p
	}

	if op.Verify != nil {
		v, err := op.Verify(ctx, input, performed)
		if err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepVerify, Message: "verification failed", Cause: err}
		}
		verified = v
	} else if v, ok := any(performed).(V); ok {
		verified = v
	}

	if op.Respond == nil {
		return zero, nil
	}

	out, err := op.Respond(ctx, input, verified)
	if err != nil {
		return zero, &ExecutionError{Step: StepRespond, Message: "response failed", Cause: err}
	}

	return out, nil
}

// IsExecutionError checks if an error occurred during execution.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError

	return errors.As(err, &execErr)
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
