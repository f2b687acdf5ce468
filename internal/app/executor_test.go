package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingExecutor(t *testing.T) (*Executor, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return NewExecutor(tp.Tracer("test")), recorder
}

func TestExecute_RunsStepsInOrder(t *testing.T) {
	exec, _ := newRecordingExecutor(t)

	var steps []ExecutionStep

	op := Operation[int, int, int, string]{
		Name: "double",
		Validate: func(_ context.Context, _ int) error {
			steps = append(steps, StepValidate)
			return nil
		},
		Perform: func(_ context.Context, in int) (int, error) {
			steps = append(steps, StepPerform)
			return in * 2, nil
		},
		Verify: func(_ context.Context, _ int, p int) (int, error) {
			steps = append(steps, StepVerify)
			return p + 1, nil
		},
		Respond: func(_ context.Context, _ int, v int) (string, error) {
			steps = append(steps, StepRespond)
			if v == 7 {
				return "seven", nil
			}
			return "other", nil
		},
	}

	out, err := Execute(context.Background(), exec, op, 3)

	require.NoError(t, err)
	assert.Equal(t, "seven", out)
	assert.Equal(t, []ExecutionStep{StepValidate, StepPerform, StepVerify, StepRespond}, steps)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		op   Operation[int, int, int, int]
		step ExecutionStep
	}{
		{
			name: "validate",
			op: Operation[int, int, int, int]{
				Name:     "op",
				Validate: func(context.Context, int) error { return cause },
				Perform: func(context.Context, int) (int, error) {
					panic("perform must not run")
				},
			},
			step: StepValidate,
		},
		{
			name: "perform",
			op: Operation[int, int, int, int]{
				Name:    "op",
				Perform: func(context.Context, int) (int, error) { return 0, cause },
				Verify: func(context.Context, int, int) (int, error) {
					panic("verify must not run")
				},
			},
			step: StepPerform,
		},
		{
			name: "verify",
			op: Operation[int, int, int, int]{
				Name:   "op",
				Verify: func(context.Context, int, int) (int, error) { return 0, cause },
			},
			step: StepVerify,
		},
		{
			name: "respond",
			op: Operation[int, int, int, int]{
				Name:    "op",
				Respond: func(context.Context, int, int) (int, error) { return 0, cause },
			},
			step: StepRespond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, recorder := newRecordingExecutor(t)

			_, err := Execute(context.Background(), exec, tt.op, 1)

			require.Error(t, err)
			require.ErrorIs(t, err, cause)
			assert.True(t, IsExecutionError(err))

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
		})
	}
}

func TestExecute_NilVerifyPassesThroughSameType(t *testing.T) {
	exec, _ := newRecordingExecutor(t)

	op := Operation[int, int, int, int]{
		Name:    "passthrough",
		Perform: func(_ context.Context, in int) (int, error) { return in + 10, nil },
		Respond: func(_ context.Context, _ int, v int) (int, error) { return v, nil },
	}

	out, err := Execute(context.Background(), exec, op, 5)

	require.NoError(t, err)
	assert.Equal(t, 15, out)
}

func TestExecute_RecordsSpanWithOperationName(t *testing.T) {
	exec, recorder := newRecordingExecutor(t)

	op := Operation[int, int, int, int]{
		Name:    "age.calculate",
		Respond: func(context.Context, int, int) (int, error) { return 1, nil },
	}

	_, err := Execute(context.Background(), exec, op, 0)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "age.calculate", spans[0].Name())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestExecutionError_Message(t *testing.T) {
	withCause := &ExecutionError{Step: StepPerform, Message: "operation failed", Cause: errors.New("timeout")}
	assert.Equal(t, "perform failed: operation failed: timeout", withCause.Error())

	bare := &ExecutionError{Step: StepValidate, Message: "bad input"}
	assert.Equal(t, "validate failed: bad input", bare.Error())
}

func TestGetExecutionStep_NotExecutionError(t *testing.T) {
	step, ok := GetExecutionStep(errors.New("plain"))

	assert.False(t, ok)
	assert.Empty(t, step)
	assert.False(t, IsExecutionError(errors.New("plain")))
}
