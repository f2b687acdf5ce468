// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	appctx "github.com/jsamuelsen/age-service/internal/app/context"
	"github.com/jsamuelsen/age-service/internal/domain"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/ports"
)

// Feature flags read by the age service.
const (
	// FlagStrictDateValidation turns on calendar validation for every call.
	FlagStrictDateValidation = "strict-date-validation"

	// FlagBatchConcurrency overrides the configured batch concurrency.
	FlagBatchConcurrency = "batch-concurrency"
)

// Defaults applied when the config leaves a limit unset.
const (
	DefaultMaxBatchSize     = 100
	DefaultBatchConcurrency = 8
)

// CalculateInput is one age calculation request.
type CalculateInput struct {
	Birth     domain.Date
	Reference domain.Date

	// Strict requests calendar validation for this call only.
	Strict bool
}

// BatchItem is the outcome of one batch input. Exactly one of Calculation
// or Err is set.
type BatchItem struct {
	Index       int
	Calculation *domain.Calculation
	Err         error
}

// AgeService computes ages, optionally cross-checking a remote calculator
// against the local rule.
type AgeService struct {
	remote           ports.AgeCalculator
	flags            ports.FeatureFlags
	metrics          *metrics.Metrics
	executor         *Executor
	logger           *slog.Logger
	maxBatchSize     int
	batchConcurrency int
}

// AgeServiceConfig contains configuration for the age service.
type AgeServiceConfig struct {
	// Remote is consulted first when set. Leave nil to compute locally only.
	Remote ports.AgeCalculator

	Flags            ports.FeatureFlags
	Metrics          *metrics.Metrics
	Executor         *Executor
	Logger           *slog.Logger
	MaxBatchSize     int
	BatchConcurrency int
}

// NewAgeService creates an age service with the provided dependencies.
func NewAgeService(cfg AgeServiceConfig) *AgeService {
	s := &AgeService{
		remote:           cfg.Remote,
		flags:            cfg.Flags,
		metrics:          cfg.Metrics,
		executor:         cfg.Executor,
		logger:           cfg.Logger,
		maxBatchSize:     cfg.MaxBatchSize,
		batchConcurrency: cfg.BatchConcurrency,
	}

	if s.executor == nil {
		s.executor = NewExecutor(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = DefaultMaxBatchSize
	}
	if s.batchConcurrency <= 0 {
		s.batchConcurrency = DefaultBatchConcurrency
	}

	return s
}

type calculation struct {
	CalculateInput

	strict bool
}

type candidate struct {
	local     int
	remote    int
	remoteErr error
	consulted bool
}

// Calculate returns the age for one pair of dates. Without a remote
// calculator and with strict mode off it never fails.
func (s *AgeService) Calculate(ctx context.Context, in CalculateInput) (*domain.Calculation, error) {
	op := Operation[calculation, candidate, *domain.Calculation, *domain.Calculation]{
		Name:     "age.calculate",
		Validate: s.validate,
		Perform:  s.perform,
		Verify:   s.verify,
		Respond:  s.respond,
	}

	return Execute(ctx, s.executor, op, calculation{
		CalculateInput: in,
		strict:         s.strictMode(ctx, in.Strict),
	})
}

// CalculateBatch computes every input concurrently and returns one item per
// input in input order. Item failures are reported per item; the returned
// error is non-nil only when the batch itself is rejected.
func (s *AgeService) CalculateBatch(ctx context.Context, inputs []CalculateInput) ([]BatchItem, error) {
	switch {
	case len(inputs) == 0:
		return nil, domain.NewValidationError("items", "must contain at least 1 item")
	case len(inputs) > s.maxBatchSize:
		return nil, domain.NewValidationErrorWithValue(
			"items",
			fmt.Sprintf("must contain at most %d items", s.maxBatchSize),
			len(inputs),
		)
	}

	s.metrics.ObserveBatchSize(len(inputs))

	rc := appctx.New(ctx)

	fns := make([]func(context.Context) (*domain.Calculation, error), len(inputs))
	for i, in := range inputs {
		fns[i] = func(ctx context.Context) (*domain.Calculation, error) {
			ctx = logging.WithBatchItem(ctx, i)

			return appctx.Fetch(ctx, rc, batchKey(in), func(context.Context) (*domain.Calculation, error) {
				return s.Calculate(ctx, in)
			})
		}
	}

	concurrency := s.concurrency(ctx)
	logging.FromContext(ctx).DebugContext(ctx, "calculating batch",
		slog.Int("items", len(inputs)),
		slog.Int("concurrency", concurrency),
	)

	results := ParallelPartialLimit(ctx, concurrency, fns...)

	items := make([]BatchItem, len(results))
	for i, r := range results {
		items[i] = BatchItem{Index: i, Calculation: r.Value, Err: r.Err}
	}

	return items, nil
}

func (s *AgeService) validate(_ context.Context, c calculation) error {
	if !c.strict {
		return nil
	}

	if err := domain.ValidateDate("birthDate", c.Birth); err != nil {
		return err
	}

	return domain.ValidateDate("referenceDate", c.Reference)
}

func (s *AgeService) perform(ctx context.Context, c calculation) (candidate, error) {
	out := candidate{local: domain.AgeBetween(c.Birth, c.Reference)}

	if s.remote == nil {
		return out, nil
	}

	out.consulted = true
	out.remote, out.remoteErr = s.remote.Calculate(ctx, c.Birth, c.Reference)

	return out, nil
}

func (s *AgeService) verify(ctx context.Context, c calculation, got candidate) (*domain.Calculation, error) {
	calc := &domain.Calculation{
		Birth:     c.Birth,
		Reference: c.Reference,
		Age:       got.local,
		Source:    domain.SourceLocal,
		Strict:    c.strict,
	}

	if !got.consulted {
		return calc, nil
	}

	logger := logging.FromContextOr(ctx, s.logger)

	switch {
	case got.remoteErr != nil:
		calc.Source = domain.SourceLocalFallback
		s.metrics.IncrementFallback(metrics.FallbackRemoteError)
		logger.WarnContext(ctx, "remote age calculator failed, using local result",
			slog.Any("error", got.remoteErr),
		)
	case got.remote != got.local:
		calc.Source = domain.SourceLocalFallback
		s.metrics.IncrementFallback(metrics.FallbackMismatch)
		logger.WarnContext(ctx, "remote age disagrees with local rule, using local result",
			slog.Any(logging.BirthDateKey, c.Birth),
			slog.Int("remote_age", got.remote),
			slog.Int("local_age", got.local),
		)
	default:
		calc.Source = domain.SourceRemote
	}

	return calc, nil
}

func (s *AgeService) respond(_ context.Context, _ calculation, calc *domain.Calculation) (*domain.Calculation, error) {
	s.metrics.ObserveCalculation(calc.Source, calc.Strict)

	return calc, nil
}

func (s *AgeService) strictMode(ctx context.Context, requested bool) bool {
	if requested {
		return true
	}
	if s.flags == nil {
		return false
	}

	return s.flags.IsEnabled(ctx, FlagStrictDateValidation, false)
}

func (s *AgeService) concurrency(ctx context.Context) int {
	if s.flags == nil {
		return s.batchConcurrency
	}

	if n := s.flags.GetInt(ctx, FlagBatchConcurrency, s.batchConcurrency); n > 0 {
		return n
	}

	return s.batchConcurrency
}

func batchKey(in CalculateInput) string {
	return "age:" + dateKey(in.Birth) + "/" + dateKey(in.Reference) + "/" + strconv.FormatBool(in.Strict)
}

func dateKey(d domain.Date) string {
	return strconv.Itoa(d.Year) + "-" + strconv.Itoa(d.Month) + "-" + strconv.Itoa(d.Day)
}
