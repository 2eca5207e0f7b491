// Package evaluator runs the scoring pipeline: scorers, aggregation and recommendation.
// Given the same signals it always yields the same score, status, alerts and recommendation.
package evaluator

import (
	"context"
	"time"

	"github.com/wonny/dropscout/internal/aggregator"
	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/recommend"
	"github.com/wonny/dropscout/internal/scoring"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/metrics"
)

// DefaultParallelism bounds concurrent batch items when none is configured
const DefaultParallelism = 8

// Evaluator scores normalized signals
// ⭐ SSOT: the only place contributions become a ValidationResult
type Evaluator struct {
	policy      scoring.Policy
	maxBatch    int
	parallelism int
	now         func() time.Time
	logger      *logger.Logger

	// beforeItem runs inside each batch worker ahead of scoring; tests use it to reorder completion
	beforeItem func(index int)
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithPolicy replaces the default scoring policy
func WithPolicy(p scoring.Policy) Option {
	return func(e *Evaluator) { e.policy = p }
}

// WithClock sets the timestamp source for EvaluatedAt
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithMaxBatch sets the batch size limit
func WithMaxBatch(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxBatch = n
		}
	}
}

// WithParallelism bounds concurrent batch items
func WithParallelism(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates an evaluator with the default policy
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		policy:      scoring.DefaultPolicy(),
		maxBatch:    config.MaxBatchLimit,
		parallelism: DefaultParallelism,
		now:         time.Now,
		logger:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxBatch returns the configured batch size limit
func (e *Evaluator) MaxBatch() int {
	return e.maxBatch
}

// Parallelism returns the bound on concurrent batch items
func (e *Evaluator) Parallelism() int {
	return e.parallelism
}

// EvaluateProduct scores one product.
// Signals are validated first; an out-of-range value fails with InvalidSignalError.
func (e *Evaluator) EvaluateProduct(
	ctx context.Context,
	ref contracts.ProductRef,
	product contracts.ProductSignal,
	social contracts.SocialSignal,
	competition contracts.CompetitionSignal,
) (contracts.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return contracts.ValidationResult{}, err
	}
	return e.Evaluate(ref, contracts.Signals{Product: product, Social: social, Competition: competition})
}

// Evaluate scores a signal triple
func (e *Evaluator) Evaluate(ref contracts.ProductRef, signals contracts.Signals) (contracts.ValidationResult, error) {
	if err := signals.Validate(); err != nil {
		return contracts.ValidationResult{}, err
	}

	start := time.Now()
	out := aggregator.Assemble(e.Contributions(signals))

	result := contracts.ValidationResult{
		ProductID:      ref.ID,
		ProductName:    ref.Name,
		CompositeScore: out.CompositeScore,
		RawScore:       out.RawScore,
		Status:         out.Status,
		Contributions:  out.Contributions,
		Alerts:         out.Alerts,
		Recommendation: recommend.Build(out.Status),
		EvaluatedAt:    e.now().UTC(),
	}

	metrics.RecordEvaluation(string(result.Status), time.Since(start))
	return result, nil
}

// Contributions runs every scorer in evaluation order:
// reviews, rating, demand, social, trend, competition
func (e *Evaluator) Contributions(signals contracts.Signals) []contracts.ScoreContribution {
	tc := e.policy.ScoreTrendCompetition(signals.Social, signals.Competition)
	return []contracts.ScoreContribution{
		e.policy.ScoreReviews(signals.Product.ReviewCount),
		e.policy.ScoreRating(signals.Product.Rating),
		e.policy.ScoreDemand(signals.Product.MonthlyOrders),
		e.policy.ScoreSocial(signals.Social),
		tc.Trend,
		tc.Competition,
	}
}
