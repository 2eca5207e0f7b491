// Package validation runs the full product validation pipeline:
// fetch, normalize, score, cache, persist and publish.
package validation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/evaluator"
	"github.com/wonny/dropscout/internal/normalizer"
	"github.com/wonny/dropscout/internal/pricing"
	"github.com/wonny/dropscout/internal/socialproof"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/metrics"
	"github.com/wonny/dropscout/pkg/redis"
)

// DefaultCacheTTL is how long a finished validation is reused
const DefaultCacheTTL = 24 * time.Hour

// Report is the full outcome of one product validation.
// A cached report carries only Result.
type Report struct {
	Result      contracts.ValidationResult `json:"result"`
	SocialProof *socialproof.Report        `json:"socialProof,omitempty"`
	Timing      *socialproof.TimingScore   `json:"timing,omitempty"`
	Pricing     *pricing.Suggestion        `json:"pricing,omitempty"`
	Cached      bool                       `json:"cached"`
}

// Deps are the collaborators of a Service. Cache, History and Publisher are optional.
type Deps struct {
	Market      contracts.MarketDataFetcher
	Social      contracts.SocialSignalFetcher
	Competition contracts.CompetitionFetcher
	Cache       contracts.ResultCache
	History     contracts.HistoryRepository
	Publisher   contracts.ResultPublisher
}

// Service coordinates one validation end to end
// ⭐ SSOT: upstream fetch and scoring are joined here only
type Service struct {
	evaluator *evaluator.Evaluator
	deps      Deps
	logger    *logger.Logger
	cacheTTL  time.Duration
	adCost    float64
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger attaches a logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCacheTTL sets the result cache TTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithAdCost sets the per-unit ad cost used for pricing
func WithAdCost(adCost float64) Option {
	return func(s *Service) {
		if adCost >= 0 {
			s.adCost = adCost
		}
	}
}

// WithClock sets the clock used for cache day buckets
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a validation service
func NewService(ev *evaluator.Evaluator, deps Deps, opts ...Option) *Service {
	s := &Service{
		evaluator: ev,
		deps:      deps,
		logger:    logger.NewNop(),
		cacheTTL:  DefaultCacheTTL,
		adCost:    pricing.DefaultAdCost,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluator returns the underlying evaluator
func (s *Service) Evaluator() *evaluator.Evaluator {
	return s.evaluator
}

// ValidateProduct validates one product.
// A required upstream failure aborts with *contracts.UpstreamUnavailableError.
func (s *Service) ValidateProduct(ctx context.Context, ref contracts.ProductRef) (*Report, error) {
	if ref.Name == "" {
		return nil, contracts.NewInvalidSignalError("productName", ref.Name, "is required")
	}

	key := redis.ValidationKey(ref, s.now())
	if cached, ok := s.cached(ctx, key); ok {
		return &Report{Result: cached, Cached: true}, nil
	}

	startTime := time.Now()

	product, social, competition, err := s.fetch(ctx, ref)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"product": ref.Key(),
			"error":   err.Error(),
		}).Warn("Upstream fetch failed")
		return nil, err
	}

	report, signals, err := s.score(ref, product, social, competition)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, ref, signals, report)

	s.logger.WithFields(map[string]interface{}{
		"product":  ref.Key(),
		"score":    report.Result.CompositeScore,
		"status":   report.Result.Status,
		"duration": time.Since(startTime),
	}).Info("Product validated")

	return report, nil
}

// fetch loads the three upstream payloads in parallel
func (s *Service) fetch(ctx context.Context, ref contracts.ProductRef) (product, social, competition contracts.RawPayload, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var ferr error
		product, ferr = s.deps.Market.FetchProduct(gctx, ref)
		return ferr
	})
	g.Go(func() error {
		var ferr error
		social, ferr = s.deps.Social.FetchSocial(gctx, ref)
		return ferr
	})
	g.Go(func() error {
		var ferr error
		competition, ferr = s.deps.Competition.FetchCompetition(gctx, ref)
		return ferr
	})

	if err = g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return product, social, competition, nil
}

// score normalizes the payloads and runs the evaluator
func (s *Service) score(ref contracts.ProductRef, productRaw, socialRaw, competitionRaw contracts.RawPayload) (*Report, contracts.Signals, error) {
	product, err := normalizer.NormalizeProduct(productRaw)
	if err != nil {
		return nil, contracts.Signals{}, err
	}
	if product.Category == "" {
		product.Category = ref.Category
	}

	report := &Report{}

	in, nested, err := normalizer.SocialProofInput(socialRaw)
	if err != nil {
		return nil, contracts.Signals{}, err
	}

	var social contracts.SocialSignal
	if nested {
		proof := socialproof.Aggregate(in)
		report.SocialProof = &proof
		report.Timing = &proof.Timing
		social = proof.Signal()
	} else if social, err = normalizer.NormalizeSocial(socialRaw); err != nil {
		return nil, contracts.Signals{}, err
	}

	competition, err := normalizer.NormalizeCompetition(competitionRaw)
	if err != nil {
		return nil, contracts.Signals{}, err
	}

	signals := contracts.Signals{Product: product, Social: social, Competition: competition}
	result, err := s.evaluator.Evaluate(ref, signals)
	if err != nil {
		return nil, contracts.Signals{}, err
	}
	report.Result = result

	if product.BuyPrice > 0 {
		if suggestion, err := pricing.SuggestPrices(product.BuyPrice, product.Category, s.adCost); err == nil {
			report.Pricing = &suggestion
		}
	}

	return report, signals, nil
}

func (s *Service) cached(ctx context.Context, key string) (contracts.ValidationResult, bool) {
	if s.deps.Cache == nil {
		return contracts.ValidationResult{}, false
	}

	result, ok, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache read failed")
		return contracts.ValidationResult{}, false
	}
	if !ok {
		metrics.RecordCacheMiss()
		return contracts.ValidationResult{}, false
	}
	metrics.RecordCacheHit()
	return result, true
}

// store caches, persists and publishes a fresh result.
// None of these failures fail the validation.
func (s *Service) store(ctx context.Context, key string, ref contracts.ProductRef, signals contracts.Signals, report *Report) {
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Put(ctx, key, report.Result, s.cacheTTL); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			}).Warn("Cache write failed")
		}
	}

	if s.deps.History != nil {
		record := &contracts.HistoryRecord{Ref: ref, Signals: signals, Result: report.Result}
		if report.SocialProof != nil {
			record.SocialScore = report.SocialProof.OverallScore
		}
		if err := s.deps.History.Save(ctx, record); err != nil {
			s.logger.WithError(err).Warn("Failed to save validation history")
		}
	}

	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(report.Result)
	}
}

// History returns recent validations, newest first
func (s *Service) History(ctx context.Context, since time.Time, limit int) ([]contracts.HistoryRecord, error) {
	if s.deps.History == nil {
		return []contracts.HistoryRecord{}, nil
	}
	records, err := s.deps.History.Recent(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}
