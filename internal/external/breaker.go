// Package external holds the upstream signal providers and the plumbing they share.
package external

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/metrics"
)

// BreakerConfig tunes a circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open -> half-open delay
	FailureThreshold uint32        // consecutive failures before opening
}

// DefaultBreakerConfig returns the settings used by every provider
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker guards one upstream source.
// ⭐ SSOT: every upstream failure leaves here as *contracts.UpstreamUnavailableError
type Breaker struct {
	source string
	cb     *gobreaker.CircuitBreaker[contracts.RawPayload]
}

// NewBreaker creates a breaker for source
func NewBreaker(source string, cfg BreakerConfig, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        source,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Cancelled callers say nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"source": name,
				"from":   from.String(),
				"to":     to.String(),
			}).Warn("Circuit breaker state changed")
			metrics.SetBreakerState(name, int(to))
		},
	}

	metrics.SetBreakerState(source, int(gobreaker.StateClosed))
	return &Breaker{
		source: source,
		cb:     gobreaker.NewCircuitBreaker[contracts.RawPayload](settings),
	}
}

// Source returns the guarded source name
func (b *Breaker) Source() string {
	return b.source
}

// State returns the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs fn through the breaker
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (contracts.RawPayload, error)) (contracts.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := b.cb.Execute(func() (contracts.RawPayload, error) {
		return fn(ctx)
	})
	metrics.RecordUpstreamCall(b.source, outcome(err), time.Since(start))

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		var upstream *contracts.UpstreamUnavailableError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, contracts.NewUpstreamUnavailableError(b.source, err)
	}
	return payload, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}
