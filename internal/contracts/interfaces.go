package contracts

import (
	"context"
	"time"
)

// MarketDataFetcher supplies raw marketplace metrics per product
// ⭐ SSOT: a failed call returns *UpstreamUnavailableError, never a zero-filled payload
type MarketDataFetcher interface {
	FetchProduct(ctx context.Context, ref ProductRef) (RawPayload, error)
}

// SocialSignalFetcher supplies the four social source payloads
type SocialSignalFetcher interface {
	FetchSocial(ctx context.Context, ref ProductRef) (RawPayload, error)
}

// CompetitionFetcher supplies storefront competition data
type CompetitionFetcher interface {
	FetchCompetition(ctx context.Context, ref ProductRef) (RawPayload, error)
}

// ResultCache stores finished validation results
type ResultCache interface {
	Get(ctx context.Context, key string) (ValidationResult, bool, error)
	Put(ctx context.Context, key string, value ValidationResult, ttl time.Duration) error
}

// BatchResultCache is a ResultCache that can read many keys in one round trip.
// Missing keys are absent from the returned map.
type BatchResultCache interface {
	ResultCache
	GetMany(ctx context.Context, keys []string) (map[string]ValidationResult, error)
}

// HistoryRepository persists validations
type HistoryRepository interface {
	Save(ctx context.Context, record *HistoryRecord) error
	Recent(ctx context.Context, since time.Time, limit int) ([]HistoryRecord, error)
}

// ResultPublisher pushes finished results to live subscribers
type ResultPublisher interface {
	Publish(result ValidationResult)
}
