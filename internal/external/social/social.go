// Package social fetches the four social-proof source payloads
// (facebook, tiktok, amazon, googleTrends) for a product.
package social

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/external"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/httputil"
	"github.com/wonny/dropscout/pkg/logger"
)

// Source names this provider in errors and metrics
const Source = "social"

// Client reads social signals from an HTTP provider.
// The provider returns {facebook, tiktok, amazon, googleTrends} for ?product=&productId=.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	breaker    *external.Breaker
	baseURL    string
	apiKey     string
}

// NewClient creates a new social signal client
func NewClient(httpClient *httputil.Client, cfg config.SocialConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		breaker:    external.NewBreaker(Source, external.DefaultBreakerConfig(), log),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// FetchSocial implements contracts.SocialSignalFetcher
func (c *Client) FetchSocial(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	return c.breaker.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
		params := url.Values{}
		params.Set("product", ref.Name)
		if ref.ID != "" {
			params.Set("productId", ref.ID)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/signals?%s", c.baseURL, params.Encode()), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		var payload contracts.RawPayload
		if err := c.httpClient.DoJSON(req, &payload); err != nil {
			return nil, err
		}
		if payload == nil {
			return nil, fmt.Errorf("empty social payload for %q", ref.Name)
		}
		return payload, nil
	})
}

// Simulated derives repeatable social signals from the product name
type Simulated struct{}

// NewSimulated creates a simulated social provider
func NewSimulated() *Simulated {
	return &Simulated{}
}

// FetchSocial implements contracts.SocialSignalFetcher
func (s *Simulated) FetchSocial(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fb := external.Seeded(Source, "facebook", ref.Name)
	tt := external.Seeded(Source, "tiktok", ref.Name)
	az := external.Seeded(Source, "amazon", ref.Name)
	gt := external.Seeded(Source, "googleTrends", ref.Name)

	return contracts.RawPayload{
		"facebook": map[string]interface{}{
			"isBeingAdvertised": fb.Chance(0.5),
			"activeAds":         fb.Intn(0, 50),
			"engagementScore":   fb.Intn(0, 100),
			"engagement":        fb.Intn(100, 5100),
		},
		"tiktok": map[string]interface{}{
			"isTrending":     tt.Chance(0.4),
			"totalViews":     tt.Intn(0, 10000000),
			"videoCount":     tt.Intn(0, 5000),
			"engagementRate": tt.Float(0, 10, 2),
			"growthTrend":    tt.Pick("rising", "flat", "declining"),
		},
		"amazon": map[string]interface{}{
			"isAmazonBestSeller": az.Chance(0.3),
			"amazonRank":         az.Intn(0, 10000),
			"reviews":            az.Intn(0, 50000),
			"competitorCount":    az.Intn(0, 500),
		},
		"googleTrends": map[string]interface{}{
			"searchVolume": gt.Intn(0, 100000),
			"trend":        gt.Pick("rising", "flat", "declining"),
			"score":        gt.Intn(0, 101),
		},
	}, nil
}
