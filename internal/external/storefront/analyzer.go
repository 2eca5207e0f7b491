// Package storefront estimates competition by scraping a store-search results page.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/external"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/httputil"
	"github.com/wonny/dropscout/pkg/logger"
)

// Source names this provider in errors and metrics
const Source = "storefront"

// ErrNoSearchURL is returned when the analyzer has no search page template
var ErrNoSearchURL = errors.New("storefront search URL not configured")

var priceRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// Analysis is the competition picture for one keyword
type Analysis struct {
	Keyword      string                     `json:"keyword"`
	StoreCount   int                        `json:"storeCount"`
	AveragePrice float64                    `json:"avgPrice"`
	Prices       []float64                  `json:"prices"`
	Level        contracts.CompetitionLevel `json:"level"`
}

// Payload maps the analysis onto the competition payload shape the normalizer reads
func (a Analysis) Payload() contracts.RawPayload {
	return contracts.RawPayload{
		"level":      string(a.Level),
		"storeCount": a.StoreCount,
		"avgPrice":   a.AveragePrice,
	}
}

// LevelFor maps a store count onto a competition level
func LevelFor(storeCount int) contracts.CompetitionLevel {
	switch {
	case storeCount < contracts.LowCompetitionStoreCount:
		return contracts.CompetitionLow
	case storeCount < contracts.HighCompetitionStoreCount:
		return contracts.CompetitionMedium
	default:
		return contracts.CompetitionHigh
	}
}

// Analyzer scrapes store-search pages
// ⭐ SSOT: storefront HTML is fetched and parsed here only
type Analyzer struct {
	httpClient     *httputil.Client
	logger         *logger.Logger
	breaker        *external.Breaker
	searchURL      string
	resultSelector string
	priceSelector  string
}

// NewAnalyzer creates a storefront analyzer
func NewAnalyzer(httpClient *httputil.Client, cfg config.StorefrontConfig, log *logger.Logger) *Analyzer {
	return &Analyzer{
		httpClient:     httpClient,
		logger:         log,
		breaker:        external.NewBreaker(Source, external.DefaultBreakerConfig(), log),
		searchURL:      cfg.SearchURL,
		resultSelector: cfg.ResultSelector,
		priceSelector:  cfg.PriceSelector,
	}
}

// FetchCompetition implements contracts.CompetitionFetcher
func (a *Analyzer) FetchCompetition(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	return a.breaker.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
		analysis, err := a.analyze(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		return analysis.Payload(), nil
	})
}

// Analyze returns the competition analysis for keyword
func (a *Analyzer) Analyze(ctx context.Context, keyword string) (*Analysis, error) {
	var out *Analysis
	_, err := a.breaker.Execute(ctx, func(ctx context.Context) (contracts.RawPayload, error) {
		analysis, err := a.analyze(ctx, keyword)
		if err != nil {
			return nil, err
		}
		out = analysis
		return analysis.Payload(), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analyzer) analyze(ctx context.Context, keyword string) (*Analysis, error) {
	if a.searchURL == "" {
		return nil, ErrNoSearchURL
	}

	target := fmt.Sprintf(a.searchURL, url.QueryEscape(keyword))
	resp, err := a.httpClient.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	analysis, err := Parse(resp.Body, a.resultSelector, a.priceSelector)
	if err != nil {
		return nil, err
	}
	analysis.Keyword = keyword

	a.logger.WithFields(map[string]interface{}{
		"keyword":     keyword,
		"store_count": analysis.StoreCount,
		"avg_price":   analysis.AveragePrice,
		"level":       analysis.Level,
	}).Debug("Storefront analysis completed")

	return analysis, nil
}

// Parse counts result nodes and averages their listed prices.
// Results without a readable price still count as stores.
func Parse(r io.Reader, resultSelector, priceSelector string) (*Analysis, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse storefront HTML: %w", err)
	}

	results := doc.Find(resultSelector)
	analysis := &Analysis{StoreCount: results.Length(), Prices: make([]float64, 0, results.Length())}

	total := 0.0
	results.Each(func(i int, s *goquery.Selection) {
		if p, ok := parsePrice(s.Find(priceSelector).First().Text()); ok {
			analysis.Prices = append(analysis.Prices, p)
			total += p
		}
	})

	if n := len(analysis.Prices); n > 0 {
		analysis.AveragePrice = float64(int(total/float64(n)*100+0.5)) / 100
	}
	analysis.Level = LevelFor(analysis.StoreCount)
	return analysis, nil
}

// parsePrice reads the first number in s ("$1,299.00" -> 1299)
func parsePrice(s string) (float64, bool) {
	m := priceRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

// Simulated derives a repeatable competition picture from the product name
type Simulated struct{}

// NewSimulated creates a simulated analyzer
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Analyze returns a simulated analysis for keyword
func (s *Simulated) Analyze(ctx context.Context, keyword string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := external.Seeded(Source, keyword)
	stores := g.Intn(10, 310)
	return &Analysis{
		Keyword:      keyword,
		StoreCount:   stores,
		AveragePrice: g.Float(20, 70, 2),
		Prices:       []float64{},
		Level:        LevelFor(stores),
	}, nil
}

// FetchCompetition implements contracts.CompetitionFetcher
func (s *Simulated) FetchCompetition(ctx context.Context, ref contracts.ProductRef) (contracts.RawPayload, error) {
	a, err := s.Analyze(ctx, ref.Name)
	if err != nil {
		return nil, err
	}
	return a.Payload(), nil
}
