package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/data/repos"
	"github.com/wonny/dropscout/internal/evaluator"
	"github.com/wonny/dropscout/internal/external/aliexpress"
	"github.com/wonny/dropscout/internal/external/social"
	"github.com/wonny/dropscout/internal/external/storefront"
	"github.com/wonny/dropscout/internal/validation"
	"github.com/wonny/dropscout/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newValidationHandler() *ValidationHandler {
	svc := validation.NewService(evaluator.New(), validation.Deps{
		Market:      aliexpress.NewSimulated(),
		Social:      social.NewSimulated(),
		Competition: storefront.NewSimulated(),
		History:     repos.NewMemoryHistory(10),
	})
	return NewValidationHandler(svc, logger.NewNop())
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{contracts.NewInvalidSignalError("rating", 7, "out of range"), http.StatusBadRequest},
		{&contracts.InvalidPriceError{Field: "buyPrice", Value: 0}, http.StatusBadRequest},
		{&contracts.BatchTooLargeError{Size: 51, Limit: 50}, http.StatusBadRequest},
		{fmt.Errorf("fetch: %w", contracts.NewUpstreamUnavailableError("aliexpress", assert.AnError)), http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestRespondDomainError_HidesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	respondDomainError(rec, fmt.Errorf("pg: connection refused"))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Error)
}

func TestValidateProduct(t *testing.T) {
	h := newValidationHandler()

	rec, env := do(t, h.ValidateProduct, "POST", "/api/validation/validate-product",
		`{"productId":"42","productName":"LED Strip","category":"home"}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.True(t, env.Success)

	var report validation.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "42", report.Result.ProductID)
	assert.Equal(t, "LED Strip", report.Result.ProductName)
	assert.NotEmpty(t, report.Result.Status)
	assert.Len(t, report.Result.Contributions, 6)
	require.NotNil(t, report.Pricing)
	assert.Equal(t, "home", report.Pricing.Category)
}

func TestValidateProduct_BadRequests(t *testing.T) {
	h := newValidationHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"productName":`},
		{"missing name", `{"productId":"42"}`},
		{"blank name", `{"productName":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h.ValidateProduct, "POST", "/api/validation/validate-product", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestValidateBatch(t *testing.T) {
	h := newValidationHandler()

	rec, env := do(t, h.ValidateBatch, "POST", "/api/validation/validate-batch",
		`{"products":[{"productName":"LED Strip"},{"productName":"Yoga Mat"},{"productName":""}]}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var report struct {
		BatchID string `json:"batchId"`
		Results []struct {
			ProductName string `json:"productName"`
			Error       string `json:"error"`
		} `json:"results"`
		Summary validation.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.NotEmpty(t, report.BatchID)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "LED Strip", report.Results[0].ProductName)
	assert.Equal(t, "Yoga Mat", report.Results[1].ProductName)
	assert.NotEmpty(t, report.Results[2].Error)
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Failed)
}

func TestValidateBatch_Rejected(t *testing.T) {
	h := newValidationHandler()

	var products []string
	for i := 0; i < 51; i++ {
		products = append(products, fmt.Sprintf(`{"productName":"item %d"}`, i))
	}

	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"products":[]}`},
		{"missing", `{}`},
		{"too large", `{"products":[` + strings.Join(products, ",") + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h.ValidateBatch, "POST", "/api/validation/validate-batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestEvaluate(t *testing.T) {
	h := newValidationHandler()

	body := `{
		"productId": "7",
		"productName": "Pet Brush",
		"product": {"reviews": 5000, "rating": 4.7, "orders": 12000, "price": 10},
		"social": {"facebookActive": true, "tiktokTrending": true, "googleTrendDirection": "rising", "trendScore": 80},
		"competition": {"level": "low", "storeCount": 30}
	}`
	rec, env := do(t, h.Evaluate, "POST", "/api/validation/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var result contracts.ValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "7", result.ProductID)
	assert.Greater(t, result.CompositeScore, 0)
}

func TestEvaluate_InvalidSignal(t *testing.T) {
	h := newValidationHandler()

	body := `{"product": {"reviews": 5000, "rating": 7}, "social": {}, "competition": {"level": "low"}}`
	rec, env := do(t, h.Evaluate, "POST", "/api/validation/evaluate", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "rating")
}

func TestHistory(t *testing.T) {
	h := newValidationHandler()
	_, _ = do(t, h.ValidateProduct, "POST", "/", `{"productName":"LED Strip"}`)
	_, _ = do(t, h.ValidateProduct, "POST", "/", `{"productName":"Yoga Mat"}`)

	rec, env := do(t, h.History, "GET", "/api/validation/history?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Count   int                       `json:"count"`
		Records []contracts.HistoryRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Records, 1)
}

func TestMargin(t *testing.T) {
	h := NewPricingHandler(10, logger.NewNop())

	rec, env := do(t, h.Margin, "POST", "/api/pricing/margin", `{"buyPrice":10,"sellPrice":50}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 30.0, out["profit"])
	assert.Equal(t, 60.0, out["margin"])
	assert.Equal(t, true, out["isViable"])

	rec, env = do(t, h.Margin, "POST", "/api/pricing/margin", `{"buyPrice":10,"sellPrice":50,"adCost":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 40.0, out["profit"])

	rec, env = do(t, h.Margin, "POST", "/api/pricing/margin", `{"buyPrice":10,"sellPrice":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "sellPrice")
}

func TestSuggest(t *testing.T) {
	h := NewPricingHandler(10, logger.NewNop())

	rec, env := do(t, h.Suggest, "GET", "/api/pricing/suggest?buyPrice=10&category=beauty", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var s struct {
		Multiplier  float64 `json:"multiplier"`
		PricePoints struct {
			Conservative float64 `json:"conservative"`
			Optimal      float64 `json:"optimal"`
			Aggressive   float64 `json:"aggressive"`
		} `json:"pricePoints"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, 4.5, s.Multiplier)
	assert.Equal(t, 36.0, s.PricePoints.Conservative)
	assert.Equal(t, 45.0, s.PricePoints.Optimal)
	assert.Equal(t, 54.0, s.PricePoints.Aggressive)

	for _, target := range []string{
		"/api/pricing/suggest",
		"/api/pricing/suggest?buyPrice=abc",
		"/api/pricing/suggest?buyPrice=-1",
		"/api/pricing/suggest?buyPrice=10&adCost=x",
	} {
		rec, _ := do(t, h.Suggest, "GET", target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

type memPriceCache struct {
	data  map[string][]byte
	fills int
	err   error
}

func (c *memPriceCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	if c.err != nil {
		return c.err
	}
	if data, ok := c.data[key]; ok {
		return json.Unmarshal(data, dest)
	}
	v, err := fn()
	if err != nil {
		return err
	}
	c.fills++
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = data
	return json.Unmarshal(data, dest)
}

func TestSuggest_Cached(t *testing.T) {
	c := &memPriceCache{data: map[string][]byte{}}
	h := NewPricingHandler(10, logger.NewNop()).WithCache(c)

	for i := 0; i < 2; i++ {
		rec, env := do(t, h.Suggest, "GET", "/api/pricing/suggest?buyPrice=10&category=beauty", "")
		require.Equal(t, http.StatusOK, rec.Code, env.Error)
		assert.Contains(t, string(env.Data), `"optimal":45`)
	}
	assert.Equal(t, 1, c.fills)
	assert.Contains(t, c.data, "pricing:beauty:10.00:10.00")

	// a different ad cost is a different entry
	rec, _ := do(t, h.Suggest, "GET", "/api/pricing/suggest?buyPrice=10&category=beauty&adCost=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, c.fills)

	rec, _ = do(t, h.Suggest, "GET", "/api/pricing/suggest?buyPrice=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, c.fills, "invalid prices are not cached")
}

func TestSuggest_CacheFailureFallsBack(t *testing.T) {
	h := NewPricingHandler(10, logger.NewNop()).WithCache(&memPriceCache{err: errors.New("redis: connection refused")})

	rec, env := do(t, h.Suggest, "GET", "/api/pricing/suggest?buyPrice=10&category=beauty", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.Contains(t, string(env.Data), `"optimal":45`)
}

func TestCompetitors(t *testing.T) {
	h := NewPricingHandler(10, logger.NewNop())

	rec, env := do(t, h.Competitors, "POST", "/api/pricing/competitors", `{"buyPrice":10,"competitorPrices":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"pricePosition":"no_data"`)

	rec, _ = do(t, h.Competitors, "POST", "/api/pricing/competitors", `{"buyPrice":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimize(t *testing.T) {
	h := NewPricingHandler(10, logger.NewNop())

	rec, env := do(t, h.Optimize, "POST", "/api/pricing/optimize",
		`{"buyPrice":10,"category":"beauty","marketConditions":{"demandScore":90}}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var plan struct {
		RecommendedPrice float64 `json:"recommendedPrice"`
		PriceRange       struct {
			Min       float64 `json:"min"`
			Max       float64 `json:"max"`
			SweetSpot float64 `json:"sweetSpot"`
		} `json:"priceRange"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, 50.0, plan.RecommendedPrice) // round(45 × 1.1)
	assert.Equal(t, 36.0, plan.PriceRange.Min)
	assert.Equal(t, 54.0, plan.PriceRange.Max)
	assert.Equal(t, 45.0, plan.PriceRange.SweetSpot)
}

func TestSearch(t *testing.T) {
	h := NewResearchHandler(aliexpress.NewSimulated(), logger.NewNop())

	rec, env := do(t, h.Search, "GET", "/api/products/search?keyword=led&pageSize=5", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var res aliexpress.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.Products)

	rec, _ = do(t, h.Search, "GET", "/api/products/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSocialProof(t *testing.T) {
	h := NewResearchHandler(aliexpress.NewSimulated(), logger.NewNop())

	body := `{
		"facebook": {"isBeingAdvertised": true, "engagementScore": 80},
		"tiktok": {"isTrending": true, "engagementRate": 6},
		"amazon": {"isAmazonBestSeller": false},
		"googleTrends": {"trend": "rising", "score": 85}
	}`
	rec, env := do(t, h.SocialProof, "POST", "/api/social-proof", body)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.Contains(t, string(env.Data), "recommendation")

	rec, _ = do(t, h.SocialProof, "POST", "/api/social-proof", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilters(t *testing.T) {
	h := NewResearchHandler(aliexpress.NewSimulated(), logger.NewNop())

	rec, env := do(t, h.AdvancedFilters, "GET", "/api/filters/advanced", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"reviewCount"`)

	body, err := json.Marshal(map[string]interface{}{
		"product":          map[string]interface{}{"reviews": 5000, "rating": 4.6, "price": 10},
		"sellPrice":        50,
		"currentlySelling": true,
		"socialProof":      true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/filters/check", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CheckFilters(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"passes":true`)
}
