package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/dropscout/internal/pricing"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/redis"
)

// PriceCache memoizes price suggestions
type PriceCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error
}

// PricingHandler handles margin and price suggestion endpoints
type PricingHandler struct {
	adCost float64
	cache  PriceCache
	logger *logger.Logger
}

// NewPricingHandler creates a pricing handler using adCost when a request omits it
func NewPricingHandler(adCost float64, log *logger.Logger) *PricingHandler {
	return &PricingHandler{adCost: adCost, logger: log}
}

// WithCache caches suggestions for a day per category, buy price and ad cost
func (h *PricingHandler) WithCache(c PriceCache) *PricingHandler {
	h.cache = c
	return h
}

// suggest computes price bands, going through the cache when one is set.
// A cache failure falls back to computing directly.
func (h *PricingHandler) suggest(ctx context.Context, buy float64, category string, adCost float64) (pricing.Suggestion, error) {
	if h.cache == nil {
		return pricing.SuggestPrices(buy, category, adCost)
	}

	var computeErr error
	var s pricing.Suggestion
	err := h.cache.GetOrSet(ctx, redis.PricingKey(category, buy, adCost), &s, redis.TTLDaily, func() (interface{}, error) {
		v, err := pricing.SuggestPrices(buy, category, adCost)
		computeErr = err
		return v, err
	})
	if computeErr != nil {
		return pricing.Suggestion{}, computeErr
	}
	if err != nil {
		h.logger.WithError(err).Warn("Price cache unavailable")
		return pricing.SuggestPrices(buy, category, adCost)
	}
	return s, nil
}

// MarginRequest is the body of the margin endpoint
type MarginRequest struct {
	BuyPrice  float64  `json:"buyPrice"`
	SellPrice float64  `json:"sellPrice"`
	AdCost    *float64 `json:"adCost,omitempty"`
}

func (h *PricingHandler) adCostOr(v *float64) float64 {
	if v != nil {
		return *v
	}
	return h.adCost
}

// Margin calculates profit and margin for a buy/sell price pair
// POST /api/pricing/margin
func (h *PricingHandler) Margin(w http.ResponseWriter, r *http.Request) {
	var req MarginRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := pricing.CalculateMargin(req.BuyPrice, req.SellPrice, h.adCostOr(req.AdCost))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profit":         m.Profit,
		"margin":         m.MarginPercent,
		"isViable":       m.IsViable,
		"recommendation": pricing.MarginRecommendation(m.MarginPercent),
	})
}

// Suggest returns the three price bands for a buy price
// GET /api/pricing/suggest?buyPrice=10&category=beauty&adCost=10
func (h *PricingHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	buy, err := strconv.ParseFloat(q.Get("buyPrice"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "buyPrice must be a number")
		return
	}

	adCost := h.adCost
	if s := q.Get("adCost"); s != "" {
		if adCost, err = strconv.ParseFloat(s, 64); err != nil {
			respondError(w, http.StatusBadRequest, "adCost must be a number")
			return
		}
	}

	s, err := h.suggest(r.Context(), buy, q.Get("category"), adCost)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s)
}

// CompetitorsRequest is the body of the competitors endpoint
type CompetitorsRequest struct {
	BuyPrice         float64   `json:"buyPrice"`
	CompetitorPrices []float64 `json:"competitorPrices"`
}

// Competitors positions a buy price against competitor prices
// POST /api/pricing/competitors
func (h *PricingHandler) Competitors(w http.ResponseWriter, r *http.Request) {
	var req CompetitorsRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BuyPrice <= 0 {
		respondError(w, http.StatusBadRequest, "buyPrice must be positive")
		return
	}

	respondJSON(w, http.StatusOK, pricing.AnalyzeCompetitors(req.BuyPrice, req.CompetitorPrices))
}

// OptimizeRequest is the body of the optimize endpoint
type OptimizeRequest struct {
	BuyPrice         float64                  `json:"buyPrice"`
	Category         string                   `json:"category"`
	AdCost           *float64                 `json:"adCost,omitempty"`
	MarketConditions pricing.MarketConditions `json:"marketConditions"`
	CompetitorPrices []float64                `json:"competitorPrices"`
}

// Optimize returns the full pricing plan
// POST /api/pricing/optimize
func (h *PricingHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := pricing.Optimize(req.BuyPrice, req.Category, h.adCostOr(req.AdCost), req.MarketConditions, req.CompetitorPrices)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}
