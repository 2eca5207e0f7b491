package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/external/aliexpress"
	"github.com/wonny/dropscout/internal/filters"
	"github.com/wonny/dropscout/internal/normalizer"
	"github.com/wonny/dropscout/internal/socialproof"
	"github.com/wonny/dropscout/pkg/logger"
)

// ProductSearcher searches marketplace listings
type ProductSearcher interface {
	SearchProducts(ctx context.Context, keyword string, page, pageSize int) (*aliexpress.SearchResult, error)
}

// ResearchHandler handles product research endpoints: search, social proof and filters
type ResearchHandler struct {
	searcher ProductSearcher
	filters  filters.Advanced
	logger   *logger.Logger
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(searcher ProductSearcher, log *logger.Logger) *ResearchHandler {
	return &ResearchHandler{searcher: searcher, filters: filters.Defaults(), logger: log}
}

// Search lists marketplace products for a keyword
// GET /api/products/search?keyword=led&page=1&pageSize=20
func (h *ResearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := strings.TrimSpace(q.Get("keyword"))
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	res, err := h.searcher.SearchProducts(r.Context(), keyword, page, pageSize)
	if err != nil {
		h.logger.WithError(err).WithField("keyword", keyword).Warn("Product search failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// SocialProof aggregates a caller-supplied four-source payload
// POST /api/social-proof
func (h *ResearchHandler) SocialProof(w http.ResponseWriter, r *http.Request) {
	var raw contracts.RawPayload
	if err := decodeBody(w, r, &raw); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := normalizer.NormalizeSocialProof(raw)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, socialproof.Aggregate(in))
}

// AdvancedFilters returns the research filter presets
// GET /api/filters/advanced
func (h *ResearchHandler) AdvancedFilters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.filters)
}

// CheckFiltersRequest is the body of the filter check endpoint
type CheckFiltersRequest struct {
	Product          contracts.RawPayload `json:"product"`
	SellPrice        float64              `json:"sellPrice"`
	CurrentlySelling bool                 `json:"currentlySelling"`
	SocialProof      bool                 `json:"socialProof"`
}

// CheckFilters applies the presets to a product
// POST /api/filters/check
func (h *ResearchHandler) CheckFilters(w http.ResponseWriter, r *http.Request) {
	var req CheckFiltersRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := normalizer.NormalizeProduct(req.Product)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.filters.Apply(filters.Candidate{
		Product:          product,
		SellPrice:        req.SellPrice,
		CurrentlySelling: req.CurrentlySelling,
		SocialProof:      req.SocialProof,
	}))
}
