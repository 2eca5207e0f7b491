package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/normalizer"
	"github.com/wonny/dropscout/internal/validation"
	"github.com/wonny/dropscout/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ValidationHandler handles product validation endpoints
// ⭐ SSOT: validation API handlers live in this struct only
type ValidationHandler struct {
	service *validation.Service
	logger  *logger.Logger
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(service *validation.Service, log *logger.Logger) *ValidationHandler {
	return &ValidationHandler{service: service, logger: log}
}

// ValidateProductRequest is the body of validate-product
type ValidateProductRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
}

func (r ValidateProductRequest) ref() contracts.ProductRef {
	return contracts.ProductRef{
		ID:       strings.TrimSpace(r.ProductID),
		Name:     strings.TrimSpace(r.ProductName),
		Category: strings.TrimSpace(r.Category),
	}
}

// ValidateProduct runs the full pipeline for one product
// POST /api/validation/validate-product
func (h *ValidationHandler) ValidateProduct(w http.ResponseWriter, r *http.Request) {
	var req ValidateProductRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref := req.ref()
	if ref.Name == "" {
		respondError(w, http.StatusBadRequest, "productName is required")
		return
	}

	report, err := h.service.ValidateProduct(r.Context(), ref)
	if err != nil {
		h.logger.WithError(err).WithField("product", ref.Key()).Warn("Product validation failed")
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ValidateBatchRequest is the body of validate-batch
type ValidateBatchRequest struct {
	Products []ValidateProductRequest `json:"products"`
}

// ValidateBatch runs the pipeline for up to the batch limit of products
// POST /api/validation/validate-batch
func (h *ValidationHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateBatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Products) == 0 {
		respondError(w, http.StatusBadRequest, "products must be a non-empty array")
		return
	}

	refs := make([]contracts.ProductRef, len(req.Products))
	for i, p := range req.Products {
		refs[i] = p.ref()
	}

	report, err := h.service.ValidateBatch(r.Context(), refs)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// EvaluateRequest carries raw signals for pure scoring
type EvaluateRequest struct {
	ProductID   string               `json:"productId"`
	ProductName string               `json:"productName"`
	Product     contracts.RawPayload `json:"product"`
	Social      contracts.RawPayload `json:"social"`
	Competition contracts.RawPayload `json:"competition"`
}

// Evaluate scores caller-supplied signals without any upstream fetch
// POST /api/validation/evaluate
func (h *ValidationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	signals, err := normalizer.Normalize(req.Product, req.Social, req.Competition)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	ref := contracts.ProductRef{ID: req.ProductID, Name: req.ProductName}
	result, err := h.service.Evaluator().EvaluateProduct(r.Context(), ref, signals.Product, signals.Social, signals.Competition)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// History returns recent validations
// GET /api/validation/history?limit=50&days=7
func (h *ValidationHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var since time.Time
	if s := r.URL.Query().Get("days"); s != "" {
		if d, err := strconv.Atoi(s); err == nil && d > 0 {
			since = time.Now().AddDate(0, 0, -d)
		}
	}

	records, err := h.service.History(r.Context(), since, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load validation history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve validation history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}
