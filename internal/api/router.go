package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/dropscout/internal/api/handlers"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/metrics"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Validation *handlers.ValidationHandler
	Pricing    *handlers.PricingHandler
	Research   *handlers.ResearchHandler
	Stream     http.Handler // websocket feed, optional
	Metrics    bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing lives in this function only
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Validation
	api.HandleFunc("/validation/validate-product", h.Validation.ValidateProduct).Methods("POST")
	api.HandleFunc("/validation/validate-batch", h.Validation.ValidateBatch).Methods("POST")
	api.HandleFunc("/validation/evaluate", h.Validation.Evaluate).Methods("POST")
	api.HandleFunc("/validation/history", h.Validation.History).Methods("GET")

	// Pricing
	api.HandleFunc("/pricing/margin", h.Pricing.Margin).Methods("POST")
	api.HandleFunc("/pricing/suggest", h.Pricing.Suggest).Methods("GET")
	api.HandleFunc("/pricing/competitors", h.Pricing.Competitors).Methods("POST")
	api.HandleFunc("/pricing/optimize", h.Pricing.Optimize).Methods("POST")

	// Research
	api.HandleFunc("/products/search", h.Research.Search).Methods("GET")
	api.HandleFunc("/social-proof", h.Research.SocialProof).Methods("POST")
	api.HandleFunc("/filters/advanced", h.Research.AdvancedFilters).Methods("GET")
	api.HandleFunc("/filters/check", h.Research.CheckFilters).Methods("POST")

	if h.Stream != nil {
		r.Handle("/ws/validations", h.Stream).Methods("GET")
	}
	if h.Metrics {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dropscout-api",
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker for websocket upgrades
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Hijack passes through to the underlying writer when it supports hijacking
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// loggingMiddleware logs HTTP requests and records request metrics
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := routeTemplate(r)
			metrics.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"route":    route,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(handlers.Envelope{
						Success:   false,
						Error:     "Internal server error",
						Timestamp: time.Now().UTC(),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
