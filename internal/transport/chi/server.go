// Package chi exposes the search engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/filter"
	"github.com/crimedex/crimedex/internal/domain/search/request"
	healthuc "github.com/crimedex/crimedex/internal/usecase/health"
	searchuc "github.com/crimedex/crimedex/internal/usecase/search"
)

// ErrorCode identifies an error class in API responses.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeInvalidQuery        ErrorCode = "invalid_query"
	CodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	CodeNotFound            ErrorCode = "not_found"
	CodeRateLimited         ErrorCode = "rate_limited"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the wire form of a search call.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters filter.Filters `json:"filters,omitempty"`
	Sort    string         `json:"sort,omitempty"`
	Page    int            `json:"page,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// SearchResponse is the wire form of a result page.
type SearchResponse struct {
	Items   []domain.ContentSummary `json:"items"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
	HasNext bool                    `json:"has_next"`
}

// ClientConfig advertises the query defaults clients should apply.
type ClientConfig struct {
	DebounceWindowMS int `json:"debounce_window_ms"`
	MinQueryLength   int `json:"min_query_length"`
	DefaultPageSize  int `json:"default_page_size"`
	MaxPageSize      int `json:"max_page_size"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the search API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	clientCfg     ClientConfig
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, clientCfg ClientConfig, logger *zap.Logger) *Server {
	s := &Server{
		search:    search,
		health:    health,
		logger:    logger,
		clientCfg: clientCfg,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusUnprocessableEntity, CodeInvalidQuery),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, CodeUpstreamUnavailable),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrTooManyRequests, http.StatusTooManyRequests, CodeRateLimited),
	}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchContent)
	r.Get("/v1/config", s.Config)
	r.Post("/v1/admin/cache/flush", s.FlushCache)
	r.Post("/v1/admin/cache/invalidate", s.InvalidateCache)
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// SearchContent handles POST /v1/search.
func (s *Server) SearchContent(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Items:   res.Items,
		Total:   res.Total,
		Page:    res.Page,
		Limit:   res.Limit,
		HasNext: res.HasNext(),
	})
}

// Config handles GET /v1/config.
func (s *Server) Config(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.clientCfg)
}

// FlushCache handles POST /v1/admin/cache/flush.
func (s *Server) FlushCache(w http.ResponseWriter, r *http.Request) {
	if err := s.search.FlushCache(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}

// InvalidateCache handles POST /v1/admin/cache/invalidate. The body is the
// same request shape as a search; the entry it would have read is dropped.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	if err := s.search.Invalidate(r.Context(), req); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// decodeSearchRequest parses and validates the search body, applying the
// advertised page-size default when the caller omits a limit.
func (s *Server) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (request.Request, bool) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return request.Request{}, false
	}

	if body.Page == 0 {
		body.Page = 1
	}
	if body.Limit == 0 {
		body.Limit = s.clientCfg.DefaultPageSize
	}

	req, err := request.New(body.Query, body.Filters, body.Sort, body.Page, body.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return request.Request{}, false
	}
	return req, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrInvalidQuery,
		domain.ErrUpstreamUnavailable,
		domain.ErrNotFound,
		domain.ErrTooManyRequests,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
