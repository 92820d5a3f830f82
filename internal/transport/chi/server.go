// Package chi exposes the search core over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
	searchuc "github.com/marksearch/marksearch/internal/usecase/search"
)

// Pinger is the store connectivity probe used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes search requests to the orchestrator.
type Server struct {
	search *searchuc.Service
	store  Pinger
	logger *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(search *searchuc.Service, store Pinger, logger *zap.Logger) *Server {
	return &Server{search: search, store: store, logger: logger}
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/search/semantic", s.handleSemantic)
	r.Get("/api/v1/suggestions", s.handleSuggestions)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), searchuc.Request{
		Query:   req.Query,
		Filters: filterFromDTO(req.Filters),
		Page:    req.Page,
		Limit:   req.Limit,
		SortBy:  searchuc.SortKey(req.SortBy),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// handleSemantic handles POST /api/v1/search/semantic.
func (s *Server) handleSemantic(w http.ResponseWriter, r *http.Request) {
	var req semanticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	threshold := searchuc.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	resp, err := s.search.Semantic(r.Context(), searchuc.SemanticRequest{
		Query:     req.Query,
		Filters:   filterFromDTO(req.Filters),
		Limit:     req.Limit,
		Threshold: threshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, semanticToDTO(resp))
}

// handleSuggestions handles GET /api/v1/suggestions?q=.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.search.Autocomplete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	dtos := make([]suggestionDTO, len(suggestions))
	for i, sg := range suggestions {
		dtos[i] = suggestionDTO{Type: sg.Type, Value: sg.Value, Label: sg.Label}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: dtos})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status, httpStatus := "ok", http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		checks["store"] = "unreachable"
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// handleDomainError maps sentinel errors to status codes. Unrecognized
// errors surface as an opaque 500; internals never leak to the client.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "validation_failed", domain.ErrEmptyQuery.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.logger.Error("store unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", domain.ErrStoreUnavailable.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
