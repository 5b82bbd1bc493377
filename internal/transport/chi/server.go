// Package chi provides the HTTP transport over the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ragctx/ragctx/internal/domain"
	healthuc "github.com/ragctx/ragctx/internal/usecase/health"
	retrievaluc "github.com/ragctx/ragctx/internal/usecase/retrieval"
)

// Error codes of the {"error": code, "details": msg} envelope.
const (
	codeBadRequest        = "bad_request"
	codeInvalidEmbedding  = "invalid_embedding"
	codeInvalidTopK       = "invalid_top_k"
	codeUpstreamQuery     = "upstream_query_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeNotConfigured     = "embedding_not_configured"
	codeInternal          = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the retrieval pipeline over HTTP.
type Server struct {
	retrieval     *retrievaluc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(retrieval *retrievaluc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		retrieval: retrieval,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		// Caller input errors keep their full message: it carries the
		// diagnostic detail (expected vs actual dimension, offending index).
		callerErrorHandler(domain.ErrInvalidTopK, codeInvalidTopK),
		callerErrorHandler(domain.ErrNotASequence, codeInvalidEmbedding),
		callerErrorHandler(domain.ErrDimensionMismatch, codeInvalidEmbedding),
		callerErrorHandler(domain.ErrNonNumericElement, codeInvalidEmbedding),
		sentinelHandler(domain.ErrUpstreamQuery, http.StatusBadGateway, codeUpstreamQuery),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrEmbeddingNotConfigured, http.StatusNotImplemented, codeNotConfigured),
	}
	return s
}

// Routes registers all routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.apiDoc)
	r.Post("/search", s.searchContext)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// searchRequest is the POST /search body.
type searchRequest struct {
	// QueryEmbedding is kept raw: its shape is validated by the domain
	// (a scalar, object, or string here must map to a structured error,
	// not a generic decode failure).
	QueryEmbedding json.RawMessage `json:"query_embedding,omitempty"`
	Query          string          `json:"query,omitempty"`
	TopK           *int            `json:"top_k,omitempty"`
}

// searchResponse is the POST /search success body.
type searchResponse struct {
	Context string `json:"context"`
}

// errorResponse is the error envelope shared by all endpoints.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// searchContext handles POST /search.
func (s *Server) searchContext(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Request body must be valid JSON: "+err.Error())
		return
	}

	topK := s.retrieval.DefaultTopK()
	if req.TopK != nil {
		topK = *req.TopK
	}

	switch {
	case len(req.QueryEmbedding) > 0:
		s.searchByEmbedding(w, r, req.QueryEmbedding, topK)
	case req.Query != "":
		s.searchByQuery(w, r, req.Query, topK)
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest,
			"query_embedding is required (or a text query when an embedding provider is configured)")
	}
}

func (s *Server) searchByEmbedding(w http.ResponseWriter, r *http.Request, raw json.RawMessage, topK int) {
	vec, err := domain.ParseVector(raw, s.retrieval.EmbeddingDimension())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	context, err := s.retrieval.GetContext(r.Context(), retrievaluc.Request{Vector: vec, TopK: topK})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Context: context})
}

func (s *Server) searchByQuery(w http.ResponseWriter, r *http.Request, query string, topK int) {
	context, err := s.retrieval.GetContextForQuery(r.Context(), query, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Context: context})
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{
		Error:   code,
		Details: details,
	})
}

// callerErrorHandler returns an errorHandler for caller input errors (400)
// that passes the full error message through as details.
func callerErrorHandler(sentinel error, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, code, err.Error())
		return true
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error and reports only the sentinel text, not the wrapped internals.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}
