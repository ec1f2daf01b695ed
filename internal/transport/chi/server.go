// Package chi exposes the HTTP API: webhook ingest endpoints, visibility
// scoped search, and schema inspection.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/metrics"
	"github.com/fernhollow/searchsync/internal/domain/event"
	"github.com/fernhollow/searchsync/internal/domain/search/request"
	healthuc "github.com/fernhollow/searchsync/internal/usecase/health"
	ingestuc "github.com/fernhollow/searchsync/internal/usecase/ingest"
	mappinguc "github.com/fernhollow/searchsync/internal/usecase/mapping"
	searchuc "github.com/fernhollow/searchsync/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeInvalidPayload   errorCode = "invalid_payload"
	codeMissingDocID     errorCode = "missing_document_id"
	codeMissingParentOrg errorCode = "missing_parent_org_id"
	codeMissingUserEmail errorCode = "missing_user_email"
	codeDocumentNotFound errorCode = "document_not_found"
	codeStoreUnavailable errorCode = "store_unavailable"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	OK      bool      `json:"ok"`
	Code    errorCode `json:"error"`
	Message string    `json:"message"`
}

type outcomeResponse struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	ID     string `json:"id"`
	Index  string `json:"index"`
}

// Server wires the usecase services into HTTP handlers.
type Server struct {
	ingest        *ingestuc.Service
	search        *searchuc.Service
	mappings      *mappinguc.Cache
	health        *healthuc.Service
	logger        *zap.Logger
	limits        request.Limits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	search *searchuc.Service,
	mappings *mappinguc.Cache,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:   ingest,
		search:   search,
		mappings: mappings,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidPayload, http.StatusBadRequest, codeInvalidPayload),
		sentinelHandler(domain.ErrMissingDocumentID, http.StatusBadRequest, codeMissingDocID),
		sentinelHandler(domain.ErrMissingParentOrg, http.StatusBadRequest, codeMissingParentOrg),
		sentinelHandler(domain.ErrMissingUserEmail, http.StatusBadRequest, codeMissingUserEmail),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusBadGateway, codeStoreUnavailable),
	}
	return s
}

// WithLimits sets the default and maximum search result sizes. Non-positive
// values keep the built-in bounds.
func (s *Server) WithLimits(def, max int) *Server {
	s.limits = request.Limits{Default: def, Max: max}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Liveness)
	r.Post("/index/task", s.IndexTask)
	r.Post("/index/organization", s.IndexOrganization)
	r.Post("/search", s.Search)
	r.Get("/mappings", s.Mappings)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// indexRequest is the webhook envelope: an event descriptor plus the raw
// document payload.
type indexRequest struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// IndexTask handles POST /index/task.
func (s *Server) IndexTask(w http.ResponseWriter, r *http.Request) {
	s.applyEvent(w, r, "task")
}

// IndexOrganization handles POST /index/organization. Child payloads (teams,
// members) arrive here too and are merged into their parent aggregate.
func (s *Server) IndexOrganization(w http.ResponseWriter, r *http.Request) {
	s.applyEvent(w, r, "")
}

func (s *Server) applyEvent(w http.ResponseWriter, r *http.Request, fallbackHint string) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	hint := req.Event
	if hint == "" {
		hint = fallbackHint
	}

	start := time.Now()
	out, err := s.ingest.Apply(r.Context(), event.Event{
		Kind:    event.ParseKind(req.Event),
		Hint:    hint,
		Payload: req.Payload,
	})
	if err != nil {
		metrics.EventsTotal.WithLabelValues("none", "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.EventsTotal.WithLabelValues(string(out.Action), "ok").Inc()
	metrics.ReconcileDuration.WithLabelValues(string(out.Action)).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, outcomeResponse{
		OK:     true,
		Action: string(out.Action),
		ID:     out.ID,
		Index:  out.Index,
	})
}

type searchRequest struct {
	Query     string `json:"query"`
	UserEmail string `json:"userEmail"`
	Limit     int    `json:"limit"`
	Debug     bool   `json:"debug"`
}

type searchResponse struct {
	Results []map[string]any `json:"results"`
	Debug   *searchDebug     `json:"debug,omitempty"`
}

type searchDebug struct {
	Filtered   []map[string]any `json:"filtered"`
	Unfiltered []map[string]any `json:"unfiltered"`
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	domReq, err := request.New(req.Query, req.UserEmail, req.Limit, req.Debug, s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), domReq)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchHits.Observe(float64(len(resp.Results)))

	out := searchResponse{Results: resp.Results}
	if resp.Unfiltered != nil {
		out.Debug = &searchDebug{Filtered: resp.Results, Unfiltered: resp.Unfiltered}
	}
	writeJSON(w, http.StatusOK, out)
}

// Mappings handles GET /mappings. Optional index csv narrows the schema dump;
// refresh=true forces a summary reload first.
func (s *Server) Mappings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := s.mappings.Refresh(r.Context()); err != nil {
			metrics.MappingRefreshTotal.WithLabelValues("error").Inc()
			s.logger.Warn("mapping refresh failed", zap.Error(err))
		} else {
			metrics.MappingRefreshTotal.WithLabelValues("ok").Inc()
		}
	}

	indices := s.mappings.Indices()
	if csv := r.URL.Query().Get("index"); csv != "" {
		indices = nil
		for _, name := range strings.Split(csv, ",") {
			if name = strings.TrimSpace(name); name != "" {
				indices = append(indices, name)
			}
		}
	}

	raw, err := s.mappings.Raw(r.Context(), indices)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mappings": raw,
		"summary":  s.mappings.Get(r.Context()),
	})
}

// Liveness handles GET /.
func (s *Server) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
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

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		OK:      false,
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidPayload,
		domain.ErrMissingDocumentID,
		domain.ErrMissingParentOrg,
		domain.ErrMissingUserEmail,
		domain.ErrDocumentNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
