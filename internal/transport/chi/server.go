package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/search/hit"
	detailsuc "github.com/kailas-cloud/qadex/internal/usecase/details"
	healthuc "github.com/kailas-cloud/qadex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qadex/internal/usecase/search"
)

// Reloader rebuilds the join store and reindexes it.
type Reloader interface {
	Reload(ctx context.Context) (ReloadStats, error)
}

// ReloadStats summarizes a reload run.
type ReloadStats struct {
	Questions int   `json:"questions"`
	Answers   int   `json:"answers"`
	Indexed   int64 `json:"indexed"`
	Failed    int64 `json:"failed"`
}

type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeQuestionNotFound errorCode = "question_not_found"
	codeUpstreamError    errorCode = "upstream_error"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// hitResponse is the wire shape of one search hit.
type hitResponse struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
}

// detailsResponse is the wire shape of a question with its answers.
type detailsResponse struct {
	Question map[string]string   `json:"question"`
	Answers  []map[string]string `json:"answers"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the question search and details API.
type Server struct {
	search        *searchuc.Service
	details       *detailsuc.Service
	reload        Reloader
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	details *detailsuc.Service,
	reload Reloader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		details: details,
		reload:  reload,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQuestionNotFound, http.StatusNotFound, codeQuestionNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, codeUpstreamError),
	}
	return s
}

// Routes mounts the API handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/search/{query}", s.Search)
	r.Get("/api/details/{id}", s.Details)
	r.Post("/api/reload", s.Reload)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /api/search/{query}.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	// '+' in the path segment stands for a space
	query := strings.ReplaceAll(chi.URLParam(r, "query"), "+", " ")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query must not be empty")
		return
	}

	hits, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]hitResponse, len(hits))
	for i, h := range hits {
		items[i] = hitToResponse(h)
	}

	writeJSON(w, http.StatusOK, items)
}

// Details handles GET /api/details/{id}.
func (s *Server) Details(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "id must not be empty")
		return
	}

	question, answers, err := s.details.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := detailsResponse{
		Question: question.Fields(),
		Answers:  make([]map[string]string, len(answers)),
	}
	for i, a := range answers {
		resp.Answers[i] = a.Fields()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Reload handles POST /api/reload.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reload.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /healthz.
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

func hitToResponse(h hit.Hit) hitResponse {
	return hitResponse{
		ID:    h.ID(),
		Type:  string(h.Source()),
		Score: h.Score(),
		Title: h.Title(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrQuestionNotFound,
		domain.ErrUpstreamUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrSourceUnreadable,
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
