package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	"github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/metrics"
	"github.com/kailas-cloud/docintel/internal/transport/wire"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
)

// maxBodyBytes bounds a search request body.
const maxBodyBytes = 64 << 10

// Searcher runs one query.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search HTTP API.
type Server struct {
	search Searcher
	health HealthReporter
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthReporter) *Server {
	return &Server{search: search, health: health}
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Reason string            `json:"reason,omitempty"`
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var in wire.QueryInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		metrics.TagRequest(r.Context(), "", string(domain.KindValidation))
		writeError(w, http.StatusBadRequest, wire.ErrorBody{
			Code:    string(domain.KindValidation),
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	req, err := in.ToRequest()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	metrics.TagRequest(r.Context(), string(req.Mode()), "")

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, &req)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, wire.NewSearchOutput(results, in.Why))
}

// HealthCheck handles GET /health. Only an unhealthy report returns 503;
// a degraded service still answers literal queries.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
		Reason: report.Reason,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(usage.Tokens(), 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body wire.ErrorBody) {
	writeJSON(w, status, body)
}

// handleDomainError maps a classified error to its status. Internal errors are logged in full.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := wire.HTTPStatus(err)
	metrics.TagRequest(r.Context(), "", string(domain.KindOf(err)))
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Warn("search failed",
			zap.String("code", string(domain.KindOf(err))),
			zap.Error(err),
		)
	}
	writeError(w, status, wire.NewErrorBody(err))
}
