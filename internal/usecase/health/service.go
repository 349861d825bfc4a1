package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that only literal search is served.
	Degraded Status = "degraded"
	// Unhealthy indicates that the content store is down and no mode can answer.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentContentStore = "content_store"
	ComponentVectorIndex  = "vector_index"
	ComponentEmbedding    = "embedding"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Reason explains a failing vector index check.
	Reason string
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	vector    VectorProbe
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. vector and embedding can be nil.
func New(store StorePinger, vector VectorProbe, embedding EmbeddingChecker) *Service {
	return &Service{store: store, vector: vector, embedding: embedding, timeout: defaultCheckTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)
	var reason string

	checks[ComponentContentStore] = s.run(ctx, s.store.Ping)

	if s.vector != nil {
		state := s.vector.Check(ctx)
		if state.Available() {
			checks[ComponentVectorIndex] = CheckOK
		} else {
			checks[ComponentVectorIndex] = CheckError
			reason = state.Reason()
		}
	}

	if s.embedding != nil {
		checks[ComponentEmbedding] = s.run(ctx, s.embedding.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentContentStore] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, Reason: reason}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
