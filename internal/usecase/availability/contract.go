package availability

import "context"

// HealthChecker is the cheap liveness call against the vector index
// (index existence or ping). Returning nil means semantic search may run.
type HealthChecker interface {
	Health(ctx context.Context) error
}
