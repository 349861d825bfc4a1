package health

import (
	"context"

	"github.com/kailas-cloud/docintel/internal/domain/availability"
)

// StorePinger checks content store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// VectorProbe reports the cached vector index availability.
type VectorProbe interface {
	Check(ctx context.Context) availability.State
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
