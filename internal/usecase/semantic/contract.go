package semantic

import (
	"context"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex returns up to k nearest ids ordered by similarity, pushing
// filters down where the backend supports it.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, k int, filters filter.Filters) ([]domain.VectorHit, error)
}

// RecordReader hydrates index hits. Unknown ids are omitted from the result.
type RecordReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]content.Record, error)
}
