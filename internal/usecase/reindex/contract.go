package reindex

import (
	"context"
	"iter"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// RecordSource streams the records to index.
type RecordSource interface {
	Query(ctx context.Context, filters filter.Filters, anyTerms []string) iter.Seq2[content.Record, error]
}

// Embedder vectorizes document texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// VectorWriter stores document vectors.
type VectorWriter interface {
	Upsert(ctx context.Context, entries []domain.VectorEntry) error
}

// IndexEnsurer is implemented by writers whose index must exist before the first write.
type IndexEnsurer interface {
	EnsureIndex(ctx context.Context) error
}
