package search

import (
	"context"

	domavail "github.com/kailas-cloud/docintel/internal/domain/availability"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
)

// Prober reports vector index availability and accepts invalidation.
type Prober interface {
	Check(ctx context.Context) domavail.State
	Invalidate()
}

// SemanticLane produces vector similarity matches.
type SemanticLane interface {
	Search(ctx context.Context, state domavail.State, query string, filters filter.Filters, k int) ([]match.Scored, error)
}

// KeywordLane produces lexical matches.
type KeywordLane interface {
	Search(ctx context.Context, query string, filters filter.Filters) ([]match.Scored, error)
	SearchLiteral(ctx context.Context, query string, filters filter.Filters) ([]match.Scored, error)
}
