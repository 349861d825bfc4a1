package keyword

import (
	"context"
	"iter"

	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// ContentStore streams candidate records for lexical matching.
// anyTerms is a loose pushdown hint (records containing at least one term);
// the lane re-checks filters and terms on every record it receives.
// Each call returns a fresh, finite sequence.
type ContentStore interface {
	Query(ctx context.Context, filters filter.Filters, anyTerms []string) iter.Seq2[content.Record, error]
}
