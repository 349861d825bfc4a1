package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated query context.
type Request struct {
	query      string
	searchMode mode.Mode
	filters    filter.Filters
	limit      int
}

// New validates and normalizes search parameters. Every rejection wraps domain.ErrValidation.
// An empty mode means hybrid; limits above MaxLimit are clamped.
func New(query string, m mode.Mode, filters filter.Filters, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrValidation)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes): %w", MaxQueryLength, domain.ErrValidation)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode %q: %w", m, domain.ErrValidation)
	}
	if limit <= 0 {
		return Request{}, fmt.Errorf("limit must be positive, got %d: %w", limit, domain.ErrValidation)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:      query,
		searchMode: m,
		filters:    filters,
		limit:      limit,
	}, nil
}

// Query returns the trimmed search text.
func (r *Request) Query() string { return r.query }

// Mode returns the retrieval strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the hard pre-filter.
func (r *Request) Filters() filter.Filters { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
