package docintel

import (
	"errors"

	"github.com/kailas-cloud/docintel/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrVectorUnavailable = domain.ErrVectorUnavailable
	ErrEmbedding         = domain.ErrEmbedding
	ErrStoreUnavailable  = domain.ErrStoreUnavailable
)

// ErrorKind returns the stable identifier of err ("validation_error",
// "vector_unavailable", "embedding_error", "store_unavailable", "internal_error"),
// or "" for nil.
func ErrorKind(err error) string {
	return string(domain.KindOf(err))
}

// IsVectorUnavailable reports whether a query failed because semantic search
// cannot run right now. Literal queries are unaffected by this condition.
func IsVectorUnavailable(err error) bool {
	return errors.Is(err, ErrVectorUnavailable) || errors.Is(err, ErrEmbedding)
}
