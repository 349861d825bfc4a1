package domain

import (
	"errors"
)

var (
	// ErrValidation signals a rejected query: empty text, bad limit, malformed filter.
	ErrValidation = errors.New("validation error")
	// ErrVectorUnavailable signals that the vector index is down or failed mid-query.
	ErrVectorUnavailable = errors.New("vector index unavailable")
	// ErrEmbedding signals an embedding provider failure.
	ErrEmbedding = errors.New("embedding error")
	// ErrStoreUnavailable signals that the content store cannot be reached.
	ErrStoreUnavailable = errors.New("content store unavailable")
	// ErrNotFound signals a missing resource (vector index, record).
	ErrNotFound = errors.New("not found")
)

// Kind is the stable, caller-facing identifier of an error class.
type Kind string

// Error kinds. Values are part of the HTTP/MCP/CLI contract and must not change.
const (
	KindValidation        Kind = "validation_error"
	KindVectorUnavailable Kind = "vector_unavailable"
	KindEmbedding         Kind = "embedding_error"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindInternal          Kind = "internal_error"
)

// KindOf classifies err. Validation wins over everything else, then the
// backend kinds in the order the query pipeline reaches them.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrVectorUnavailable):
		return KindVectorUnavailable
	case errors.Is(err, ErrEmbedding):
		return KindEmbedding
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}
