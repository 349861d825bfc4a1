package domain

import "github.com/kailas-cloud/docintel/internal/domain/content"

// VectorHit is one nearest-neighbour result from a vector index.
// Similarity is already mapped to [0,1]: s = clamp(1 - cosineDistance, 0, 1).
type VectorHit struct {
	ID         string
	Similarity float64
}

// VectorEntry pairs a record with its document embedding for the write path.
// Filterable metadata (source type, tags, created_at) is taken from the record.
type VectorEntry struct {
	Record content.Record
	Vector []float32
}

// KeyPrefix namespaces every key docintel writes into a shared KV store.
const KeyPrefix = "docintel:"
