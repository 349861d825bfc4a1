package vector

import (
	"github.com/kailas-cloud/docintel/internal/db"
)

// Hash field names. The vector field name is shared with the FT schema.
const (
	fieldVector     = "vector"
	fieldSourceType = "source_type"
	fieldTags       = "tags"
	fieldCreatedAt  = "created_at"
)

const tagSeparator = ","

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates the content index definition: three filterable fields
// plus one HNSW/COSINE vector field.
func buildIndex(name, prefix string, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(name).
		Prefix(prefix).
		Tag(fieldSourceType, "").
		Tag(fieldTags, tagSeparator).
		Numeric(fieldCreatedAt).
		VectorHNSW(fieldVector, dim, hnsw.M, hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // builder already names the field
	}
	return def, nil
}
