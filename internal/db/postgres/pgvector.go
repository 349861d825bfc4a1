package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// VectorIndex is a pgvector-backed vector index. Embeddings live in their own
// table keyed by content id; filters are evaluated by joining the records table.
// Similarity is 1 - cosine distance (<=>), clamped to [0,1].
type VectorIndex struct {
	db         *DB
	table      string
	rawTable   string
	records    string
	dimensions int
}

// NewVectorIndex creates an index over embeddingsTable joined with recordsTable.
func NewVectorIndex(db *DB, embeddingsTable, recordsTable string, dimensions int) *VectorIndex {
	if embeddingsTable == "" {
		embeddingsTable = "content_embeddings"
	}
	if recordsTable == "" {
		recordsTable = "content_records"
	}
	return &VectorIndex{
		db:         db,
		table:      pgx.Identifier{embeddingsTable}.Sanitize(),
		rawTable:   embeddingsTable,
		records:    pgx.Identifier{recordsTable}.Sanitize(),
		dimensions: dimensions,
	}
}

// Health reports whether the embeddings table exists.
func (v *VectorIndex) Health(ctx context.Context) error {
	var exists bool
	if err := v.db.Pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", v.rawTable).Scan(&exists); err != nil {
		return fmt.Errorf("check table %s: %w", v.rawTable, err)
	}
	if !exists {
		return fmt.Errorf("table %s: %w", v.rawTable, domain.ErrNotFound)
	}
	return nil
}

// Query returns up to k nearest content ids ordered by similarity.
func (v *VectorIndex) Query(
	ctx context.Context, vector []float32, k int, filters filter.Filters,
) ([]domain.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	query, params := v.buildQuery(pgvector.NewVector(vector), k, filters)
	rows, err := v.db.Pool.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.VectorHit, 0, k)
	for rows.Next() {
		var (
			id       string
			distance float64
		)
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		hits = append(hits, domain.VectorHit{ID: id, Similarity: min(1, max(0, 1-distance))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return hits, nil
}

func (v *VectorIndex) buildQuery(vec pgvector.Vector, k int, filters filter.Filters) (string, []any) {
	var a args
	vp := a.add(vec)
	conds := filterConds(filters, "r", &a)
	query := "SELECT e.content_id, e.embedding <=> " + vp + " AS distance" +
		" FROM " + v.table + " e JOIN " + v.records + " r ON r.id = e.content_id" +
		where(conds) +
		" ORDER BY distance ASC, e.content_id ASC LIMIT " + strconv.Itoa(k)
	return query, a
}

// Upsert writes embeddings in one batch round-trip.
func (v *VectorIndex) Upsert(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := "INSERT INTO " + v.table + " (content_id, embedding) VALUES ($1, $2)" +
		" ON CONFLICT (content_id) DO UPDATE SET embedding = EXCLUDED.embedding"

	batch := &pgx.Batch{}
	for _, e := range entries {
		if v.dimensions > 0 && len(e.Vector) != v.dimensions {
			return fmt.Errorf("record %s: vector has %d dimensions, index expects %d",
				e.Record.ID(), len(e.Vector), v.dimensions)
		}
		batch.Queue(query, e.Record.ID(), pgvector.NewVector(e.Vector))
	}

	br := v.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert embedding %s: %w", e.Record.ID(), err)
		}
	}
	return nil
}

// Delete removes a record's embedding. Missing rows are not an error.
func (v *VectorIndex) Delete(ctx context.Context, id string) error {
	if _, err := v.db.Pool.Exec(ctx, "DELETE FROM "+v.table+" WHERE content_id = $1", id); err != nil {
		return fmt.Errorf("delete embedding %s: %w", id, err)
	}
	return nil
}
