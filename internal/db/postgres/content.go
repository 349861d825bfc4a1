package postgres

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

const recordColumns = "id, source_type, COALESCE(title, ''), COALESCE(body, ''), created_at, COALESCE(tags, '{}')"

// ContentStore reads content records. It never writes.
type ContentStore struct {
	db    *DB
	table string
}

// NewContentStore creates a store over table (empty means content_records).
func NewContentStore(db *DB, table string) *ContentStore {
	if table == "" {
		table = "content_records"
	}
	return &ContentStore{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// Ping checks that the database answers.
func (s *ContentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetByIDs returns the records for ids. Unknown ids are omitted.
func (s *ContentStore) GetByIDs(ctx context.Context, ids []string) ([]content.Record, error) {
	if len(ids) == 0 {
		return []content.Record{}, nil
	}

	query := "SELECT " + recordColumns + " FROM " + s.table + " WHERE id = ANY($1)"
	rows, err := s.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get records by ids: %w", err)
	}
	defer rows.Close()

	records := make([]content.Record, 0, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// Query streams records matching filters. When anyTerms is non-empty only
// records whose title or body contains at least one term are returned.
// Every call runs a fresh query, so the sequence can be ranged over again.
func (s *ContentStore) Query(
	ctx context.Context, filters filter.Filters, anyTerms []string,
) iter.Seq2[content.Record, error] {
	return func(yield func(content.Record, error) bool) {
		query, params := s.buildQuery(filters, anyTerms)

		rows, err := s.db.Pool.Query(ctx, query, params...)
		if err != nil {
			yield(content.Record{}, fmt.Errorf("query records: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				yield(content.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(content.Record{}, fmt.Errorf("row iteration error: %w", err))
		}
	}
}

func (s *ContentStore) buildQuery(filters filter.Filters, anyTerms []string) (string, []any) {
	var a args
	conds := filterConds(filters, "", &a)
	if tc := termCond(anyTerms, "", &a); tc != "" {
		conds = append(conds, tc)
	}
	return "SELECT " + recordColumns + " FROM " + s.table + where(conds) + " ORDER BY id", a
}

func scanRecord(rows pgx.Rows) (content.Record, error) {
	var (
		id, sourceType, title, body string
		createdAt                   time.Time
		tags                        []string
	)
	if err := rows.Scan(&id, &sourceType, &title, &body, &createdAt, &tags); err != nil {
		return content.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}
	rec, err := content.NewRecord(id, content.SourceTypeFromStorage(sourceType), title, body, createdAt, tags)
	if err != nil {
		return content.Record{}, fmt.Errorf("record %q: %w", id, err)
	}
	return rec, nil
}
