package vector

import (
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docintel/internal/db"
	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Config locates the index inside the shared store.
type Config struct {
	IndexName  string
	KeyPrefix  string
	Dimensions int
	HNSW       HNSWConfig
}

// Repo is the FT.SEARCH-backed vector index of content embeddings.
// Keys are KeyPrefix+content id; every key is a hash with the vector and filter metadata.
type Repo struct {
	store store
	cfg   Config
}

// New creates a vector repository.
func New(s store, cfg Config) *Repo {
	if cfg.IndexName == "" {
		cfg.IndexName = domain.KeyPrefix + "content:idx"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = domain.KeyPrefix + "vec:"
	}
	if cfg.HNSW.M <= 0 {
		cfg.HNSW.M = 16
	}
	if cfg.HNSW.EFConstruct <= 0 {
		cfg.HNSW.EFConstruct = 200
	}
	return &Repo{store: s, cfg: cfg}
}

// Health reports whether the index exists and the store answers.
func (r *Repo) Health(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("index info %s: %w", r.cfg.IndexName, err)
	}
	if !ok {
		return fmt.Errorf("index %s: %w", r.cfg.IndexName, domain.ErrNotFound)
	}
	return nil
}

// EnsureIndex creates the index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg.IndexName, r.cfg.KeyPrefix, r.cfg.Dimensions, r.cfg.HNSW)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// Query returns up to k nearest content ids with filters pushed down as an FT pre-filter.
func (r *Repo) Query(
	ctx context.Context, vector []float32, k int, filters filter.Filters,
) ([]domain.VectorHit, error) {
	q := &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		Tags:         tagClauses(filters),
		Ranges:       rangeClauses(filters),
		ReturnFields: []string{fieldSourceType},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.cfg.IndexName, err)
	}

	hits := make([]domain.VectorHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := strings.TrimPrefix(e.Key, r.cfg.KeyPrefix)
		if id == "" || id == e.Key {
			continue
		}
		hits = append(hits, domain.VectorHit{ID: id, Similarity: e.Score})
	}
	slices.SortFunc(hits, func(a, b domain.VectorHit) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return hits, nil
}

// Upsert writes vectors and filter metadata in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(entries))
	for _, e := range entries {
		if r.cfg.Dimensions > 0 && len(e.Vector) != r.cfg.Dimensions {
			return fmt.Errorf("record %s: vector has %d dimensions, index expects %d",
				e.Record.ID(), len(e.Vector), r.cfg.Dimensions)
		}
		items = append(items, db.HashSetItem{
			Key:    r.key(e.Record.ID()),
			Fields: hashFields(e.Record, e.Vector),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d vectors: %w", len(items), err)
	}
	return nil
}

// Delete removes a record's vector. Missing keys are not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete vector %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.cfg.KeyPrefix + id
}

func hashFields(rec content.Record, vec []float32) map[string]string {
	return map[string]string{
		fieldVector:     vectorToBytes(vec),
		fieldSourceType: string(rec.SourceType()),
		fieldTags:       strings.Join(rec.Tags(), tagSeparator),
		fieldCreatedAt:  strconv.FormatInt(rec.CreatedAt().Unix(), 10),
	}
}

// tagClauses maps source types to one ORed clause; tags to one ORed clause,
// or one clause per tag under AND logic.
func tagClauses(f filter.Filters) []db.TagClause {
	var clauses []db.TagClause
	if sts := f.SourceTypes(); len(sts) > 0 {
		values := make([]string, len(sts))
		for i, st := range sts {
			values[i] = string(st)
		}
		clauses = append(clauses, db.TagClause{Field: fieldSourceType, Values: values})
	}

	tags := f.Tags()
	switch {
	case len(tags) == 0:
	case f.TagLogic() == filter.And:
		for _, t := range tags {
			clauses = append(clauses, db.TagClause{Field: fieldTags, Values: []string{t}})
		}
	default:
		clauses = append(clauses, db.TagClause{Field: fieldTags, Values: slices.Clone(tags)})
	}
	return clauses
}

// rangeClauses maps [since, until) onto created_at in unix seconds.
// Stored values are truncated to the second, so a fractional until is
// rounded up; the lane re-checks the exact window afterwards.
func rangeClauses(f filter.Filters) []db.RangeClause {
	since, until := f.Since(), f.Until()
	if since.IsZero() && until.IsZero() {
		return nil
	}
	rc := db.RangeClause{Field: fieldCreatedAt}
	if !since.IsZero() {
		lo := float64(since.Unix())
		rc.Min = &lo
	}
	if !until.IsZero() {
		secs := until.Unix()
		if until.Nanosecond() > 0 {
			secs++
		}
		hi := float64(secs)
		rc.Max = &hi
	}
	return []db.RangeClause{rc}
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
