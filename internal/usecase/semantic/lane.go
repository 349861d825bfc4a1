package semantic

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	domavail "github.com/kailas-cloud/docintel/internal/domain/availability"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/metrics"
)

// Lane defaults.
const (
	DefaultSimilarityFloor  = 0.75
	DefaultEmbeddingTimeout = 10 * time.Second
	DefaultVectorTimeout    = 3 * time.Second
	DefaultStoreTimeout     = 5 * time.Second
)

// Config tunes the semantic lane. Zero durations take the defaults;
// a zero floor keeps every hit.
type Config struct {
	SimilarityFloor  float64
	EmbeddingTimeout time.Duration
	VectorTimeout    time.Duration
	StoreTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = DefaultEmbeddingTimeout
	}
	if c.VectorTimeout <= 0 {
		c.VectorTimeout = DefaultVectorTimeout
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	return c
}

// Lane turns a query into scored matches via embedding + nearest-neighbour search.
type Lane struct {
	embed   Embedder
	index   VectorIndex
	records RecordReader
	cfg     Config
}

// New creates a semantic lane.
func New(embed Embedder, index VectorIndex, records RecordReader, cfg Config) *Lane {
	return &Lane{embed: embed, index: index, records: records, cfg: cfg.withDefaults()}
}

// Floor returns the minimum similarity a hit needs to survive.
func (l *Lane) Floor() float64 { return l.cfg.SimilarityFloor }

// Search embeds query, asks the index for k neighbours and hydrates the
// survivors. state is the probe result for this query; an unavailable state
// fails without touching the embedder or the index.
func (l *Lane) Search(
	ctx context.Context, state domavail.State, query string, filters filter.Filters, k int,
) ([]match.Scored, error) {
	if !state.Available() {
		reason := state.Reason()
		if reason == "" {
			reason = string(state.Status())
		}
		return nil, fmt.Errorf("semantic lane: %w: %s", domain.ErrVectorUnavailable, reason)
	}

	vec, err := l.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := l.queryIndex(ctx, vec, k, filters)
	if err != nil {
		return nil, err
	}

	kept := make(map[string]float64, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Similarity < l.cfg.SimilarityFloor {
			continue
		}
		if prev, dup := kept[h.ID]; dup {
			kept[h.ID] = max(prev, h.Similarity)
			continue
		}
		kept[h.ID] = h.Similarity
		ids = append(ids, h.ID)
	}
	if len(ids) == 0 {
		return []match.Scored{}, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, l.cfg.StoreTimeout)
	defer cancel()
	recs, err := l.records.GetByIDs(storeCtx, ids)
	if err != nil {
		return nil, fmt.Errorf("semantic lane: hydrate: %w: %w", domain.ErrStoreUnavailable, err)
	}

	out := make([]match.Scored, 0, len(recs))
	for _, r := range recs {
		sim, ok := kept[r.ID()]
		if !ok || !filters.Matches(r) {
			continue
		}
		delete(kept, r.ID())
		out = append(out, match.New(match.Semantic, r, sim, sim, []string{fmt.Sprintf("semantic:%.2f", sim)}))
	}

	slices.SortFunc(out, func(a, b match.Scored) int {
		if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
			return c
		}
		return cmp.Compare(a.ContentID(), b.ContentID())
	})

	metrics.LaneMatchesTotal.WithLabelValues(string(match.Semantic)).Add(float64(len(out)))
	logger.FromContext(ctx).Debug("Semantic lane done",
		zap.Int("hits", len(hits)),
		zap.Int("above_floor", len(ids)),
		zap.Int("matches", len(out)),
	)
	return out, nil
}

func (l *Lane) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.EmbeddingTimeout)
	defer cancel()

	res, err := l.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic lane: embed query: %w: %w", domain.ErrEmbedding, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("semantic lane: embed query: %w: empty vector", domain.ErrEmbedding)
	}
	return res.Embedding, nil
}

func (l *Lane) queryIndex(ctx context.Context, vec []float32, k int, filters filter.Filters) ([]domain.VectorHit, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.VectorTimeout)
	defer cancel()

	hits, err := l.index.Query(ctx, vec, k, filters)
	if err != nil {
		return nil, fmt.Errorf("semantic lane: vector query: %w: %w", domain.ErrVectorUnavailable, err)
	}
	return hits, nil
}
