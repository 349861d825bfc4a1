package docintel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
)

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(context.Background(), WithRedis("localhost:6379", ""))
	if err == nil {
		t.Fatal("expected error without postgres dsn")
	}
}

func TestOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithPostgres("postgres://x"),
		WithValkey("v:6379", "pw"),
		WithVectorDimensions(768),
		WithHNSW(32, 400),
		WithQueryInstruction("query: "),
		WithSimilarityFloor(0.5),
		WithAbbreviations(map[string][]string{"po": {"purchase order"}}),
	} {
		o.apply(cfg)
	}

	if cfg.dsn != "postgres://x" || cfg.driver != "valkey" || cfg.addrs[0] != "v:6379" || cfg.password != "pw" {
		t.Errorf("unexpected connection config: %+v", cfg)
	}
	if cfg.vectorDimensions != 768 || cfg.hnswM != 32 || cfg.hnswEFConstruct != 400 {
		t.Errorf("unexpected index config: %+v", cfg)
	}
	if cfg.queryInstruction != "query: " || cfg.similarityFloor != 0.5 || len(cfg.abbreviations["po"]) != 1 {
		t.Errorf("unexpected search config: %+v", cfg)
	}

	WithPGVector().apply(cfg)
	if cfg.driver != "pgvector" || cfg.addrs != nil {
		t.Errorf("WithPGVector should clear addrs, got %+v", cfg)
	}
}

func TestEmbedderAdapter(t *testing.T) {
	a := &embedderAdapter{inner: stubEmbedder{res: EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 4}}}
	res, err := a.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 || res.TotalTokens != 4 {
		t.Errorf("unexpected result: %+v", res)
	}

	failing := &embedderAdapter{inner: stubEmbedder{err: errors.New("quota")}}
	if _, err := failing.Embed(context.Background(), "x"); !errors.Is(err, ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestNoopEmbedder(t *testing.T) {
	_, err := noopEmbedder{}.Embed(context.Background(), "x")
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
}

func TestErrorHelpers(t *testing.T) {
	vec := fmt.Errorf("search: %w", ErrVectorUnavailable)
	if !IsVectorUnavailable(vec) || ErrorKind(vec) != "vector_unavailable" {
		t.Errorf("vector error misclassified: %v", vec)
	}
	if !IsVectorUnavailable(fmt.Errorf("x: %w", ErrEmbedding)) {
		t.Error("embedding failure should allow literal fallback")
	}
	if IsVectorUnavailable(fmt.Errorf("x: %w", ErrStoreUnavailable)) {
		t.Error("store failure is not a vector failure")
	}
	if ErrorKind(nil) != "" {
		t.Error("nil error should have empty kind")
	}
}

func TestSearch_MapsQueryAndHits(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rec, err := content.NewRecord("doc-1", content.Email, "Roof leak", "water damage in attic", created, []string{"claims"})
	if err != nil {
		t.Fatal(err)
	}
	ms := &mockSearch{results: []result.Fused{
		result.New(rec, 0.97, []match.Lane{match.Semantic, match.Keyword}, []string{"semantic 0.87", "title: leak"}),
	}}
	c := newTestClient(ms, nil, nil)

	hits, err := c.Search(context.Background(), Query{
		Text:        "  water damage ",
		Mode:        ModeHybrid,
		SourceTypes: []string{"email"},
		Tags:        []string{"claims"},
		TagLogic:    TagsAll,
		Why:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.got.Query() != "water damage" || ms.got.Mode() != mode.Hybrid || ms.got.Limit() != 10 {
		t.Errorf("unexpected request: query=%q mode=%q limit=%d", ms.got.Query(), ms.got.Mode(), ms.got.Limit())
	}
	if ms.got.Filters().TagLogic() != filter.And || len(ms.got.Filters().SourceTypes()) != 1 {
		t.Errorf("filters not mapped: %+v", ms.got.Filters())
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0]
	if h.ID != "doc-1" || h.SourceType != "email" || h.Score != 0.97 || !h.CreatedAt.Equal(created) {
		t.Errorf("unexpected hit: %+v", h)
	}
	if len(h.Lanes) != 2 || h.Lanes[0] != "semantic" || len(h.Reasons) != 2 {
		t.Errorf("unexpected lanes/reasons: %v %v", h.Lanes, h.Reasons)
	}
}

func TestSearch_ReasonsOnlyWithWhy(t *testing.T) {
	rec, _ := content.NewRecord("doc-1", content.PDF, "t", "b", time.Now(), nil)
	ms := &mockSearch{results: []result.Fused{result.New(rec, 0.5, []match.Lane{match.Keyword}, []string{"body: b"})}}
	hits, err := newTestClient(ms, nil, nil).Search(context.Background(), Query{Text: "b", Mode: ModeLiteral})
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Reasons != nil {
		t.Errorf("reasons should be omitted, got %v", hits[0].Reasons)
	}
}

func TestSearch_ValidationSkipsEngine(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"empty text", Query{Text: "  "}},
		{"bad mode", Query{Text: "x", Mode: "fuzzy"}},
		{"negative limit", Query{Text: "x", Limit: -1}},
		{"bad source type", Query{Text: "x", SourceTypes: []string{"fax"}}},
		{"bad tag logic", Query{Text: "x", TagLogic: "xor"}},
		{"inverted window", Query{Text: "x", Since: time.Now(), Until: time.Now().Add(-time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockSearch{}
			_, err := newTestClient(ms, nil, nil).Search(context.Background(), tt.q)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if ms.got != nil {
				t.Error("engine should not be called on invalid input")
			}
		})
	}
}

func TestSearch_PropagatesEngineError(t *testing.T) {
	ms := &mockSearch{err: fmt.Errorf("probe: %w", domain.ErrVectorUnavailable)}
	_, err := newTestClient(ms, nil, nil).Search(context.Background(), Query{Text: "x"})
	if !errors.Is(err, ErrVectorUnavailable) {
		t.Errorf("expected ErrVectorUnavailable, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	mh := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			healthuc.ComponentContentStore: healthuc.CheckOK,
			healthuc.ComponentVectorIndex:  healthuc.CheckError,
		},
		Reason: "index missing",
	}}
	h := newTestClient(nil, mh, nil).Health(context.Background())
	if h.Healthy() || h.Status != "degraded" || h.Checks["vector_index"] != "error" || h.Reason != "index missing" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(&mockSearch{err: fmt.Errorf("x: %w", domain.ErrStoreUnavailable)}, nil, obs)
	_, _ = c.Search(context.Background(), Query{Text: "x"})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "docintel_sdk_operations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == "store_unavailable" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected operations_total with outcome=store_unavailable")
	}
}

func TestObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatal(err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Errorf("second registration should reuse collectors, got %v", err)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("search", time.Now(), nil)
}

func TestClose_NilSafe(t *testing.T) {
	var c *Client
	c.Close()
	(&Client{}).Close()
}
