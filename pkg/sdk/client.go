package docintel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/docintel/internal/db/redis"
	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	vectorrepo "github.com/kailas-cloud/docintel/internal/repository/vector"
	availabilityuc "github.com/kailas-cloud/docintel/internal/usecase/availability"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
	"github.com/kailas-cloud/docintel/internal/usecase/keyword"
	"github.com/kailas-cloud/docintel/internal/usecase/semantic"
	searchuc "github.com/kailas-cloud/docintel/internal/usecase/search"
)

const (
	defaultDimensions  = 1024
	defaultHNSWM       = 16
	defaultHNSWEF      = 200
	defaultIndexName   = domain.KeyPrefix + "content:idx"
	defaultVectorKeys  = domain.KeyPrefix + "vec:"
	defaultRecords     = "content_records"
	defaultEmbeddings  = "content_embeddings"
	defaultPoolConns   = 4
	defaultFusionTopK  = 50
	pgvectorDriverName = "pgvector"
)

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// recordStore is what both lanes and the health check read from the content store.
type recordStore interface {
	semantic.RecordReader
	keyword.ContentStore
	healthuc.StorePinger
}

// Client is the entry point to the docintel SDK.
type Client struct {
	search  searchUseCase
	health  healthUseCase
	obs     *observer
	closers []func()
}

// New creates a Client. WithPostgres is required; the vector backend defaults to pgvector.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, fmt.Errorf("docintel: postgres dsn is required (use WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	if err := c.wire(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		driver:           pgvectorDriverName,
		vectorDimensions: defaultDimensions,
		hnswM:            defaultHNSWM,
		hnswEFConstruct:  defaultHNSWEF,
		similarityFloor:  semantic.DefaultSimilarityFloor,
	}
}

func (c *Client) wire(ctx context.Context, cfg *clientConfig) error {
	pg, err := postgres.New(ctx, postgres.Config{DSN: cfg.dsn, MaxConns: defaultPoolConns})
	if err != nil {
		return fmt.Errorf("docintel: connect postgres: %w", err)
	}
	c.closers = append(c.closers, pg.Close)
	records := postgres.NewContentStore(pg, defaultRecords)

	var index semantic.VectorIndex
	var checker availabilityuc.HealthChecker
	if cfg.driver == pgvectorDriverName {
		vi := postgres.NewVectorIndex(pg, defaultEmbeddings, defaultRecords, cfg.vectorDimensions)
		index, checker = vi, vi
	} else {
		kv, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return fmt.Errorf("docintel: connect %s: %w", cfg.driver, err)
		}
		c.closers = append(c.closers, kv.Close)
		repo := vectorrepo.New(kv, vectorrepo.Config{
			IndexName:  defaultIndexName,
			KeyPrefix:  defaultVectorKeys,
			Dimensions: cfg.vectorDimensions,
			HNSW:       vectorrepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct},
		})
		index, checker = repo, repo
	}

	c.search, c.health = buildEngine(cfg, records, index, checker)

	if cfg.logger != nil {
		cfg.logger.Debug("docintel client ready",
			slog.String("vector_driver", cfg.driver),
			slog.Int("dimensions", cfg.vectorDimensions),
		)
	}
	return nil
}

// buildEngine assembles the probe, both lanes and the engine over the given backends.
func buildEngine(
	cfg *clientConfig, records recordStore, index semantic.VectorIndex, checker availabilityuc.HealthChecker,
) (*searchuc.Engine, *healthuc.Service) {
	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.queryInstruction != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.queryInstruction)
	}

	probe := availabilityuc.New(checker, availabilityuc.Config{}, zap.NewNop())
	semLane := semantic.New(emb, index, records, semantic.Config{SimilarityFloor: cfg.similarityFloor})
	kwLane := keyword.New(records, keyword.Config{
		Abbreviations: keyword.DefaultAbbreviations().Merge(cfg.abbreviations),
	})

	engine := searchuc.New(probe, semLane, kwLane, searchuc.Config{
		TopK:   defaultFusionTopK,
		Fusion: searchuc.DefaultFusionPolicy(),
	})
	return engine, healthuc.New(records, probe, nil)
}

// Search runs one query and returns the fused ranking.
func (c *Client) Search(ctx context.Context, q Query) (_ []Hit, err error) {
	defer func(start time.Time) { c.obs.observe("search", start, err) }(time.Now())

	req, err := q.toRequest()
	if err != nil {
		return nil, err
	}
	fused, err := c.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("docintel: search: %w", err)
	}
	return toHits(fused, q.Why), nil
}

// Close releases the underlying connections.
func (c *Client) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (q Query) toRequest() (request.Request, error) {
	m, ok := mode.Parse(string(q.Mode))
	if !ok {
		return request.Request{}, fmt.Errorf("docintel: unknown mode %q: %w", q.Mode, domain.ErrValidation)
	}

	sourceTypes := make([]content.SourceType, 0, len(q.SourceTypes))
	for _, s := range q.SourceTypes {
		st, err := content.ParseSourceType(s)
		if err != nil {
			return request.Request{}, fmt.Errorf("docintel: source type: %w: %w", domain.ErrValidation, err)
		}
		sourceTypes = append(sourceTypes, st)
	}

	logic, err := filter.ParseTagLogic(string(q.TagLogic))
	if err != nil {
		return request.Request{}, fmt.Errorf("docintel: tag logic: %w", err)
	}
	filters, err := filter.New(q.Since, q.Until, sourceTypes, q.Tags, logic)
	if err != nil {
		return request.Request{}, fmt.Errorf("docintel: filters: %w", err)
	}

	limit := q.Limit
	if limit == 0 {
		limit = request.DefaultLimit
	}
	req, err := request.New(q.Text, m, filters, limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("docintel: %w", err)
	}
	return req, nil
}

func toHits(fused []result.Fused, why bool) []Hit {
	hits := make([]Hit, 0, len(fused))
	for _, f := range fused {
		rec := f.Record()
		lanes := make([]string, 0, len(f.Lanes()))
		for _, l := range f.Lanes() {
			lanes = append(lanes, string(l))
		}
		h := Hit{
			ID:         rec.ID(),
			SourceType: string(rec.SourceType()),
			Title:      rec.Title(),
			Body:       rec.Body(),
			CreatedAt:  rec.CreatedAt(),
			Tags:       rec.Tags(),
			Score:      f.Score(),
			Lanes:      lanes,
		}
		if why {
			h.Reasons = append([]string(nil), f.Reasons()...)
		}
		hits = append(hits, h)
	}
	return hits
}
