package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/config"
	"github.com/kailas-cloud/docintel/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/docintel/internal/db/redis"
	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	logpkg "github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/metrics"
	"github.com/kailas-cloud/docintel/internal/repository/embcache"
	vectorrepo "github.com/kailas-cloud/docintel/internal/repository/vector"
	openaiEmb "github.com/kailas-cloud/docintel/internal/transport/openai"
	availabilityuc "github.com/kailas-cloud/docintel/internal/usecase/availability"
	embeddinguc "github.com/kailas-cloud/docintel/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
	"github.com/kailas-cloud/docintel/internal/usecase/keyword"
	"github.com/kailas-cloud/docintel/internal/usecase/semantic"
	searchuc "github.com/kailas-cloud/docintel/internal/usecase/search"
)

// vectorIndex is what the read and write paths need from a vector backend.
type vectorIndex interface {
	Health(ctx context.Context) error
	Query(ctx context.Context, vector []float32, k int, filters filter.Filters) ([]domain.VectorHit, error)
	Upsert(ctx context.Context, entries []domain.VectorEntry) error
}

// embedder is the full decorator chain surface.
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
	domain.HealthChecker
}

// deps is the composition root shared by every command.
type deps struct {
	cfg     config.Config
	logger  *zap.Logger
	records *postgres.ContentStore
	index   vectorIndex
	docs    embedder
	probe   *availabilityuc.Probe
	engine  *searchuc.Engine
	health  *healthuc.Service
	closers []func()
}

// setup loads config and logger from global flags.
func setup(c *cli.Context) (config.Config, *zap.Logger, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// buildDeps wires stores, lanes and the engine. A vector backend that cannot
// be reached at startup is not fatal: the probe reports it and literal mode still works.
func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{cfg: cfg, logger: logger}

	pg, err := postgres.New(ctx, postgres.Config{DSN: cfg.Database.DSN, MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("content store: %w", err)
	}
	d.closers = append(d.closers, pg.Close)
	d.records = postgres.NewContentStore(pg, cfg.Database.RecordsTable)

	var kv *dbRedis.Store
	switch cfg.Vector.Driver {
	case config.DriverRedis, config.DriverValkey:
		kv, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Vector.Addrs, Password: cfg.Vector.Password})
		if err != nil {
			logger.Warn("Vector store unreachable, semantic search disabled until it recovers",
				zap.String("driver", cfg.Vector.Driver),
				zap.Strings("addrs", cfg.Vector.Addrs),
				zap.Error(err),
			)
			d.index = offlineIndex{err: fmt.Errorf("connect %s: %w", cfg.Vector.Driver, err)}
			break
		}
		d.closers = append(d.closers, kv.Close)
		d.index = vectorrepo.New(kv, vectorrepo.Config{
			IndexName:  cfg.Vector.Index,
			KeyPrefix:  cfg.Vector.KeyPrefix,
			Dimensions: cfg.Embedding.Dimensions,
			HNSW:       vectorrepo.HNSWConfig{M: cfg.Vector.HNSWM, EFConstruct: cfg.Vector.HNSWEFConstruct},
		})
	case config.DriverPGVector:
		d.index = postgres.NewVectorIndex(pg, cfg.Database.EmbeddingsTable, cfg.Database.RecordsTable,
			cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unknown vector driver %q", cfg.Vector.Driver)
	}

	queries := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, kv, logger)
	d.docs = buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, nil, logger)

	d.probe = availabilityuc.New(d.index, availabilityuc.Config{
		Timeout:      config.Millis(cfg.Vector.ProbeTimeoutMs),
		HealthyTTL:   config.Seconds(cfg.Vector.HealthyTTLSec),
		UnhealthyTTL: config.Seconds(cfg.Vector.UnhealthyTTLSec),
	}, logger)

	storeTimeout := config.Millis(cfg.Search.StoreTimeoutMs)
	semLane := semantic.New(queries, d.index, d.records, semantic.Config{
		SimilarityFloor:  cfg.Search.SimilarityFloor,
		EmbeddingTimeout: config.Seconds(cfg.Embedding.TimeoutSec),
		VectorTimeout:    config.Millis(cfg.Vector.QueryTimeoutMs),
		StoreTimeout:     storeTimeout,
	})
	kwLane := keyword.New(d.records, keyword.Config{
		TitleWeight:   cfg.Search.TitleWeight,
		BodyWeight:    cfg.Search.BodyWeight,
		PhraseBonus:   cfg.Search.PhraseBonus,
		StoreTimeout:  storeTimeout,
		Abbreviations: keyword.DefaultAbbreviations().Merge(cfg.Search.Abbreviations),
	})

	d.engine = searchuc.New(d.probe, semLane, kwLane, searchuc.Config{
		TopK:   cfg.Search.TopK,
		Fusion: searchuc.FusionPolicy{AgreementBonus: cfg.Search.AgreementBonus},
	})
	d.health = healthuc.New(d.records, d.probe, queries)

	logger.Debug("Dependencies wired",
		zap.String("vector_driver", cfg.Vector.Driver),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)
	return d, nil
}

// Close releases connections in reverse order.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// kv may be nil, which disables the query cache.
func buildEmbedder(cfg config.EmbeddingConfig, instruction string, kv *dbRedis.Store, logger *zap.Logger) embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var inner domain.Embedder = base
	if kv != nil && cfg.CacheTTLSec > 0 {
		inner = embcache.New(base, kv, embcache.Config{
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			TTL:        config.Seconds(cfg.CacheTTLSec),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(inner, cfg.Provider, cfg.Model, logger).
		WithMaxBatch(cfg.MaxBatch)

	// Instruction prefix (outermost, so the cache key includes the instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(instrumented, instruction)
	}
	return instrumented
}

// offlineIndex stands in for a vector backend that could not be reached at startup.
type offlineIndex struct {
	err error
}

func (o offlineIndex) Health(context.Context) error { return o.err }

func (o offlineIndex) Query(context.Context, []float32, int, filter.Filters) ([]domain.VectorHit, error) {
	return nil, o.err
}

func (o offlineIndex) Upsert(context.Context, []domain.VectorEntry) error { return o.err }
