// Package reindex is the write path that keeps the vector index in sync with
// the content store. The query engine never calls it.
package reindex

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/metrics"
)

// DefaultBatchSize is the number of records embedded per provider call.
const DefaultBatchSize = 32

// Config controls reindex concurrency.
type Config struct {
	// Workers is the ants pool size. Default runtime.NumCPU() / 2, minimum 1.
	Workers   int
	BatchSize int
}

// Report summarizes a run.
type Report struct {
	Indexed int
	Failed  int
	Skipped int
}

// Service embeds records and upserts their vectors on a bounded worker pool.
type Service struct {
	source    RecordSource
	embedder  Embedder
	writer    VectorWriter
	pool      *ants.Pool
	batchSize int
	logger    *zap.Logger
}

// New creates a Service. Call Release when done.
func New(source RecordSource, embedder Embedder, writer VectorWriter, cfg Config, logger *zap.Logger) (*Service, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = max(1, runtime.NumCPU()/2)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Service{
		source:    source,
		embedder:  embedder,
		writer:    writer,
		pool:      pool,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Run indexes every record matching filters. Batch failures are counted and
// logged; a source failure or cancellation stops the run after in-flight
// batches finish and is returned together with the partial report.
func (s *Service) Run(ctx context.Context, filters filter.Filters) (Report, error) {
	if ie, ok := s.writer.(IndexEnsurer); ok {
		if err := ie.EnsureIndex(ctx); err != nil {
			return Report{}, fmt.Errorf("ensure index: %w", err)
		}
	}

	var (
		wg                       sync.WaitGroup
		indexed, failed, skipped atomic.Int64
		runErr                   error
	)

	submit := func(batch []content.Record) error {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			n := len(batch)
			if err := s.indexBatch(ctx, batch); err != nil {
				failed.Add(int64(n))
				metrics.ReindexRecordsTotal.WithLabelValues("failed").Add(float64(n))
				s.logger.Error("Reindex batch failed",
					zap.String("first_id", batch[0].ID()),
					zap.Int("size", n),
					zap.Error(err),
				)
				return
			}
			indexed.Add(int64(n))
			metrics.ReindexRecordsTotal.WithLabelValues("indexed").Add(float64(n))
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submit batch: %w", err)
		}
		return nil
	}

	batch := make([]content.Record, 0, s.batchSize)
	for rec, err := range s.source.Query(ctx, filters, nil) {
		if err != nil {
			runErr = fmt.Errorf("read records: %w", err)
			break
		}
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if rec.EmbeddingText() == "" {
			skipped.Add(1)
			metrics.ReindexRecordsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		batch = append(batch, rec)
		if len(batch) == s.batchSize {
			if runErr = submit(batch); runErr != nil {
				break
			}
			batch = make([]content.Record, 0, s.batchSize)
		}
	}
	if runErr == nil && len(batch) > 0 {
		runErr = submit(batch)
	}

	wg.Wait()

	report := Report{Indexed: int(indexed.Load()), Failed: int(failed.Load()), Skipped: int(skipped.Load())}
	s.logger.Info("Reindex finished",
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Bool("interrupted", runErr != nil),
	)
	return report, runErr
}

func (s *Service) indexBatch(ctx context.Context, batch []content.Record) error {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.EmbeddingText()
	}

	res, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d records", len(res.Embeddings), len(batch))
	}

	entries := make([]domain.VectorEntry, len(batch))
	for i, rec := range batch {
		entries[i] = domain.VectorEntry{Record: rec, Vector: res.Embeddings[i]}
	}
	if err := s.writer.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
