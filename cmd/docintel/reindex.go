package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/filter"
	"github.com/kailas-cloud/docintel/internal/usecase/reindex"
)

func reindexCommand() *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Embed content records and write their vectors to the index",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Usage: "Concurrent embedding batches (overrides reindex.workers)"},
			&cli.IntFlag{Name: "batch-size", Usage: "Records per embedding call (overrides reindex.batch_size)"},
			&cli.StringSliceFlag{Name: "source-type", Aliases: []string{"s"}, Usage: "Only reindex this source type (repeatable)"},
		},
		Action: reindexAction,
	}
}

func reindexAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	filters, err := reindexFilters(c.StringSlice("source-type"))
	if err != nil {
		return err
	}

	rc := reindex.Config{Workers: cfg.Reindex.Workers, BatchSize: cfg.Reindex.BatchSize}
	if c.IsSet("workers") {
		rc.Workers = c.Int("workers")
	}
	if c.IsSet("batch-size") {
		rc.BatchSize = c.Int("batch-size")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	svc, err := reindex.New(d.records, d.docs, d.index, rc, logger)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	defer svc.Release()

	logger.Info("Reindex started",
		zap.String("vector_driver", cfg.Vector.Driver),
		zap.String("model", cfg.Embedding.Model),
	)
	report, err := svc.Run(ctx, filters)
	_, _ = fmt.Fprintf(c.App.Writer, "indexed=%d failed=%d skipped=%d\n", report.Indexed, report.Failed, report.Skipped)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	if report.Failed > 0 {
		return fmt.Errorf("reindex: %d records failed", report.Failed)
	}
	return nil
}

func reindexFilters(sourceTypes []string) (filter.Filters, error) {
	if len(sourceTypes) == 0 {
		return filter.None(), nil
	}
	sts := make([]content.SourceType, 0, len(sourceTypes))
	for _, s := range sourceTypes {
		st, err := content.ParseSourceType(s)
		if err != nil {
			return filter.Filters{}, fmt.Errorf("source-type: %w: %w", err, domain.ErrValidation)
		}
		sts = append(sts, st)
	}
	f, err := filter.New(time.Time{}, time.Time{}, sts, nil, filter.Or)
	if err != nil {
		return filter.Filters{}, fmt.Errorf("source-type: %w", err)
	}
	return f, nil
}
