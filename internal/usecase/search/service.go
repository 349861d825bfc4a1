package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docintel/internal/domain"
	domavail "github.com/kailas-cloud/docintel/internal/domain/availability"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	"github.com/kailas-cloud/docintel/internal/logger"
	"github.com/kailas-cloud/docintel/internal/metrics"
)

// DefaultTopK is the number of nearest neighbours requested from the index.
const DefaultTopK = 50

// Phase is a step of one query execution.
type Phase string

// Query phases.
const (
	PhaseReceived     Phase = "received"
	PhaseProbing      Phase = "probing"
	PhaseLanesRunning Phase = "lanes_running"
	PhaseFusing       Phase = "fusing"
	PhaseCompleted    Phase = "completed"
	PhaseFailedFast   Phase = "failed_fast"
)

// Config tunes the engine.
type Config struct {
	TopK   int
	Fusion FusionPolicy
}

// Engine runs one query through probe, lanes and fusion.
type Engine struct {
	probe    Prober
	semantic SemanticLane
	keyword  KeywordLane
	cfg      Config
}

// New creates an Engine. A zero TopK takes DefaultTopK.
func New(probe Prober, semantic SemanticLane, keyword KeywordLane, cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Engine{probe: probe, semantic: semantic, keyword: keyword, cfg: cfg}
}

// Search executes req. Every returned error wraps exactly one domain error
// sentinel; an empty result is never used to signal failure.
//
// hybrid fails fast with ErrVectorUnavailable when the probe is red, before
// the keyword lane runs. literal never touches the probe or the vector index.
func (e *Engine) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	start := time.Now()
	ctx, log := logger.With(ctx, zap.String("mode", string(req.Mode())))
	ex := &execution{log: log}
	ex.enter(PhaseReceived)

	results, err := e.run(ctx, ex, req)

	outcome := string(PhaseCompleted)
	switch {
	case ex.phase == PhaseFailedFast:
		outcome = string(PhaseFailedFast)
	case err != nil:
		outcome = string(domain.KindOf(err))
	default:
		ex.enter(PhaseCompleted)
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), outcome).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())
	if err != nil {
		ex.log.Debug("Search failed", zap.String("phase", string(ex.phase)), zap.Error(err))
		return nil, err
	}
	metrics.SearchResults.WithLabelValues(string(req.Mode())).Observe(float64(len(results)))
	return results, nil
}

func (e *Engine) run(ctx context.Context, ex *execution, req *request.Request) ([]result.Fused, error) {
	if req.Mode() == mode.Literal {
		ex.enter(PhaseLanesRunning)
		kw, err := e.keyword.SearchLiteral(ctx, req.Query(), req.Filters())
		if err != nil {
			return nil, fmt.Errorf("literal search: %w", err)
		}
		ex.enter(PhaseFusing)
		return Fuse(nil, kw, req.Limit(), e.cfg.Fusion), nil
	}
	if !req.Mode().IsValid() {
		return nil, fmt.Errorf("unsupported search mode %q: %w", req.Mode(), domain.ErrValidation)
	}

	ex.enter(PhaseProbing)
	state := e.probe.Check(ctx)
	if !state.Available() {
		ex.enter(PhaseFailedFast)
		return nil, fmt.Errorf("%w: %s", domain.ErrVectorUnavailable, unavailableReason(state))
	}

	ex.enter(PhaseLanesRunning)
	k := max(e.cfg.TopK, req.Limit())

	var sem, kw []match.Scored
	if req.Mode() == mode.SemanticOnly {
		var err error
		sem, err = e.semantic.Search(ctx, state, req.Query(), req.Filters(), k)
		if err != nil {
			e.invalidateOnVectorFault(err)
			return nil, fmt.Errorf("semantic search: %w", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sem, err = e.semantic.Search(gctx, state, req.Query(), req.Filters(), k)
			return err
		})
		g.Go(func() error {
			var err error
			kw, err = e.keyword.Search(gctx, req.Query(), req.Filters())
			return err
		})
		if err := g.Wait(); err != nil {
			e.invalidateOnVectorFault(err)
			return nil, fmt.Errorf("hybrid search: %w", err)
		}
	}

	ex.enter(PhaseFusing)
	return Fuse(sem, kw, req.Limit(), e.cfg.Fusion), nil
}

// invalidateOnVectorFault drops a green probe result when the vector index
// failed anyway, so the next query re-probes. Embedding faults leave it alone.
func (e *Engine) invalidateOnVectorFault(err error) {
	if errors.Is(err, domain.ErrVectorUnavailable) {
		e.probe.Invalidate()
	}
}

func unavailableReason(s domavail.State) string {
	if s.Reason() != "" {
		return s.Reason()
	}
	return "vector index status " + string(s.Status())
}

type execution struct {
	log   *zap.Logger
	phase Phase
}

func (x *execution) enter(p Phase) {
	x.phase = p
	x.log.Debug("Search phase", zap.String("phase", string(p)))
}
