package availability

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domavail "github.com/kailas-cloud/docintel/internal/domain/availability"
	"github.com/kailas-cloud/docintel/internal/metrics"
)

// Probe defaults.
const (
	DefaultTimeout      = 500 * time.Millisecond
	DefaultHealthyTTL   = 30 * time.Second
	DefaultUnhealthyTTL = 5 * time.Second
)

var errProbeTimeout = errors.New("probe timed out")

// Config tunes the probe. Zero values take the defaults above.
type Config struct {
	Timeout      time.Duration
	HealthyTTL   time.Duration
	UnhealthyTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HealthyTTL <= 0 {
		c.HealthyTTL = DefaultHealthyTTL
	}
	if c.UnhealthyTTL <= 0 {
		c.UnhealthyTTL = DefaultUnhealthyTTL
	}
	return c
}

// Probe caches vector index availability. The state is swapped whole through
// an atomic pointer; concurrent refreshes share one in-flight health call.
type Probe struct {
	checker HealthChecker
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	state atomic.Pointer[domavail.State]
	group singleflight.Group
}

// New creates a Probe starting in the unknown state.
func New(checker HealthChecker, cfg Config, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Probe{
		checker: checker,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		now:     time.Now,
	}
	p.Invalidate()
	return p
}

// Check returns the cached state while fresh, otherwise probes the index.
// It never fails: unavailability is reported as data.
func (p *Probe) Check(ctx context.Context) domavail.State {
	if s := p.state.Load(); !s.Expired(p.now()) {
		return *s
	}

	v, _, _ := p.group.Do("probe", func() (any, error) {
		// Another caller may have refreshed while we waited to enter.
		if s := p.state.Load(); !s.Expired(p.now()) {
			return *s, nil
		}
		s := p.probe(ctx)
		p.state.Store(&s)
		return s, nil
	})
	return v.(domavail.State) //nolint:forcetypeassert // only State is stored
}

// Current returns the cached state without probing.
func (p *Probe) Current() domavail.State {
	return *p.state.Load()
}

// Invalidate forces the next Check to probe.
func (p *Probe) Invalidate() {
	s := domavail.NewUnknown()
	p.state.Store(&s)
}

func (p *Probe) probe(ctx context.Context) domavail.State {
	// Detached from the caller: the result is shared by every waiter.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()

	err := p.callChecker(ctx)
	now := p.now()
	if err != nil {
		p.logger.Warn("Vector index unavailable",
			zap.Error(err),
			zap.Duration("retry_after", p.cfg.UnhealthyTTL),
		)
		metrics.VectorAvailable.Set(0)
		metrics.ProbeTotal.WithLabelValues(string(domavail.Unavailable)).Inc()
		return domavail.NewUnavailable(now, p.cfg.UnhealthyTTL, err.Error())
	}

	metrics.VectorAvailable.Set(1)
	metrics.ProbeTotal.WithLabelValues(string(domavail.Available)).Inc()
	return domavail.NewAvailable(now, p.cfg.HealthyTTL)
}

// callChecker bounds the health call by ctx even when the checker ignores it,
// and turns a checker panic into an ordinary failure.
func (p *Probe) callChecker(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("health check panicked: %v", r)
			}
		}()
		done <- p.checker.Health(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errProbeTimeout
	}
}
