// Package dispatcher fans scrape runs out over the configured seeds.
// Each seed gets its own run ID, its own visited registry, and its own
// engine; seeds never share traversal state.
package dispatcher

import (
	"context"
	"time"

	guuid "github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitehound/sitehound/internal/crawler"
	idgen "github.com/sitehound/sitehound/internal/id/uuid"
	"github.com/sitehound/sitehound/internal/progress"
	"github.com/sitehound/sitehound/internal/publisher"
)

// EngineFactory builds a fresh engine for one run. The dispatcher calls
// it once per seed so each run carries its own ID.
type EngineFactory func(runID guuid.UUID) *crawler.Engine

// Dispatcher runs the configured seeds concurrently, bounded by
// Concurrency, and reports each run's outcome.
type Dispatcher struct {
	cfg         crawler.Config
	newEngine   EngineFactory
	emitter     progress.Emitter
	pub         publisher.Publisher
	topic       string
	ids         idgen.Generator
	concurrency int
	logger      *zap.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithEmitter publishes run lifecycle events.
func WithEmitter(emitter progress.Emitter) Option {
	return func(d *Dispatcher) { d.emitter = emitter }
}

// WithPublisher announces run summaries on the topic.
func WithPublisher(pub publisher.Publisher, topic string) Option {
	return func(d *Dispatcher) {
		d.pub = pub
		d.topic = topic
	}
}

// WithConcurrency bounds the number of simultaneous runs.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// New creates a Dispatcher. By default runs execute one at a time.
func New(cfg crawler.Config, newEngine EngineFactory, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		cfg:         cfg,
		newEngine:   newEngine,
		concurrency: 1,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run scrapes every configured seed and blocks until all runs finish or
// the context is canceled. A failed run does not cancel its siblings;
// the first error is returned after all runs complete.
func (d *Dispatcher) Run(ctx context.Context) error {
	g := &errgroup.Group{}
	g.SetLimit(d.concurrency)
	for _, seed := range d.cfg.Seeds {
		g.Go(func() error {
			return d.runSeed(ctx, seed)
		})
	}
	return g.Wait()
}

func (d *Dispatcher) runSeed(ctx context.Context, seed string) error {
	runID := d.ids.NewID()
	start := time.Now()
	d.logger.Info("run started",
		zap.String("run_id", runID.String()), zap.String("seed", seed))
	d.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		TS:    start.UTC(),
		Stage: progress.StageRunStart,
		URL:   seed,
	})

	engine := d.newEngine(runID)
	err := engine.RecScrape(ctx, seed, crawler.NewVisitedSet(), d.cfg.TargetPhrase)
	elapsed := time.Since(start)

	summary := publisher.RunSummary{
		RunID:      runID.String(),
		Seed:       seed,
		Status:     "success",
		DurationMs: elapsed.Milliseconds(),
	}
	stage := progress.StageRunDone
	if err != nil {
		summary.Status = "error"
		summary.Error = err.Error()
		stage = progress.StageRunError
		d.logger.Error("run failed",
			zap.String("run_id", runID.String()), zap.String("seed", seed), zap.Error(err))
	} else {
		d.logger.Info("run finished",
			zap.String("run_id", runID.String()),
			zap.String("seed", seed),
			zap.Duration("duration", elapsed))
	}
	d.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		TS:    time.Now().UTC(),
		Stage: stage,
		URL:   seed,
		Dur:   elapsed,
	})
	d.announce(ctx, summary)
	return err
}

func (d *Dispatcher) emit(evt progress.Event) {
	if d.emitter == nil {
		return
	}
	d.emitter.Emit(evt)
}

func (d *Dispatcher) announce(ctx context.Context, summary publisher.RunSummary) {
	if d.pub == nil {
		return
	}
	if _, err := d.pub.Publish(ctx, d.topic, summary); err != nil {
		d.logger.Warn("failed to publish run summary",
			zap.String("run_id", summary.RunID), zap.Error(err))
	}
}
