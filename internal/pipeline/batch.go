package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitescope/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of analyses a batch runs at once.
const DefaultConcurrency = 4

// BatchProcessor analyzes several targets concurrently.
// Each target gets its own pipeline from the factory, so runs share no
// mutable state.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Values below 1 keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
// pipelineFactory is called once per target.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch analyzes targets and returns one run per target, in input
// order. Failed analyses keep their error in Run.Err and do not stop the
// others. Targets that had not started when ctx was cancelled are left nil
// and the context error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []model.Target) ([]*Run, error) {
	runs := make([]*Run, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(run *Run, index int) {
		runs[index] = run
	})
	return runs, err
}

// ProcessBatchWithCallback analyzes targets and calls callback for each
// completed run. The callback is called from the goroutine that ran the
// analysis and must be safe for concurrent use; writing to distinct slice
// indexes is.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []model.Target,
	callback func(run *Run, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analyzing target",
				"target", target.String(),
				"index", i+1,
				"total", len(targets),
			)

			run := NewRun(target)
			// A started analysis always runs to completion.
			if err := bp.pipelineFactory().Execute(context.WithoutCancel(ctx), run); err != nil {
				bp.logger.Warn("analysis failed",
					"target", target.String(),
					"error", err,
				)
			}
			callback(run, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch analysis complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
