package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitescope/internal/model"
)

// Run carries one analysis through the pipeline.
// Steps read the target and fill in the report.
type Run struct {
	// Target is the validated input.
	Target model.Target

	// Report is set by the synthesis step.
	Report *model.Report

	// Performed lists the names of the steps that completed, in order.
	Performed []string

	// Err is the error of the step that stopped the run, if any.
	Err error
}

// NewRun creates a run for target.
func NewRun(target model.Target) *Run {
	return &Run{Target: target}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the run modified by the
// previous ones.
type Step interface {
	// Do executes the step.
	// Returning an error stops the pipeline unless continue-on-error is set.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The first error is still recorded in the run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps are added with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence.
//
// Cancellation is checked before each step, never during one: a step that
// has started always finishes. Callers that need the whole sequence to run
// to completion pass a context from context.WithoutCancel (see Analyze).
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			run.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", run.Target.String(),
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", run.Target.String(),
				"error", err,
			)
			if run.Err == nil {
				run.Err = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}

		run.Performed = append(run.Performed, step.Name())
	}
	return run.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Analyze runs p for target and returns the synthesized report.
// The run is detached from ctx cancellation: once started, every stage
// completes before the report is built.
func Analyze(ctx context.Context, p *Pipeline, target model.Target) (*model.Report, error) {
	run := NewRun(target)
	if err := p.Execute(context.WithoutCancel(ctx), run); err != nil {
		return nil, err
	}
	if run.Report == nil {
		return nil, ErrNoReport
	}
	return run.Report, nil
}
