package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/sitescope/internal/model"
)

// StageStep shows one progress stage: it becomes active, waits a fixed
// delay and deactivates again. It does no work on the run itself.
type StageStep struct {
	stage   Stage
	delay   time.Duration
	clock   Clock
	tracker *Tracker
}

// NewStageStep creates the step for stage.
func NewStageStep(stage Stage, tracker *Tracker, clock Clock, delay time.Duration) *StageStep {
	return &StageStep{stage: stage, delay: delay, clock: clock, tracker: tracker}
}

// Name returns the step name.
func (s *StageStep) Name() string {
	return "stage_" + s.stage.String()
}

// Do activates the stage for the configured delay.
func (s *StageStep) Do(ctx context.Context, _ *Run) error {
	if err := s.tracker.Activate(s.stage); err != nil {
		return err
	}
	sleepErr := s.clock.Sleep(ctx, s.delay)
	if err := s.tracker.Finish(s.stage); err != nil {
		return err
	}
	return sleepErr
}

// Synthesizer builds a report for a target.
// It is implemented by synth.Synthesizer.
type Synthesizer interface {
	Synthesize(target model.Target) (*model.Report, error)
}

// SynthesizeStep generates the report once every stage has finished.
type SynthesizeStep struct {
	synth  Synthesizer
	logger *slog.Logger
}

// NewSynthesizeStep creates the synthesis step.
func NewSynthesizeStep(s Synthesizer, logger *slog.Logger) *SynthesizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthesizeStep{synth: s, logger: logger}
}

// Name returns the step name.
func (s *SynthesizeStep) Name() string {
	return "synthesize"
}

// Do generates the report and stores it in the run.
func (s *SynthesizeStep) Do(_ context.Context, run *Run) error {
	report, err := s.synth.Synthesize(run.Target)
	if err != nil {
		return fmt.Errorf("synthesize %s: %w", run.Target.Hostname(), err)
	}
	run.Report = report
	s.logger.Debug("report ready",
		"target", run.Target.String(),
		"items", report.Summarize().Total,
	)
	return nil
}

// AnalysisConfig holds the settings of the analysis pipeline.
type AnalysisConfig struct {
	// StageDelay is how long each progress stage stays active.
	StageDelay time.Duration

	// Clock drives the stage delays.
	Clock Clock

	// Observers are notified of every progress change.
	Observers []Observer

	// Logger is passed to the pipeline and its steps.
	Logger *slog.Logger
}

// AnalysisOption configures the analysis pipeline.
type AnalysisOption func(*AnalysisConfig)

// WithStageDelay sets the delay of each stage.
// Negative delays are treated as zero.
func WithStageDelay(d time.Duration) AnalysisOption {
	return func(c *AnalysisConfig) {
		c.StageDelay = max(d, 0)
	}
}

// WithClock sets the clock used for the stage delays.
func WithClock(clock Clock) AnalysisOption {
	return func(c *AnalysisConfig) {
		if clock != nil {
			c.Clock = clock
		}
	}
}

// WithObservers adds progress observers.
func WithObservers(observers ...Observer) AnalysisOption {
	return func(c *AnalysisConfig) {
		c.Observers = append(c.Observers, observers...)
	}
}

// WithAnalysisLogger sets the logger of the pipeline and its steps.
func WithAnalysisLogger(logger *slog.Logger) AnalysisOption {
	return func(c *AnalysisConfig) {
		c.Logger = logger
	}
}

// NewAnalysisPipeline builds the analysis pipeline: the five progress
// stages in order, followed by report synthesis.
// It returns the pipeline and the tracker that exposes the active stage.
// A pipeline is good for a single run; build a new one for every analysis.
func NewAnalysisPipeline(s Synthesizer, opts ...AnalysisOption) (*Pipeline, *Tracker) {
	cfg := &AnalysisConfig{
		StageDelay: DefaultStageDelay,
		Clock:      RealClock{},
		Logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracker := NewTracker(cfg.Observers...)
	p := New(WithLogger(cfg.Logger))
	for _, stage := range Stages {
		p.AddStep(NewStageStep(stage, tracker, cfg.Clock, cfg.StageDelay))
	}
	p.AddStep(NewSynthesizeStep(s, cfg.Logger))
	return p, tracker
}
