package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nao1215/sitescope/internal/codepanel"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
)

// Recorder stores finished reports, for example in the history database.
type Recorder interface {
	Record(ctx context.Context, report *model.Report) error
}

// Env holds the effects available to handlers.
// A nil Clipboard or Sink makes the corresponding action fail with an error
// notification.
type Env struct {
	Clipboard codepanel.Clipboard
	Sink      codepanel.Sink
	Recorder  Recorder
	Logger    *slog.Logger
}

// App dispatches events to handlers and runs analyses.
type App struct {
	synth    pipeline.Synthesizer
	analysis []pipeline.AnalysisOption
	env      Env
	handlers map[EventKind]Handler
}

// Option configures an App.
type Option func(*App)

// WithAnalysisOptions sets options applied to every analysis pipeline.
func WithAnalysisOptions(opts ...pipeline.AnalysisOption) Option {
	return func(a *App) {
		a.analysis = append(a.analysis, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.env.Logger = logger
		}
	}
}

// WithClipboard sets the clipboard used by the copy action.
func WithClipboard(cb codepanel.Clipboard) Option {
	return func(a *App) {
		a.env.Clipboard = cb
	}
}

// WithSink sets the sink used by the download action.
func WithSink(sink codepanel.Sink) Option {
	return func(a *App) {
		a.env.Sink = sink
	}
}

// WithRecorder sets the recorder that stores every successful report.
func WithRecorder(r Recorder) Option {
	return func(a *App) {
		a.env.Recorder = r
	}
}

// New creates an App that builds reports with s.
func New(s pipeline.Synthesizer, opts ...Option) *App {
	a := &App{
		synth: s,
		env: Env{
			Clipboard: unavailableClipboard{},
			Sink:      unavailableSink{},
			Logger:    slog.Default(),
		},
		handlers: defaultHandlers(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle replaces the handler of kind.
func (a *App) Handle(kind EventKind, h Handler) {
	a.handlers[kind] = h
}

// WithEnv returns a copy of a that uses env for its effects.
// Handlers are shared with a. A nil logger in env keeps the current one.
func (a *App) WithEnv(env Env) *App {
	cp := *a
	if env.Logger == nil {
		env.Logger = a.env.Logger
	}
	if env.Clipboard == nil {
		env.Clipboard = unavailableClipboard{}
	}
	if env.Sink == nil {
		env.Sink = unavailableSink{}
	}
	cp.env = env
	return &cp
}

// Env returns the effects of a.
func (a *App) Env() Env {
	return a.env
}

// Dispatch applies e to s and returns the next state.
// The returned state is always usable, even when an error is returned.
func (a *App) Dispatch(ctx context.Context, s State, e Event) (State, error) {
	h, ok := a.handlers[e.Kind]
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownEvent, e.Kind)
	}
	next, err := h(ctx, a.env, s, e)
	if err != nil {
		a.env.Logger.Debug("event handled with error",
			"event", e.Kind.String(),
			"error", err,
		)
	}
	return next, err
}

// RunAnalysis runs the analysis of target for generation gen.
// Progress events are passed to emit while the stages run; the returned
// event carries the result. emit may be nil.
func (a *App) RunAnalysis(ctx context.Context, gen uint64, target model.Target, emit func(Event)) Event {
	opts := slices.Clone(a.analysis)
	opts = append(opts, pipeline.WithAnalysisLogger(a.env.Logger))
	if emit != nil {
		opts = append(opts, pipeline.WithObservers(pipeline.ObserverFunc(func(p pipeline.Progress) {
			emit(Event{Kind: EventProgress, Generation: gen, Progress: p})
		})))
	}

	p, _ := pipeline.NewAnalysisPipeline(a.synth, opts...)
	report, err := pipeline.Analyze(ctx, p, target)
	if err != nil {
		a.env.Logger.Error("analysis failed",
			"target", target.String(),
			"error", err,
		)
	}
	return Event{Kind: EventAnalysisDone, Generation: gen, Report: report, Err: err}
}

// Analyze submits input and runs the analysis to completion synchronously.
// It is the terminal flow: submit, run, apply the result.
func (a *App) Analyze(ctx context.Context, s State, input string, emit func(Event)) (State, error) {
	s, err := a.Dispatch(ctx, s, Submit(input))
	if err != nil {
		return s, err
	}
	done := a.RunAnalysis(ctx, s.Generation, s.Target, emit)
	return a.Dispatch(ctx, s, done)
}

type unavailableClipboard struct{}

func (unavailableClipboard) WriteText(context.Context, string) error {
	return codepanel.ErrNotTerminal
}

type unavailableSink struct{}

func (unavailableSink) Save(context.Context, codepanel.File) error {
	return ErrNoSink
}
