package app

import (
	"context"
	"fmt"

	"github.com/nao1215/sitescope/internal/codepanel"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
)

// Handler computes the next state for an event.
// Handlers never fail the session: user-facing errors are folded into the
// returned state (inline message or notification) and also returned for
// logging.
type Handler func(ctx context.Context, env Env, s State, e Event) (State, error)

// defaultHandlers returns the handler registry used by New.
func defaultHandlers() map[EventKind]Handler {
	return map[EventKind]Handler{
		EventSubmit:       handleSubmit,
		EventRetry:        handleRetry,
		EventProgress:     handleProgress,
		EventAnalysisDone: handleAnalysisDone,
		EventSelectTab:    handleSelectTab,
		EventSelectCode:   handleSelectCode,
		EventCopy:         handleCopy,
		EventDownload:     handleDownload,
		EventFormat:       handleFormat,
		EventDismiss:      handleDismiss,
	}
}

// handleSubmit records and validates the input. Invalid input switches to
// the error phase and leaves the report, tabs and any running analysis as
// they were; valid input starts a new generation in the loading phase.
func handleSubmit(_ context.Context, env Env, s State, e Event) (State, error) {
	s.Input = e.Input
	target, err := model.ParseTarget(e.Input)
	if err != nil {
		s.Phase = PhaseError
		s.Message = UserMessage(err)
		return s, err
	}

	s.Target = target
	s.Generation++
	s.Running = true
	s.Phase = PhaseLoading
	s.Message = ""
	s.Progress = pipeline.Progress{Total: len(pipeline.Stages)}

	env.Logger.Debug("analysis submitted",
		"target", target.String(),
		"generation", s.Generation,
	)
	return s, nil
}

func handleRetry(ctx context.Context, env Env, s State, _ Event) (State, error) {
	return handleSubmit(ctx, env, s, Submit(s.Input))
}

func handleProgress(_ context.Context, _ Env, s State, e Event) (State, error) {
	if e.Generation != s.Generation || !s.Running {
		return s, nil
	}
	s.Progress = e.Progress
	return s, nil
}

// handleAnalysisDone applies the result of the newest generation, even
// when an invalid submission arrived while it was running. Results of
// superseded submissions are dropped.
func handleAnalysisDone(ctx context.Context, env Env, s State, e Event) (State, error) {
	if e.Generation != s.Generation || !s.Running {
		env.Logger.Debug("discarding stale analysis result",
			"generation", e.Generation,
			"current", s.Generation,
		)
		return s, ErrStaleResult
	}
	s.Running = false

	if e.Err != nil || e.Report == nil {
		err := e.Err
		if err == nil {
			err = pipeline.ErrNoReport
		}
		s.Phase = PhaseError
		s.Message = MessageAnalysisFailed
		return s, err
	}

	s.Report = e.Report
	s.Code = e.Report.Code.Get(s.CodeTabs.Active())
	s.Phase = PhaseResults
	s.Message = ""

	if env.Recorder != nil {
		if err := env.Recorder.Record(ctx, e.Report); err != nil {
			env.Logger.Warn("failed to record report", "error", err)
			s.Notification = &codepanel.Notification{Kind: codepanel.KindInfo, Message: "Report shown but not saved to history"}
		}
	}
	return s, nil
}

func handleSelectTab(_ context.Context, _ Env, s State, e Event) (State, error) {
	tabs := s.Tabs
	if _, err := tabs.Select(e.Tab); err != nil {
		s.Notification = &codepanel.Notification{Kind: codepanel.KindError, Message: UserMessage(err)}
		return s, err
	}
	s.Tabs = tabs
	return s, nil
}

// handleSelectCode switches the code tab. With a report present, the
// displayed code is replaced by the report sample of the new type, dropping
// any formatting applied earlier.
func handleSelectCode(_ context.Context, _ Env, s State, e Event) (State, error) {
	tabs := s.CodeTabs
	if _, err := tabs.Select(e.CodeType); err != nil {
		s.Notification = &codepanel.Notification{Kind: codepanel.KindError, Message: UserMessage(fmt.Errorf("%w: %w", model.ErrUnknownCodeType, err))}
		return s, err
	}
	s.CodeTabs = tabs
	if s.Report != nil {
		s.Code = s.Report.Code.Get(tabs.Active())
	}
	return s, nil
}

func handleCopy(ctx context.Context, env Env, s State, _ Event) (State, error) {
	if !s.HasReport() {
		return noReport(s)
	}
	n := codepanel.Copy(ctx, env.Clipboard, s.Code)
	s.Notification = &n
	return s, nil
}

func handleDownload(ctx context.Context, env Env, s State, _ Event) (State, error) {
	if !s.HasReport() {
		return noReport(s)
	}
	file, err := codepanel.Download(ctx, env.Sink, s.CodeTabs.Active(), s.Code)
	if err != nil {
		s.Notification = &codepanel.Notification{Kind: codepanel.KindError, Message: "Failed to download code"}
		return s, err
	}
	env.Logger.Debug("code downloaded", "file", file.Name, "bytes", len(file.Content))
	s.Notification = &codepanel.Notification{Kind: codepanel.KindSuccess, Message: "Downloaded " + file.Name}
	return s, nil
}

func handleFormat(_ context.Context, _ Env, s State, _ Event) (State, error) {
	if !s.HasReport() {
		return noReport(s)
	}
	s.Code = codepanel.Format(s.CodeTabs.Active(), s.Code)
	return s, nil
}

func handleDismiss(_ context.Context, _ Env, s State, _ Event) (State, error) {
	s.Notification = nil
	return s, nil
}

func noReport(s State) (State, error) {
	s.Notification = &codepanel.Notification{Kind: codepanel.KindError, Message: MessageNoReport}
	return s, ErrNoReport
}
