package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/sitescope/internal/codepanel"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/synth"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeSink struct {
	files []codepanel.File
}

func (s *fakeSink) Save(_ context.Context, f codepanel.File) error {
	s.files = append(s.files, f)
	return nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reports = append(r.reports, report)
	return nil
}

type failingSynth struct{}

func (failingSynth) Synthesize(model.Target) (*model.Report, error) {
	return nil, synth.ErrSynthesisFailure
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(opts ...Option) *App {
	s := synth.New(synth.WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	base := []Option{
		WithLogger(discardLogger()),
		WithAnalysisOptions(pipeline.WithStageDelay(0)),
	}
	return New(s, append(base, opts...)...)
}

func analyzed(t *testing.T, a *App, input string) State {
	t.Helper()
	s, err := a.Analyze(context.Background(), NewState(), input, nil)
	if err != nil {
		t.Fatalf("Analyze(%q) = %v", input, err)
	}
	return s
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("valid input starts loading", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s, err := a.Dispatch(context.Background(), NewState(), Submit("https://example.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Phase != PhaseLoading {
			t.Errorf("Phase = %q, want loading", s.Phase)
		}
		if s.Generation != 1 {
			t.Errorf("Generation = %d, want 1", s.Generation)
		}
		if s.Progress.Total != len(pipeline.Stages) || s.Progress.Completed != 0 {
			t.Errorf("Progress = %+v", s.Progress)
		}
	})

	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty", "", model.ErrEmptyInput, MessageEmptyInput},
		{"whitespace", "   ", model.ErrEmptyInput, MessageEmptyInput},
		{"malformed", "not a url", model.ErrMalformedURL, MessageMalformedURL},
	}
	for _, tt := range tests {
		t.Run(tt.name+" input keeps the previous report", func(t *testing.T) {
			t.Parallel()
			a := newTestApp()
			prev := analyzed(t, a, "https://example.com")
			prev.Tabs.Select(model.TabSecurity)

			s, err := a.Dispatch(context.Background(), prev, Submit(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if s.Phase != PhaseError || s.Message != tt.wantMsg {
				t.Errorf("Phase = %q, Message = %q", s.Phase, s.Message)
			}
			if s.Report != prev.Report {
				t.Error("previous report was replaced")
			}
			if s.Tabs.Active() != model.TabSecurity {
				t.Errorf("active tab = %q, want security", s.Tabs.Active())
			}
			if s.Generation != prev.Generation {
				t.Error("invalid input started a new generation")
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("produces results with progress in order", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()

		var mu sync.Mutex
		var events []Event
		s, err := a.Analyze(context.Background(), NewState(), "https://example.com", func(e Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Phase != PhaseResults {
			t.Errorf("Phase = %q, want results", s.Phase)
		}
		if s.Report == nil || s.Report.Overview.Domain != "example.com" {
			t.Fatalf("unexpected report: %+v", s.Report)
		}
		if s.Code != s.Report.Code.HTML {
			t.Error("displayed code is not the HTML sample")
		}

		// activate + finish per stage
		if len(events) != 2*len(pipeline.Stages) {
			t.Fatalf("got %d progress events", len(events))
		}
		for i, e := range events {
			if e.Kind != EventProgress || e.Generation != 1 {
				t.Errorf("event %d = %+v", i, e)
			}
		}
		if last := events[len(events)-1].Progress; !last.Done() {
			t.Errorf("last progress = %+v, want done", last)
		}
	})

	t.Run("synthesis failure shows the generic message", func(t *testing.T) {
		t.Parallel()
		a := New(failingSynth{},
			WithLogger(discardLogger()),
			WithAnalysisOptions(pipeline.WithStageDelay(0)),
		)
		s, err := a.Analyze(context.Background(), NewState(), "https://example.com", nil)
		if !errors.Is(err, synth.ErrSynthesisFailure) {
			t.Fatalf("expected ErrSynthesisFailure, got %v", err)
		}
		if s.Phase != PhaseError || s.Message != MessageAnalysisFailed {
			t.Errorf("Phase = %q, Message = %q", s.Phase, s.Message)
		}
		if s.HasReport() {
			t.Error("unexpected report")
		}
	})

	t.Run("retry resubmits the last input", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s := analyzed(t, a, "https://example.com")
		s, err := a.Dispatch(context.Background(), s, Event{Kind: EventRetry})
		if err != nil {
			t.Fatal(err)
		}
		if s.Phase != PhaseLoading || s.Generation != 2 || s.Input != "https://example.com" {
			t.Errorf("state = %+v", s.Snapshot())
		}
	})
}

func TestNewestSubmissionWins(t *testing.T) {
	t.Parallel()

	a := newTestApp()
	ctx := context.Background()
	s := NewState()

	s, _ = a.Dispatch(ctx, s, Submit("https://first.example.com"))
	first := a.RunAnalysis(ctx, s.Generation, s.Target, nil)
	s, _ = a.Dispatch(ctx, s, Submit("https://second.example.com"))
	second := a.RunAnalysis(ctx, s.Generation, s.Target, nil)

	s, err := a.Dispatch(ctx, s, second)
	if err != nil {
		t.Fatal(err)
	}
	s, err = a.Dispatch(ctx, s, first)
	if !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if s.Report.Overview.Domain != "second.example.com" {
		t.Errorf("report domain = %q", s.Report.Overview.Domain)
	}

	s, _ = a.Dispatch(ctx, s, Event{Kind: EventProgress, Generation: 1, Progress: pipeline.Progress{Completed: 2}})
	if s.Progress.Completed == 2 {
		t.Error("stale progress was applied")
	}
}

func TestInvalidSubmissionWhileLoading(t *testing.T) {
	t.Parallel()

	a := newTestApp()
	ctx := context.Background()

	s, err := a.Dispatch(ctx, NewState(), Submit("https://example.com"))
	if err != nil {
		t.Fatal(err)
	}
	running := a.RunAnalysis(ctx, s.Generation, s.Target, nil)

	s, err = a.Dispatch(ctx, s, Submit("   "))
	if !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if s.Phase != PhaseError || s.Message != MessageEmptyInput {
		t.Errorf("Phase = %q, Message = %q", s.Phase, s.Message)
	}

	s, _ = a.Dispatch(ctx, s, Event{Kind: EventProgress, Generation: 1, Progress: pipeline.Progress{Completed: 3, Total: len(pipeline.Stages)}})
	if s.Progress.Completed != 3 {
		t.Errorf("progress of the running analysis was dropped: %+v", s.Progress)
	}

	s, err = a.Dispatch(ctx, s, running)
	if err != nil {
		t.Fatalf("result of the running analysis was rejected: %v", err)
	}
	if s.Phase != PhaseResults || s.Message != "" {
		t.Errorf("Phase = %q, Message = %q", s.Phase, s.Message)
	}
	if s.Report == nil || s.Report.Overview.Domain != "example.com" {
		t.Fatalf("unexpected report: %+v", s.Report)
	}
	if s.Running {
		t.Error("analysis still marked as running")
	}

	t.Run("a result is applied once", func(t *testing.T) {
		t.Parallel()
		if _, err := a.Dispatch(ctx, s, running); !errors.Is(err, ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
	})

	t.Run("no result applies before a submission", func(t *testing.T) {
		t.Parallel()
		done := Event{Kind: EventAnalysisDone, Report: s.Report}
		if _, err := a.Dispatch(ctx, NewState(), done); !errors.Is(err, ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
	})
}

func TestRetryAfterInvalidInput(t *testing.T) {
	t.Parallel()

	a := newTestApp()
	ctx := context.Background()
	prev := analyzed(t, a, "https://example.com")

	s, err := a.Dispatch(ctx, prev, Submit("not a url"))
	if !errors.Is(err, model.ErrMalformedURL) {
		t.Fatalf("expected ErrMalformedURL, got %v", err)
	}
	if s.Input != "not a url" {
		t.Errorf("Input = %q, want the rejected text", s.Input)
	}
	if s.Target != prev.Target {
		t.Errorf("Target = %v, want %v", s.Target, prev.Target)
	}

	s, err = a.Dispatch(ctx, s, Event{Kind: EventRetry})
	if !errors.Is(err, model.ErrMalformedURL) {
		t.Fatalf("retry: expected ErrMalformedURL, got %v", err)
	}
	if s.Phase != PhaseError || s.Message != MessageMalformedURL {
		t.Errorf("Phase = %q, Message = %q", s.Phase, s.Message)
	}
	if s.Generation != prev.Generation {
		t.Error("retry of invalid input started a new generation")
	}
	if s.Report != prev.Report {
		t.Error("previous report was replaced")
	}
}

func TestSelectTab(t *testing.T) {
	t.Parallel()

	t.Run("selecting twice is the same as once", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		once, err := a.Dispatch(context.Background(), NewState(), SelectTab(model.TabSEO))
		if err != nil {
			t.Fatal(err)
		}
		twice, err := a.Dispatch(context.Background(), once, SelectTab(model.TabSEO))
		if err != nil {
			t.Fatal(err)
		}
		if once.Tabs.Active() != twice.Tabs.Active() || twice.Tabs.Active() != model.TabSEO {
			t.Errorf("active = %q then %q", once.Tabs.Active(), twice.Tabs.Active())
		}
	})

	t.Run("unknown tab", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s, err := a.Dispatch(context.Background(), NewState(), SelectTab("billing"))
		if !errors.Is(err, model.ErrUnknownTab) {
			t.Fatalf("expected ErrUnknownTab, got %v", err)
		}
		if s.Tabs.Active() != model.TabOverview {
			t.Errorf("active = %q", s.Tabs.Active())
		}
		if s.Notification == nil || s.Notification.Message != MessageUnknownTab {
			t.Errorf("notification = %+v", s.Notification)
		}
	})

	t.Run("tab persists across analyses", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s := analyzed(t, a, "https://example.com")
		s, _ = a.Dispatch(context.Background(), s, SelectTab(model.TabAssets))
		s, err := a.Analyze(context.Background(), s, "https://example.org", nil)
		if err != nil {
			t.Fatal(err)
		}
		if s.Tabs.Active() != model.TabAssets {
			t.Errorf("active = %q, want assets", s.Tabs.Active())
		}
	})
}

func TestCodeActions(t *testing.T) {
	t.Parallel()

	t.Run("require a report", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		for _, kind := range []EventKind{EventCopy, EventDownload, EventFormat} {
			s, err := a.Dispatch(context.Background(), NewState(), Event{Kind: kind})
			if !errors.Is(err, ErrNoReport) {
				t.Errorf("%s: expected ErrNoReport, got %v", kind, err)
			}
			if s.Notification == nil || s.Notification.Message != MessageNoReport {
				t.Errorf("%s: notification = %+v", kind, s.Notification)
			}
		}
	})

	t.Run("download css saves styles.css", func(t *testing.T) {
		t.Parallel()
		sink := &fakeSink{}
		a := newTestApp(WithSink(sink))
		s := analyzed(t, a, "https://example.com")
		s, err := a.Dispatch(context.Background(), s, SelectCode(model.CodeCSS))
		if err != nil {
			t.Fatal(err)
		}
		if s.Code != s.Report.Code.CSS {
			t.Fatal("code panel does not show the CSS sample")
		}
		if _, err := a.Dispatch(context.Background(), s, Event{Kind: EventDownload}); err != nil {
			t.Fatal(err)
		}
		if len(sink.files) != 1 {
			t.Fatalf("got %d files", len(sink.files))
		}
		f := sink.files[0]
		if f.Name != "styles.css" || f.MIMEType != "text/plain" || f.Content != s.Report.Code.CSS {
			t.Errorf("file = %+v", f)
		}
	})

	t.Run("copy uses the displayed text", func(t *testing.T) {
		t.Parallel()
		cb := &fakeClipboard{}
		a := newTestApp(WithClipboard(cb))
		s := analyzed(t, a, "https://example.com")
		s, _ = a.Dispatch(context.Background(), s, Event{Kind: EventFormat})
		s, err := a.Dispatch(context.Background(), s, Event{Kind: EventCopy})
		if err != nil {
			t.Fatal(err)
		}
		if cb.text != s.Code {
			t.Error("clipboard does not hold the displayed code")
		}
		if s.Notification == nil || s.Notification.Message != codepanel.MessageCopied {
			t.Errorf("notification = %+v", s.Notification)
		}

		s, _ = a.Dispatch(context.Background(), s, Event{Kind: EventDismiss})
		if s.Notification != nil {
			t.Error("notification not dismissed")
		}
	})

	t.Run("copy without clipboard notifies failure", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s := analyzed(t, a, "https://example.com")
		s, err := a.Dispatch(context.Background(), s, Event{Kind: EventCopy})
		if err != nil {
			t.Fatal(err)
		}
		if s.Notification == nil || s.Notification.Kind != codepanel.KindError {
			t.Errorf("notification = %+v", s.Notification)
		}
	})

	t.Run("format changes only the displayed code", func(t *testing.T) {
		t.Parallel()
		a := newTestApp()
		s := analyzed(t, a, "https://example.com")
		original := s.Report.Code.HTML
		s, _ = a.Dispatch(context.Background(), s, Event{Kind: EventFormat})
		if s.Report.Code.HTML != original {
			t.Error("format modified the report")
		}
		if strings.Contains(s.Code, "><") {
			t.Error("formatted html still has adjacent tags")
		}
	})
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("records successful reports", func(t *testing.T) {
		t.Parallel()
		rec := &fakeRecorder{}
		a := newTestApp(WithRecorder(rec))
		s := analyzed(t, a, "https://example.com")
		if len(rec.reports) != 1 || rec.reports[0] != s.Report {
			t.Errorf("recorded %d reports", len(rec.reports))
		}
	})

	t.Run("recorder failure keeps the results", func(t *testing.T) {
		t.Parallel()
		a := newTestApp(WithRecorder(&fakeRecorder{err: errors.New("locked")}))
		s := analyzed(t, a, "https://example.com")
		if s.Phase != PhaseResults {
			t.Errorf("Phase = %q", s.Phase)
		}
		if s.Notification == nil || s.Notification.Kind != codepanel.KindInfo {
			t.Errorf("notification = %+v", s.Notification)
		}
	})
}

func TestDispatchUnknownEvent(t *testing.T) {
	t.Parallel()

	a := newTestApp()
	_, err := a.Dispatch(context.Background(), NewState(), Event{Kind: EventKind(99)})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{model.ErrEmptyInput, MessageEmptyInput},
		{model.ErrMalformedURL, MessageMalformedURL},
		{ErrNoReport, MessageNoReport},
		{model.ErrUnknownTab, MessageUnknownTab},
		{model.ErrUnknownCodeType, MessageUnknownCode},
		{synth.ErrSynthesisFailure, MessageAnalysisFailed},
		{errors.New("boom"), MessageAnalysisFailed},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
