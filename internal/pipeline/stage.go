package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultStageDelay is how long each progress stage stays active.
const DefaultStageDelay = 800 * time.Millisecond

// Stage is one step of the simulated analysis progress.
type Stage int

// Progress stages in execution order. StageNone means no stage is active.
const (
	StageNone Stage = iota
	StageResolve
	StageFetch
	StageDetect
	StageAudit
	StageCompile
)

// Stages lists the progress stages in execution order.
var Stages = []Stage{StageResolve, StageFetch, StageDetect, StageAudit, StageCompile}

// String returns the stage identifier.
func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageFetch:
		return "fetch"
	case StageDetect:
		return "detect"
	case StageAudit:
		return "audit"
	case StageCompile:
		return "compile"
	default:
		return "none"
	}
}

// Label returns the text shown next to the stage indicator.
func (s Stage) Label() string {
	switch s {
	case StageResolve:
		return "Resolving domain and DNS records"
	case StageFetch:
		return "Fetching page content"
	case StageDetect:
		return "Detecting technologies"
	case StageAudit:
		return "Auditing security and performance"
	case StageCompile:
		return "Compiling report"
	default:
		return ""
	}
}

// Progress is a snapshot of the stage sequence.
type Progress struct {
	// Active is the stage currently running, or StageNone.
	Active Stage `json:"active"`

	// Completed is the number of stages that finished.
	Completed int `json:"completed"`

	// Total is the number of stages in the sequence.
	Total int `json:"total"`
}

// Done reports whether every stage finished.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Percent returns the share of finished stages, from 0 to 100.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// Observer is notified whenever the progress changes.
// Observers are called synchronously from the running step and must not block.
type Observer interface {
	ProgressChanged(p Progress)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(p Progress)

// ProgressChanged calls f(p).
func (f ObserverFunc) ProgressChanged(p Progress) {
	f(p)
}

// Tracker records which stage is active and enforces that stages run one at
// a time and in order. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	active    Stage
	completed int
	observers []Observer
}

// NewTracker creates a tracker with no active stage.
func NewTracker(observers ...Observer) *Tracker {
	return &Tracker{observers: observers}
}

// Activate makes stage the active stage.
// It fails with ErrStageActive if another stage is active and with
// ErrStageOrder if stage is not the next one in the sequence.
func (t *Tracker) Activate(stage Stage) error {
	t.mu.Lock()
	if t.active != StageNone {
		active := t.active
		t.mu.Unlock()
		return fmt.Errorf("%w: cannot start %s while %s runs", ErrStageActive, stage, active)
	}
	if t.completed >= len(Stages) || Stages[t.completed] != stage {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s after %d completed stages", ErrStageOrder, stage, t.completed)
	}
	t.active = stage
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
	return nil
}

// Finish deactivates stage and counts it as completed.
func (t *Tracker) Finish(stage Stage) error {
	t.mu.Lock()
	if t.active != stage {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStageNotActive, stage)
	}
	t.active = StageNone
	t.completed++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
	return nil
}

// Snapshot returns the current progress.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Progress {
	return Progress{Active: t.active, Completed: t.completed, Total: len(Stages)}
}

func (t *Tracker) notify(p Progress) {
	for _, o := range t.observers {
		o.ProgressChanged(p)
	}
}

// Clock abstracts time so that the stage delays can be faked in tests.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d using a timer.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
