package app

import (
	"github.com/nao1215/sitescope/internal/codepanel"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
)

// Phase is the visible part of the UI.
type Phase string

// UI phases.
const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseResults Phase = "results"
	PhaseError   Phase = "error"
)

// State is the complete UI state of one session.
// It is a value: handlers receive a copy and return the new state.
// Nothing in it is persisted across process restarts.
type State struct {
	// Tabs is the result tab group.
	Tabs model.TabGroup[model.ResultTab]

	// CodeTabs is the code tab group.
	CodeTabs model.TabGroup[model.CodeType]

	// Report is the latest successful report, or nil.
	Report *model.Report

	// Code is the text shown in the code panel. It starts as the report
	// sample for the active code tab and may be reformatted.
	Code string

	// Phase selects what the UI shows.
	Phase Phase

	// Message is the inline error message for PhaseError.
	Message string

	// Notification is shown once, then dismissed.
	Notification *codepanel.Notification

	// Progress is the stage snapshot of the running analysis.
	Progress pipeline.Progress

	// Input is the raw text of the last submission, valid or not. Retry
	// resubmits it.
	Input string

	// Target is the validated input of the running or last analysis.
	Target model.Target

	// Running reports whether the analysis of Generation has not
	// delivered its result yet.
	Running bool

	// Generation identifies the newest submission. Results carrying an
	// older generation are discarded.
	Generation uint64
}

// NewState returns the initial state: idle, overview and html tabs active.
func NewState() State {
	return State{
		Tabs:     model.NewResultTabs(),
		CodeTabs: model.NewCodeTabs(),
		Phase:    PhaseIdle,
	}
}

// HasReport reports whether a report is available for the code actions.
func (s State) HasReport() bool {
	return s.Report != nil
}

// Snapshot is the JSON view of a state.
type Snapshot struct {
	Phase        Phase                   `json:"phase"`
	Input        string                  `json:"input,omitempty"`
	Message      string                  `json:"message,omitempty"`
	Notification *codepanel.Notification `json:"notification,omitempty"`
	ActiveTab    model.ResultTab         `json:"active_tab"`
	ActiveCode   model.CodeType          `json:"active_code"`
	Progress     pipeline.Progress       `json:"progress"`
	ActiveStage  string                  `json:"active_stage,omitempty"`
	HasReport    bool                    `json:"has_report"`
	Digest       string                  `json:"digest,omitempty"`
	Generation   uint64                  `json:"generation"`
}

// Snapshot returns the JSON view of s.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:        s.Phase,
		Input:        s.Input,
		Message:      s.Message,
		Notification: s.Notification,
		ActiveTab:    s.Tabs.Active(),
		ActiveCode:   s.CodeTabs.Active(),
		Progress:     s.Progress,
		HasReport:    s.HasReport(),
		Generation:   s.Generation,
	}
	if s.Progress.Active != pipeline.StageNone {
		snap.ActiveStage = s.Progress.Active.String()
	}
	if s.Report != nil {
		snap.Digest = s.Report.Digest
	}
	return snap
}
