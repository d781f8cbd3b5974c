package app

import (
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
)

// EventKind identifies what happened.
type EventKind int

// Event kinds.
const (
	// EventSubmit validates Input and starts a new analysis generation.
	EventSubmit EventKind = iota + 1

	// EventRetry resubmits the last input.
	EventRetry

	// EventProgress carries a stage snapshot of a running analysis.
	EventProgress

	// EventAnalysisDone carries the result of an analysis.
	EventAnalysisDone

	// EventSelectTab switches the result tab.
	EventSelectTab

	// EventSelectCode switches the code tab and refreshes the displayed code.
	EventSelectCode

	// EventCopy copies the displayed code.
	EventCopy

	// EventDownload downloads the displayed code.
	EventDownload

	// EventFormat reformats the displayed code.
	EventFormat

	// EventDismiss clears the notification.
	EventDismiss
)

// String returns the event name used in logs.
func (k EventKind) String() string {
	switch k {
	case EventSubmit:
		return "submit"
	case EventRetry:
		return "retry"
	case EventProgress:
		return "progress"
	case EventAnalysisDone:
		return "analysis_done"
	case EventSelectTab:
		return "select_tab"
	case EventSelectCode:
		return "select_code"
	case EventCopy:
		return "copy"
	case EventDownload:
		return "download"
	case EventFormat:
		return "format"
	case EventDismiss:
		return "dismiss"
	default:
		return "unknown"
	}
}

// Event is an input to Dispatch. Only the fields of its kind are used.
type Event struct {
	Kind EventKind

	// Input is the raw URL for EventSubmit.
	Input string

	// Tab is the tab for EventSelectTab.
	Tab model.ResultTab

	// CodeType is the code tab for EventSelectCode.
	CodeType model.CodeType

	// Generation tags EventProgress and EventAnalysisDone.
	Generation uint64

	// Progress is the snapshot for EventProgress.
	Progress pipeline.Progress

	// Report and Err are the outcome for EventAnalysisDone.
	Report *model.Report
	Err    error
}

// Submit returns an EventSubmit for input.
func Submit(input string) Event {
	return Event{Kind: EventSubmit, Input: input}
}

// SelectTab returns an EventSelectTab for tab.
func SelectTab(tab model.ResultTab) Event {
	return Event{Kind: EventSelectTab, Tab: tab}
}

// SelectCode returns an EventSelectCode for codeType.
func SelectCode(codeType model.CodeType) Event {
	return Event{Kind: EventSelectCode, CodeType: codeType}
}
