package app

import (
	"errors"

	"github.com/nao1215/sitescope/internal/model"
)

var (
	// ErrNoReport is returned by the code actions before any report exists.
	ErrNoReport = errors.New("no report: analyze a website first")

	// ErrUnknownEvent is returned when no handler is registered for an event kind.
	ErrUnknownEvent = errors.New("no handler for event")

	// ErrStaleResult is returned when an analysis result belongs to a
	// superseded submission and was discarded.
	ErrStaleResult = errors.New("analysis result superseded by a newer submission")

	// ErrNoSink is returned by downloads when no sink is configured.
	ErrNoSink = errors.New("no download destination configured")
)

// User-facing messages.
const (
	MessageEmptyInput     = "Please enter a website URL."
	MessageMalformedURL   = "Please enter a valid URL, for example https://example.com"
	MessageAnalysisFailed = "An error occurred while analyzing the website. Please try again later."
	MessageNoReport       = "Analyze a website first."
	MessageUnknownTab     = "That tab does not exist."
	MessageUnknownCode    = "That code type does not exist."
)

// UserMessage maps an error to the single message shown to the user.
// Synthesis failures and anything unexpected share the generic message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyInput):
		return MessageEmptyInput
	case errors.Is(err, model.ErrMalformedURL):
		return MessageMalformedURL
	case errors.Is(err, ErrNoReport):
		return MessageNoReport
	case errors.Is(err, model.ErrUnknownCodeType):
		return MessageUnknownCode
	case errors.Is(err, model.ErrUnknownTab):
		return MessageUnknownTab
	default:
		return MessageAnalysisFailed
	}
}
