package model

// Status is the tag attached to a report item (detected, warning, good, ...).
// The set of tags is closed; String returns the tag as shown in the UI.
type Status string

// Status tags used by the synthesized report.
const (
	StatusDetected  Status = "detected"
	StatusWarning   Status = "warning"
	StatusInfo      Status = "info"
	StatusGood      Status = "good"
	StatusError     Status = "error"
	StatusActive    Status = "active"
	StatusOptimized Status = "optimized"
	StatusMinified  Status = "minified"
	StatusLoaded    Status = "loaded"
)

// AllStatuses lists every status tag in display order.
var AllStatuses = []Status{
	StatusDetected,
	StatusGood,
	StatusActive,
	StatusOptimized,
	StatusMinified,
	StatusLoaded,
	StatusInfo,
	StatusWarning,
	StatusError,
}

// String returns the tag text.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known tags.
// The empty status is valid: items such as server info carry no tag.
func (s Status) IsValid() bool {
	if s == "" {
		return true
	}
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CSSClass returns the class the browser page uses for the badge.
func (s Status) CSSClass() string {
	return "status-" + string(s)
}

// Tone groups status tags by how a reader should perceive them.
// Writers use it for colouring and the summary counters.
type Tone int

const (
	// ToneNeutral is used for informational tags and untagged items.
	ToneNeutral Tone = iota

	// TonePositive marks healthy results (good, detected, optimized, ...).
	TonePositive

	// ToneCaution marks results worth a look (warning).
	ToneCaution

	// ToneNegative marks failing results (error).
	ToneNegative
)

// String returns a human-readable representation of the tone.
func (t Tone) String() string {
	switch t {
	case TonePositive:
		return "positive"
	case ToneCaution:
		return "caution"
	case ToneNegative:
		return "negative"
	default:
		return "neutral"
	}
}

// Tone returns the tone of the status tag.
func (s Status) Tone() Tone {
	switch s {
	case StatusDetected, StatusGood, StatusActive, StatusOptimized, StatusMinified, StatusLoaded:
		return TonePositive
	case StatusWarning:
		return ToneCaution
	case StatusError:
		return ToneNegative
	default:
		return ToneNeutral
	}
}
