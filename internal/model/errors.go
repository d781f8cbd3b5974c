package model

import "errors"

// Input and state errors.
// Callers match them with errors.Is; ErrMalformedURL is usually wrapped
// together with the underlying parse error.
var (
	// ErrEmptyInput is returned when the URL input is blank or whitespace only.
	ErrEmptyInput = errors.New("empty input: enter a URL to analyze")

	// ErrMalformedURL is returned when the input is not an absolute URL
	// with a scheme and a host (for example "https://example.com").
	ErrMalformedURL = errors.New("malformed URL: expected a URL such as https://example.com")

	// ErrUnknownTab is returned when a tab identifier is not part of its group.
	ErrUnknownTab = errors.New("unknown tab")

	// ErrUnknownCodeType is returned when a code type is not html, css or js.
	ErrUnknownCodeType = errors.New("unknown code type")
)

// ErrReportShape is returned by Report.CheckShape when a section is missing
// a subsection, has them out of order or carries an unknown status tag.
var ErrReportShape = errors.New("report does not have the expected shape")
