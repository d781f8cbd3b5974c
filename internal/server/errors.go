package server

import "errors"

// ErrNoReport is returned by the JSON report endpoint before the session
// has a report.
var ErrNoReport = errors.New("no report in this session")
