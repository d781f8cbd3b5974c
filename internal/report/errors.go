package report

import "errors"

// ErrUnknownFormat is returned by ParseFormat for unsupported format names.
var ErrUnknownFormat = errors.New("unknown output format")
