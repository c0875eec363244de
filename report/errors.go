package report

import "errors"

// ErrNilReport indicates a save was attempted with no report.
var ErrNilReport = errors.New("nil report")
