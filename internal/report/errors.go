package report

import "errors"

var (
	// ErrNilReport is returned when a nil report is passed to a renderer
	ErrNilReport = errors.New("report cannot be nil")
)
