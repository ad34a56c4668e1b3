package recon

import "errors"

var (
	// ErrInvalidSettings is returned when scan settings fail validation
	ErrInvalidSettings = errors.New("invalid scan settings: timeouts must be positive")
	// ErrEmptyTarget is returned when a scan is requested without a target
	ErrEmptyTarget = errors.New("scan target must not be empty")
)
