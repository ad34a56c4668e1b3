package config

import "errors"

var (
	// ErrConfigRead is returned when the config file or environment cannot be read
	ErrConfigRead = errors.New("failed to read configuration")

	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")

	// ErrInvalidFormat is returned when the output format is not json, html, or both
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidTimeout is returned when a probe timeout is zero or negative
	ErrInvalidTimeout = errors.New("probe timeouts must be positive")

	// ErrMissingNmapBinary is returned when the nmap binary name is empty
	ErrMissingNmapBinary = errors.New("nmap binary cannot be empty")
)
