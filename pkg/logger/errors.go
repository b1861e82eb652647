package logger

import "errors"

var (
	ErrInvalidOutputPath = errors.New("output path is required when file output is enabled")
	ErrNoOutputEnabled   = errors.New("at least one output (console, file or writer) must be enabled")
	ErrInvalidLevel      = errors.New("invalid log level")
	ErrInvalidFormat     = errors.New("invalid log format")
)
