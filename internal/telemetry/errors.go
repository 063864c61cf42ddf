package telemetry

import "codeberg.org/mutker/batlab/internal/errors"

const (
	// Ingestion Errors
	ErrOpenLog   = errors.ErrorCode("telemetry_open_log_failed")
	ErrReadLog   = errors.ErrorCode("telemetry_read_log_failed")
	ErrNoSamples = errors.ErrorCode("telemetry_no_samples")
)
