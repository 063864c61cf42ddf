package analysis

import "codeberg.org/mutker/batlab/internal/errors"

const (
	// Run Errors
	ErrRunRejected         = errors.ErrorCode("analysis_run_rejected")
	ErrInsufficientSamples = errors.ErrorCode("analysis_insufficient_samples")

	// Corpus Errors
	ErrReadDir  = errors.ErrorCode("analysis_read_dir_failed")
	ErrCanceled = errors.ErrorCode("analysis_canceled")
)

// sampleShortfall is attached to ErrInsufficientSamples.
type sampleShortfall struct {
	Stage      string
	Count      int
	MinSamples int
}
