package errors

// Common error codes
const (
	// System errors
	ErrInternal ErrorCode = "internal_error"

	// Configuration errors
	ErrInvalidConfig     ErrorCode = "invalid_configuration"
	ErrBindFlags         ErrorCode = "bind_flags_failed"
	ErrReadConfig        ErrorCode = "read_config_failed"
	ErrInvalidMinSamples ErrorCode = "invalid_min_samples"
	ErrInvalidWorkers    ErrorCode = "invalid_workers"
	ErrInvalidGroupBy    ErrorCode = "invalid_group_by"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp        ErrorCode = "init_app_failed"
	ErrLoadCorpus     ErrorCode = "load_corpus_failed"
	ErrWriteResult    ErrorCode = "write_result_failed"
	ErrStoreCorpus    ErrorCode = "store_corpus_failed"
	ErrWriteMetrics   ErrorCode = "write_metrics_failed"
	ErrAlreadyRunning ErrorCode = "already_running"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidConfig:     "Invalid configuration",
	ErrBindFlags:         "Failed to bind flags",
	ErrReadConfig:        "Failed to read config file",
	ErrInvalidMinSamples: "Minimum sample count must not be negative",
	ErrInvalidWorkers:    "Worker count must be at least 1",
	ErrInvalidGroupBy:    "Invalid group-by field",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrInitFailed:        "Initialization failed",
	ErrShutdownFailed:    "Shutdown failed",
	ErrInitApp:           "Failed to initialize application",
	ErrLoadCorpus:        "Failed to load run summaries",
	ErrWriteResult:       "Failed to write analysis result",
	ErrStoreCorpus:       "Failed to store run summaries",
	ErrWriteMetrics:      "Failed to write metrics textfile",
	ErrAlreadyRunning:    "Another batlab instance is writing to this store",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
