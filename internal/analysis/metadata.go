package analysis

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/batlab/internal/logger"
	"codeberg.org/mutker/batlab/internal/telemetry"
)

const (
	LogExt      = ".jsonl"
	MetadataExt = ".meta.json"

	// Unknown labels a run whose identity could not be determined.
	Unknown = "unknown"

	MaxRunIDLen = 255
	MaxLabelLen = 127

	// The metadata document is read as one buffer of at most this many bytes.
	maxMetadataBytes = 4095

	runIDSeparator = '_'
)

// Metadata keys.
const (
	KeyConfig   = "config"
	KeyOS       = "os"
	KeyWorkload = "workload"
)

// Metadata identifies the experiment a run belongs to.
type Metadata struct {
	Config   string `json:"config"`
	OS       string `json:"os"`
	Workload string `json:"workload"`
}

// RunIDParts are the fields of a TIMESTAMP_HOSTNAME_OS_CONFIG[_WORKLOAD] run id.
type RunIDParts struct {
	Timestamp string
	Host      string
	OS        string
	Config    string
	Workload  string
}

// RunID derives a run id from a log path: the base name without the log
// extension.
func RunID(logPath string) string {
	base := filepath.Base(logPath)
	return telemetry.Truncate(strings.TrimSuffix(base, LogExt), MaxRunIDLen)
}

// MetadataPath returns the sibling metadata document for logPath. ok is false
// when logPath does not carry the log extension.
func MetadataPath(logPath string) (path string, ok bool) {
	if !strings.HasSuffix(logPath, LogExt) {
		return "", false
	}
	return strings.TrimSuffix(logPath, LogExt) + MetadataExt, true
}

// ParseRunID splits a run id on underscores. Empty tokens are skipped. ok is
// false when fewer than four tokens are present.
func ParseRunID(runID string) (parts RunIDParts, ok bool) {
	tokens := strings.FieldsFunc(runID, func(r rune) bool { return r == runIDSeparator })
	if len(tokens) < 4 {
		return RunIDParts{}, false
	}

	for i := range tokens {
		tokens[i] = telemetry.Truncate(tokens[i], MaxLabelLen)
	}

	parts = RunIDParts{
		Timestamp: tokens[0],
		Host:      tokens[1],
		OS:        tokens[2],
		Config:    tokens[3],
	}
	if len(tokens) >= 5 {
		parts.Workload = tokens[4]
	}
	return parts, true
}

// ResolveMetadata determines the identity of the run logged at logPath. The
// metadata document wins; when it is absent or lacks a config the run id is
// parsed instead. It never fails: unresolvable fields become Unknown (config
// and os) or empty (workload).
func ResolveMetadata(logPath string) Metadata {
	var md Metadata
	if path, ok := MetadataPath(logPath); ok {
		md = readMetadata(path)
	}

	if md.Config == "" {
		md = fillFromRunID(md, RunID(logPath))
	}
	return md
}

func readMetadata(path string) Metadata {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug().Err(err).Str("path", path).Msg("Metadata unreadable, using run id")
		}
		return Metadata{}
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, maxMetadataBytes))
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Metadata unreadable, using run id")
		return Metadata{}
	}

	doc := string(buf)
	config, _ := telemetry.ParseString(doc, KeyConfig, MaxLabelLen)
	osName, _ := telemetry.ParseString(doc, KeyOS, MaxLabelLen)
	workload, _ := telemetry.ParseString(doc, KeyWorkload, MaxLabelLen)

	return Metadata{
		Config:   config,
		OS:       osName,
		Workload: workload,
	}
}

// fillFromRunID completes md from the run id, keeping any field the metadata
// document already supplied.
func fillFromRunID(md Metadata, runID string) Metadata {
	parts, ok := ParseRunID(runID)
	if !ok {
		logger.Debug().Str("run_id", runID).Msg("Run id does not follow naming convention")
		parts = RunIDParts{OS: Unknown, Config: Unknown}
	}

	md.Config = parts.Config
	if md.OS == "" {
		md.OS = parts.OS
	}
	if md.Workload == "" {
		md.Workload = parts.Workload
	}
	return md
}
