package telemetry

import (
	"fmt"
	"math"
)

const (
	MaxTimestampLen = 63
	MaxSourceLen    = 31

	MaxPercentage = 100.0
	// MaxWatts is exclusive.
	MaxWatts = 100.0
)

// Log line keys.
const (
	KeyTimestamp = "t"
	KeyPct       = "pct"
	KeyWatts     = "watts"
	KeyCPULoad   = "cpu_load"
	KeyRAMPct    = "ram_pct"
	KeyTempC     = "temp_c"
	KeySource    = "src"
)

// Sample is one telemetry observation read from a run log.
type Sample struct {
	Timestamp  string  `json:"t"`
	Percentage float64 `json:"pct"`
	Watts      float64 `json:"watts"`
	CPULoad    float64 `json:"cpu_load"`
	RAMPct     float64 `json:"ram_pct"`
	TempC      float64 `json:"temp_c"`
	Source     string  `json:"src"`
}

// ParseLine builds a Sample from one log line. Missing fields take their zero
// value; a line is never rejected.
func ParseLine(line string) Sample {
	ts, _ := ParseString(line, KeyTimestamp, MaxTimestampLen)
	src, _ := ParseString(line, KeySource, MaxSourceLen)

	return Sample{
		Timestamp:  ts,
		Percentage: ParseFloat(line, KeyPct),
		Watts:      ParseFloat(line, KeyWatts),
		CPULoad:    ParseFloat(line, KeyCPULoad),
		RAMPct:     ParseFloat(line, KeyRAMPct),
		TempC:      ParseFloat(line, KeyTempC),
		Source:     src,
	}
}

// FormatLine renders s in the log format written by the acquisition side.
func FormatLine(s Sample) string {
	return fmt.Sprintf(`{"t": "%s", "pct": %.1f, "watts": %.3f, "cpu_load": %.2f, "ram_pct": %.3f, "temp_c": %.2f, "src": "%s"}`,
		s.Timestamp, s.Percentage, s.Watts, s.CPULoad, s.RAMPct, s.TempC, s.Source)
}

// Valid reports whether the battery percentage is within [0, 100] and the
// power draw within [0, 100). NaN readings are never valid.
func (s Sample) Valid() bool {
	if math.IsNaN(s.Percentage) || math.IsNaN(s.Watts) {
		return false
	}
	return s.Percentage >= 0 && s.Percentage <= MaxPercentage &&
		s.Watts >= 0 && s.Watts < MaxWatts
}

// Filter returns the valid samples in their original order. The input is not
// modified.
func Filter(samples []Sample) []Sample {
	valid := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	return valid
}
