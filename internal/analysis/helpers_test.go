package analysis_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/mutker/batlab/internal/telemetry"
	"github.com/stretchr/testify/require"
)

// writeRun writes samples as a run log named runID.jsonl and returns its path.
func writeRun(t *testing.T, dir, runID string, samples []telemetry.Sample) string {
	t.Helper()

	var b strings.Builder
	for _, s := range samples {
		b.WriteString(telemetry.FormatLine(s))
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, runID+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func writeMeta(t *testing.T, dir, runID, content string) {
	t.Helper()
	path := filepath.Join(dir, runID+".meta.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// discharge returns n valid samples draining one percent per sample from 95%.
func discharge(n int) []telemetry.Sample {
	samples := make([]telemetry.Sample, n)
	for i := range samples {
		samples[i] = telemetry.Sample{
			Timestamp:  fmt.Sprintf("2024-01-01T00:%02d:00.000000000Z", i%60),
			Percentage: 95 - float64(i)*0.5,
			Watts:      5 + float64(i%4),
			CPULoad:    0.25,
			RAMPct:     40,
			TempC:      45,
			Source:     "sysfs",
		}
	}
	return samples
}

// implausible returns n samples the validator drops.
func implausible(n int) []telemetry.Sample {
	samples := make([]telemetry.Sample, n)
	for i := range samples {
		samples[i] = telemetry.Sample{Percentage: 50, Watts: 150}
	}
	return samples
}
