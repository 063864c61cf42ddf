package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"math"
	"strconv"
	"strings"
	"testing"

	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dir, runID string, n int, watts float64) {
	t.Helper()

	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `{"t": "2024-01-01T00:%02d:00Z", "pct": %.1f, "watts": %.3f, "cpu_load": 0.20, "ram_pct": 35.000, "temp_c": 44.00, "src": "sysfs"}`+"\n",
			i, 90-float64(i), watts)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, runID+".jsonl"), []byte(b.String()), 0o600))
}

func TestRun(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	dir := t.TempDir()
	writeLog(t, dir, "2024-01-01T00_host_Linux_tlp_idle", 12, 6)
	writeLog(t, dir, "2024-01-02T00_host_Linux_ppd_idle", 12, 8)
	writeLog(t, dir, "2024-01-03T00_host_Linux_ppd_idle", 3, 8)

	dbPath := filepath.Join(t.TempDir(), "batlab.db")
	promPath := filepath.Join(t.TempDir(), "batlab.prom")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--baseline", "tlp",
		"--store", "--db-path", dbPath,
		"--metrics-file", promPath,
		dir,
	}, &out)
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))

	assert.NotEmpty(t, res.BatchID)
	require.Len(t, res.Summaries, 2)
	assert.Equal(t, "2024-01-01T00_host_Linux_tlp_idle", res.Summaries[0].RunID)
	assert.Equal(t, "ppd", res.Summaries[1].Config)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, "ppd", res.Groups[0].Group)
	require.NotNil(t, res.Groups[0].VsBaselinePct)
	assert.InDelta(t, -33.333, *res.Groups[0].VsBaselinePct, 0.001)

	assert.FileExists(t, dbPath)
	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "batlab_runs_rejected_total 1")
}

func TestRunEmptyCorpus(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{t.TempDir()}, &out))
	assert.Contains(t, out.String(), `"summaries": []`)
	assert.Contains(t, out.String(), `"groups": []`)
}

func TestRunMissingDataDir(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, &out)
	assert.True(t, errors.HasCode(err, errors.ErrLoadCorpus))
	assert.Empty(t, out.String())
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	err := run(context.Background(), []string{"--workers", "0"}, &bytes.Buffer{})
	assert.True(t, errors.HasCode(err, errors.ErrInvalidWorkers))
}

func TestRunRefusesLockedStore(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	dbDir := t.TempDir()
	require.NoError(t, os.WriteFile(pid.Path(dbDir), []byte(strconv.Itoa(os.Getppid())), 0o600))

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--store", "--db-path", filepath.Join(dbDir, "batlab.db"),
		t.TempDir(),
	}, &out)
	assert.True(t, errors.HasCode(err, errors.ErrStoreCorpus))
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
	assert.Empty(t, out.String())
	assert.FileExists(t, pid.Path(dbDir), "a foreign PID file is left alone")
}

func TestRunOverflowingFieldDegrades(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	dir := t.TempDir()
	writeLog(t, dir, "2024-01-01T00_host_Linux_tlp_idle", 12, 6)
	writeLog(t, dir, "2024-01-02T00_host_Linux_ppd_idle", 12, 8)

	// Sixth line of the second run reports an out-of-range temperature.
	path := filepath.Join(dir, "2024-01-02T00_host_Linux_ppd_idle.jsonl")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")
	lines[5] = strings.Replace(lines[5], `"temp_c": 44.00`, `"temp_c": 1e999`, 1)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))

	dbPath := filepath.Join(t.TempDir(), "batlab.db")

	var out bytes.Buffer
	err = run(context.Background(), []string{"--store", "--db-path", dbPath, dir}, &out)
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Summaries, 2)

	ppd := res.Summaries[1]
	assert.Equal(t, 12, ppd.SamplesValid)
	assert.False(t, math.IsInf(ppd.AvgTempC, 0))
	assert.InDelta(t, 44.0*11/12, ppd.AvgTempC, 1e-9, "overflowing field reads as 0")
}

func TestRunDoesNotStoreWhenMetricsFail(t *testing.T) {
	t.Setenv("BATLAB_CONFIG", "")

	dir := t.TempDir()
	writeLog(t, dir, "2024-01-01T00_host_Linux_tlp_idle", 12, 6)

	dbPath := filepath.Join(t.TempDir(), "batlab.db")
	promPath := filepath.Join(t.TempDir(), "missing", "batlab.prom")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--store", "--db-path", dbPath,
		"--metrics-file", promPath,
		dir,
	}, &out)
	assert.True(t, errors.HasCode(err, errors.ErrWriteMetrics))
	assert.Empty(t, out.String())
	assert.NoFileExists(t, dbPath, "no batch is committed for a failed run")
}
