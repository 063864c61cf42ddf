package observability

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/batlab/internal/analysis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromObsMetrics(t *testing.T) {
	obs, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	obs.RunDiscovered("a.jsonl")
	obs.RunDiscovered("b.jsonl")
	obs.RunAccepted(analysis.RunSummary{SamplesTotal: 20, SamplesValid: 18}, 2*time.Millisecond)
	obs.RunRejected("b.jsonl", stderrors.New("too short"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(obs.counters[RunsDiscoveredTotal]))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.counters[RunsAcceptedTotal]))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.counters[RunsRejectedTotal]))
	assert.Equal(t, 20.0, testutil.ToFloat64(obs.counters[SamplesTotal]))
	assert.Equal(t, 18.0, testutil.ToFloat64(obs.counters[SamplesValidTotal]))

	hCollector := obs.histos[RunAnalysisSeconds].(prometheus.Collector)
	assert.Equal(t, 1, testutil.CollectAndCount(hCollector))

	obs.IncCounter("unknown_metric", 1)
	obs.ObserveLatency("unknown_metric", 1)
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	obs, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	obs.RunDiscovered("a.jsonl")

	path := filepath.Join(t.TempDir(), "batlab.prom")
	require.NoError(t, obs.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), RunsDiscoveredTotal+" 1"))
}
