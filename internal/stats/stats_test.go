package stats_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/batlab/internal/stats"
	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single p0", []float64{5}, 0, 5},
		{"single p95", []float64{5}, 0.95, 5},
		{"single p1", []float64{5}, 1, 5},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p95", []float64{1, 2, 3, 4}, 0.95, 3.85},
		{"exact index", []float64{1, 2, 3}, 0.5, 2},
		{"min", []float64{1, 2, 3, 4}, 0, 1},
		{"max", []float64{1, 2, 3, 4}, 1, 4},
		{"ties", []float64{2, 2, 2, 9}, 0.5, 2},
		{"above one", []float64{1, 2, 3, 4}, 1.5, 4},
		{"negative", []float64{1, 2, 3, 4}, -0.5, 1},
		{"nan", []float64{1, 2, 3, 4}, math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, stats.Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestMean(t *testing.T) {
	assert.Zero(t, stats.Mean(nil))
	assert.InDelta(t, 2.5, stats.Mean([]float64{1, 2, 3, 4}), 1e-12)
}

func TestStdDev(t *testing.T) {
	assert.Zero(t, stats.StdDev(nil))
	assert.Zero(t, stats.StdDev([]float64{3, 3, 3}))
	assert.InDelta(t, 2.0, stats.StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestSorted(t *testing.T) {
	in := []float64{3, 1, 2}
	out := stats.Sorted(in)

	assert.Equal(t, []float64{1, 2, 3}, out)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestDuration(t *testing.T) {
	assert.Zero(t, stats.Duration(0))
	assert.Zero(t, stats.Duration(1))
	assert.Equal(t, 120.0, stats.Duration(2))
	assert.Equal(t, 7200.0, stats.Duration(120))
}

func TestBatteryDrop(t *testing.T) {
	assert.InDelta(t, 12.5, stats.BatteryDrop(90, 77.5), 1e-12)
	assert.Zero(t, stats.BatteryDrop(70, 70))
	assert.Zero(t, stats.BatteryDrop(60, 75))
}
