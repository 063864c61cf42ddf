package analysis

import (
	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
	"codeberg.org/mutker/batlab/internal/stats"
	"codeberg.org/mutker/batlab/internal/telemetry"
)

const (
	medianFraction = 0.5
	p95Fraction    = 0.95
)

// RunSummary aggregates the valid samples of one run.
type RunSummary struct {
	RunID string `json:"run_id"`
	Metadata
	SamplesTotal int     `json:"samples_total"`
	SamplesValid int     `json:"samples_valid"`
	DurationS    float64 `json:"duration_s"`
	AvgWatts     float64 `json:"avg_watts"`
	MedianWatts  float64 `json:"median_watts"`
	P95Watts     float64 `json:"p95_watts"`
	AvgCPULoad   float64 `json:"avg_cpu_load"`
	AvgRAMPct    float64 `json:"avg_ram_pct"`
	AvgTempC     float64 `json:"avg_temp_c"`
	StartPct     float64 `json:"start_pct"`
	EndPct       float64 `json:"end_pct"`
	PctDrop      float64 `json:"pct_drop"`
}

// AnalyzeRun summarizes the run log at path. Runs with fewer than minSamples
// samples, before or after filtering, are rejected. Every failure carries
// ErrRunRejected and no summary is returned with it.
func AnalyzeRun(path string, minSamples int) (RunSummary, error) {
	errFactory := errors.New()
	runID := RunID(path)

	samples, err := telemetry.ReadFile(path)
	if err != nil {
		return RunSummary{}, errFactory.Wrap(ErrRunRejected, err)
	}

	if len(samples) < minSamples {
		return RunSummary{}, errFactory.Wrap(ErrRunRejected, errFactory.WithData(ErrInsufficientSamples, sampleShortfall{
			Stage:      "ingest",
			Count:      len(samples),
			MinSamples: minSamples,
		}))
	}

	valid := telemetry.Filter(samples)
	if len(valid) < minSamples {
		return RunSummary{}, errFactory.Wrap(ErrRunRejected, errFactory.WithData(ErrInsufficientSamples, sampleShortfall{
			Stage:      "filter",
			Count:      len(valid),
			MinSamples: minSamples,
		}))
	}

	summary := aggregate(valid)
	summary.RunID = runID
	summary.Metadata = ResolveMetadata(path)
	summary.SamplesTotal = len(samples)

	logger.Debug().
		Str("run_id", summary.RunID).
		Str("config", summary.Config).
		Str("os", summary.OS).
		Int("samples_total", summary.SamplesTotal).
		Int("samples_valid", summary.SamplesValid).
		Float64("avg_watts", summary.AvgWatts).
		Msg("Run analyzed")

	return summary, nil
}

// aggregate computes the statistical fields of a summary from filtered
// samples.
func aggregate(valid []telemetry.Sample) RunSummary {
	n := len(valid)
	watts := make([]float64, n)
	cpu := make([]float64, n)
	ram := make([]float64, n)
	temp := make([]float64, n)
	for i, s := range valid {
		watts[i] = s.Watts
		cpu[i] = s.CPULoad
		ram[i] = s.RAMPct
		temp[i] = s.TempC
	}

	sortedWatts := stats.Sorted(watts)

	summary := RunSummary{
		SamplesValid: n,
		DurationS:    stats.Duration(n),
		AvgWatts:     stats.Mean(watts),
		MedianWatts:  stats.Percentile(sortedWatts, medianFraction),
		P95Watts:     stats.Percentile(sortedWatts, p95Fraction),
		AvgCPULoad:   stats.Mean(cpu),
		AvgRAMPct:    stats.Mean(ram),
		AvgTempC:     stats.Mean(temp),
	}

	if n >= 2 {
		summary.StartPct = valid[0].Percentage
		summary.EndPct = valid[n-1].Percentage
		summary.PctDrop = stats.BatteryDrop(summary.StartPct, summary.EndPct)
	}

	return summary
}
