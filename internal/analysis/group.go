package analysis

import (
	"sort"

	"codeberg.org/mutker/batlab/internal/stats"
)

// GroupKey selects the summary field runs are grouped by.
type GroupKey string

const (
	GroupByConfig   GroupKey = "config"
	GroupByOS       GroupKey = "os"
	GroupByWorkload GroupKey = "workload"

	// noWorkload names the group of runs logged without a workload.
	noWorkload = "none"
)

// IsValid reports whether k names a groupable field.
func (k GroupKey) IsValid() bool {
	switch k {
	case GroupByConfig, GroupByOS, GroupByWorkload:
		return true
	default:
		return false
	}
}

// GroupStats describes the average power draw of a group of runs.
type GroupStats struct {
	Group          string  `json:"group"`
	Runs           int     `json:"runs"`
	AvgWattsMean   float64 `json:"avg_watts_mean"`
	AvgWattsStdDev float64 `json:"avg_watts_stddev"`
	// VsBaselinePct is positive when the group draws less power than the
	// baseline group. Nil without a baseline.
	VsBaselinePct *float64 `json:"vs_baseline_pct,omitempty"`
}

// GroupBy partitions summaries by key and computes per-group statistics over
// each run's avg_watts. Unknown keys group by config. When baseline names one
// of the resulting groups, every group is compared against it. The result is
// sorted by group name.
func GroupBy(summaries []RunSummary, key GroupKey, baseline string) []GroupStats {
	groups := make(map[string][]float64)
	for _, s := range summaries {
		name := groupName(s, key)
		groups[name] = append(groups[name], s.AvgWatts)
	}

	var baselineMean *float64
	if watts, ok := groups[baseline]; ok && baseline != "" {
		mean := stats.Mean(watts)
		baselineMean = &mean
	}

	result := make([]GroupStats, 0, len(groups))
	for name, watts := range groups {
		gs := GroupStats{
			Group:          name,
			Runs:           len(watts),
			AvgWattsMean:   stats.Mean(watts),
			AvgWattsStdDev: stats.StdDev(watts),
		}
		if baselineMean != nil && *baselineMean != 0 {
			pct := (*baselineMean - gs.AvgWattsMean) / *baselineMean * 100
			gs.VsBaselinePct = &pct
		}
		result = append(result, gs)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Group < result[j].Group
	})
	return result
}

func groupName(s RunSummary, key GroupKey) string {
	switch key {
	case GroupByOS:
		return s.OS
	case GroupByWorkload:
		if s.Workload == "" {
			return noWorkload
		}
		return s.Workload
	default:
		return s.Config
	}
}
