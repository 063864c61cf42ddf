package observability

import (
	"time"

	"codeberg.org/mutker/batlab/internal/analysis"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunsDiscoveredTotal = "batlab_runs_discovered_total"
	RunsAcceptedTotal   = "batlab_runs_accepted_total"
	RunsRejectedTotal   = "batlab_runs_rejected_total"
	SamplesTotal        = "batlab_samples_total"
	SamplesValidTotal   = "batlab_samples_valid_total"
	RunAnalysisSeconds  = "batlab_run_analysis_seconds"
)

// PromObs records corpus loading outcomes as Prometheus metrics. It
// implements analysis.Observer.
type PromObs struct {
	gatherer prometheus.Gatherer
	counters map[string]prometheus.Counter
	histos   map[string]prometheus.Observer
}

var _ analysis.Observer = (*PromObs)(nil)

// New registers the analysis metrics on reg.
func New(reg *prometheus.Registry) (*PromObs, error) {
	discovered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: RunsDiscoveredTotal,
		Help: "Run logs found in the data directory.",
	})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: RunsAcceptedTotal,
		Help: "Runs summarized into the corpus.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: RunsRejectedTotal,
		Help: "Runs excluded for I/O failure or too few valid samples.",
	})
	samples := prometheus.NewCounter(prometheus.CounterOpts{
		Name: SamplesTotal,
		Help: "Samples read from accepted runs before filtering.",
	})
	valid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: SamplesValidTotal,
		Help: "Samples of accepted runs that passed range validation.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    RunAnalysisSeconds,
		Help:    "Time spent analyzing a single run log.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	for _, c := range []prometheus.Collector{discovered, accepted, rejected, samples, valid, latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PromObs{
		gatherer: reg,
		counters: map[string]prometheus.Counter{
			RunsDiscoveredTotal: discovered,
			RunsAcceptedTotal:   accepted,
			RunsRejectedTotal:   rejected,
			SamplesTotal:        samples,
			SamplesValidTotal:   valid,
		},
		histos: map[string]prometheus.Observer{
			RunAnalysisSeconds: latency,
		},
	}, nil
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) RunDiscovered(string) {
	p.IncCounter(RunsDiscoveredTotal, 1)
}

func (p *PromObs) RunAccepted(s analysis.RunSummary, elapsed time.Duration) {
	p.IncCounter(RunsAcceptedTotal, 1)
	p.IncCounter(SamplesTotal, float64(s.SamplesTotal))
	p.IncCounter(SamplesValidTotal, float64(s.SamplesValid))
	p.ObserveLatency(RunAnalysisSeconds, elapsed.Seconds())
}

func (p *PromObs) RunRejected(_ string, _ error, elapsed time.Duration) {
	p.IncCounter(RunsRejectedTotal, 1)
	p.ObserveLatency(RunAnalysisSeconds, elapsed.Seconds())
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format read by the node exporter textfile collector.
func (p *PromObs) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.gatherer)
}
