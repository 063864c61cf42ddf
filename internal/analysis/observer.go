package analysis

import "time"

// Observer receives per-run outcomes from a Loader. Implementations must be
// safe for concurrent use when the loader runs with more than one worker.
type Observer interface {
	RunDiscovered(path string)
	RunAccepted(summary RunSummary, elapsed time.Duration)
	RunRejected(path string, err error, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) RunDiscovered(string)                     {}
func (noopObserver) RunAccepted(RunSummary, time.Duration)    {}
func (noopObserver) RunRejected(string, error, time.Duration) {}
