package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Loader turns a directory of run logs into a corpus of summaries.
type Loader struct {
	minSamples int
	workers    int
	observer   Observer
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers analyzes up to n runs concurrently. Values below 1 are treated
// as 1.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n < 1 {
			n = 1
		}
		l.workers = n
	}
}

// WithObserver reports per-run outcomes to o.
func WithObserver(o Observer) Option {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

func NewLoader(minSamples int, opts ...Option) *Loader {
	l := &Loader{
		minSamples: minSamples,
		workers:    1,
		observer:   noopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadRunSummaries analyzes every run log in dir sequentially.
func LoadRunSummaries(dir string, minSamples int) ([]RunSummary, error) {
	return NewLoader(minSamples).Load(context.Background(), dir)
}

// Load analyzes every *.jsonl file directly inside dir and returns the
// summaries of accepted runs in file name order. Rejected runs are left out
// without an error; only an unreadable directory or a cancelled ctx fails.
func (l *Loader) Load(ctx context.Context, dir string) ([]RunSummary, error) {
	errFactory := errors.New()

	paths, err := discover(dir)
	if err != nil {
		return nil, errFactory.Wrap(ErrReadDir, err)
	}

	logger.Debug().
		Str("dir", dir).
		Int("candidates", len(paths)).
		Int("workers", l.workers).
		Msg("Loading run summaries")

	results := make([]RunSummary, len(paths))
	accepted := make([]bool, len(paths))

	if l.workers <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, errFactory.Wrap(ErrCanceled, err)
			}
			results[i], accepted[i] = l.analyze(path)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.workers)

		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i], accepted[i] = l.analyze(path)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, errFactory.Wrap(ErrCanceled, err)
		}
	}

	summaries := make([]RunSummary, 0, len(paths))
	for i := range results {
		if accepted[i] {
			summaries = append(summaries, results[i])
		}
	}

	logger.Info().
		Str("dir", dir).
		Int("candidates", len(paths)).
		Int("accepted", len(summaries)).
		Msg("Run summaries loaded")

	return summaries, nil
}

func (l *Loader) analyze(path string) (RunSummary, bool) {
	start := time.Now()
	l.observer.RunDiscovered(path)

	summary, err := AnalyzeRun(path, l.minSamples)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Run excluded")
		l.observer.RunRejected(path, err, elapsed)
		return RunSummary{}, false
	}

	l.observer.RunAccepted(summary, elapsed)
	return summary, true
}

// discover lists candidate run logs in dir, sorted by name.
func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), LogExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
