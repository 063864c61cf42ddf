package store

import (
	"context"
	"time"

	"codeberg.org/mutker/batlab/internal/analysis"
	"codeberg.org/mutker/batlab/internal/errors"
	"github.com/google/uuid"
)

// Repository persists analyzed corpora.
type Repository interface {
	SaveBatch(ctx context.Context, batch *Batch) error
	Runs(ctx context.Context, batchID string) ([]analysis.RunSummary, error)
	LatestBatchID(ctx context.Context) (string, error)
	Close() error
	IsEnabled() bool
}

// Batch is one corpus load: the summaries accepted from a data directory
// under a given sample threshold.
type Batch struct {
	ID         string
	DataDir    string
	MinSamples int
	CreatedAt  time.Time
	Summaries  []analysis.RunSummary
}

// NewBatch wraps summaries in a Batch with a fresh id.
func NewBatch(dataDir string, minSamples int, summaries []analysis.RunSummary) *Batch {
	return &Batch{
		ID:         uuid.NewString(),
		DataDir:    dataDir,
		MinSamples: minSamples,
		CreatedAt:  time.Now().UTC(),
		Summaries:  summaries,
	}
}

func (b *Batch) validate() error {
	errFactory := errors.New()

	if b == nil {
		return errFactory.WithMessage(ErrInvalidBatch, "batch is nil")
	}
	if _, err := uuid.Parse(b.ID); err != nil {
		return errFactory.Wrap(ErrInvalidBatch, err)
	}
	return nil
}
