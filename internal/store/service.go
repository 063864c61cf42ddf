package store

import (
	"context"

	"codeberg.org/mutker/batlab/internal/analysis"
	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
)

type noopRepository struct{}

// NewService opens the summary store described by cfg. A disabled store
// yields a repository that accepts and discards batches.
func NewService(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Summary store disabled, using no-op repository")
		return noopRepository{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create summary repository")
		return nil, err
	}

	return repo, nil
}

func (noopRepository) SaveBatch(context.Context, *Batch) error {
	return nil
}

func (noopRepository) Runs(context.Context, string) ([]analysis.RunSummary, error) {
	return []analysis.RunSummary{}, nil
}

func (noopRepository) LatestBatchID(context.Context) (string, error) {
	return "", errors.New().New(ErrBatchNotFound)
}

func (noopRepository) IsEnabled() bool {
	return false
}

func (noopRepository) Close() error {
	return nil
}
