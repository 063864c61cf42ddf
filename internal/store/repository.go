package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/batlab/internal/analysis"
	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config
	mu     sync.Mutex
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal_mode=WAL&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := ValidateAndUpdateSchema(db, cfg.backupDir(), log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Summary store initialized")

	return &repository{
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

func (r *repository) SaveBatch(ctx context.Context, batch *Batch) error {
	errFactory := errors.New()

	if err := batch.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to begin transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				r.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, insertBatchSQL,
		batch.ID,
		batch.DataDir,
		batch.MinSamples,
		batch.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to prepare statement")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for i := range batch.Summaries {
		s := &batch.Summaries[i]
		if _, err := stmt.ExecContext(ctx,
			batch.ID, s.RunID,
			s.Config, s.OS, s.Workload,
			s.SamplesTotal, s.SamplesValid, s.DurationS,
			s.AvgWatts, s.MedianWatts, s.P95Watts,
			s.AvgCPULoad, s.AvgRAMPct, s.AvgTempC,
			s.StartPct, s.EndPct, s.PctDrop,
		); err != nil {
			r.logger.Error().Err(err).Str("run_id", s.RunID).Msg("Failed to execute insert")
			return errFactory.WithData(ErrTransactionFailed, struct {
				RunID string
				Error string
			}{
				RunID: s.RunID,
				Error: err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to commit transaction")
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	r.logger.Debug().
		Str("batch_id", batch.ID).
		Int("runs", len(batch.Summaries)).
		Msg("Stored run summaries")

	return nil
}

func (r *repository) Runs(ctx context.Context, batchID string) ([]analysis.RunSummary, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectRunsSQL, batchID)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	summaries := []analysis.RunSummary{}
	for rows.Next() {
		var s analysis.RunSummary
		if err := rows.Scan(
			&s.RunID,
			&s.Config, &s.OS, &s.Workload,
			&s.SamplesTotal, &s.SamplesValid, &s.DurationS,
			&s.AvgWatts, &s.MedianWatts, &s.P95Watts,
			&s.AvgCPULoad, &s.AvgRAMPct, &s.AvgTempC,
			&s.StartPct, &s.EndPct, &s.PctDrop,
		); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return summaries, nil
}

func (r *repository) LatestBatchID(ctx context.Context) (string, error) {
	errFactory := errors.New()

	var id string
	err := r.db.QueryRowContext(ctx, selectLatestBatchSQL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errFactory.New(ErrBatchNotFound)
	}
	if err != nil {
		return "", errFactory.Wrap(ErrStorageAccess, err)
	}
	return id, nil
}

func (*repository) IsEnabled() bool {
	return true
}

func (r *repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Info().Msg("Summary store closed")

	return nil
}
