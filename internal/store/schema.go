package store

import (
	"database/sql"

	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS batches (
	       batch_id    TEXT PRIMARY KEY,
	       data_dir    TEXT NOT NULL,
	       min_samples INTEGER NOT NULL CHECK (min_samples >= 0),
	       created_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS runs (
	       batch_id      TEXT NOT NULL REFERENCES batches(batch_id) ON DELETE CASCADE,
	       run_id        TEXT NOT NULL,
	       config        TEXT NOT NULL,
	       os            TEXT NOT NULL,
	       workload      TEXT NOT NULL,
	       samples_total INTEGER NOT NULL,
	       samples_valid INTEGER NOT NULL CHECK (samples_valid <= samples_total),
	       duration_s    REAL NOT NULL,
	       avg_watts     REAL NOT NULL,
	       median_watts  REAL NOT NULL,
	       p95_watts     REAL NOT NULL,
	       avg_cpu_load  REAL NOT NULL,
	       avg_ram_pct   REAL NOT NULL,
	       avg_temp_c    REAL NOT NULL,
	       start_pct     REAL NOT NULL,
	       end_pct       REAL NOT NULL,
	       pct_drop      REAL NOT NULL CHECK (pct_drop >= 0),
	       PRIMARY KEY (batch_id, run_id)
	   );
	   CREATE INDEX IF NOT EXISTS idx_runs_config ON runs (config);`

	insertBatchSQL = `
    INSERT INTO batches (batch_id, data_dir, min_samples, created_at)
    VALUES (?, ?, ?, ?)`

	insertRunSQL = `
    INSERT INTO runs (
        batch_id, run_id,
        config, os, workload,
        samples_total, samples_valid, duration_s,
        avg_watts, median_watts, p95_watts,
        avg_cpu_load, avg_ram_pct, avg_temp_c,
        start_pct, end_pct, pct_drop
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRunsSQL = `
    SELECT
        run_id,
        config, os, workload,
        samples_total, samples_valid, duration_s,
        avg_watts, median_watts, p95_watts,
        avg_cpu_load, avg_ram_pct, avg_temp_c,
        start_pct, end_pct, pct_drop
    FROM runs
    WHERE batch_id = ?
    ORDER BY run_id`

	selectLatestBatchSQL = `
    SELECT batch_id
    FROM batches
    ORDER BY created_at DESC
    LIMIT 1`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version, or 0 for a new database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	errFactory := errors.New()
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
