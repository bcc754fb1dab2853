package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS simulation_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at     INTEGER NOT NULL,
			key_hash        TEXT NOT NULL,
			market_key      TEXT,
			liquidated      INTEGER,
			sharpe_ratio    REAL,
			days            INTEGER,
			final_timestamp INTEGER,
			duration_ms     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_key_hash ON simulation_runs(key_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON simulation_runs(recorded_at)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO simulation_runs
			(recorded_at, key_hash, market_key, liquidated, sharpe_ratio, days, final_timestamp, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		rec.KeyHash,
		rec.MarketKey,
		rec.Liquidated,
		rec.SharpeRatio,
		rec.Days,
		rec.FinalTimestamp,
		rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
