package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists simulation history to a SQLite database.
type SQLiteRecorder struct {
	sqlStore
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reports can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{sqlStore{db: db, now: time.Now}}
	if err := r.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id                TEXT PRIMARY KEY,
		batch_id          TEXT,
		timestamp         INTEGER NOT NULL,
		scenario          TEXT,
		ticker            TEXT,
		fx_ticker         TEXT,
		cross_currency    INTEGER,
		frequency         TEXT,
		total_years       REAL,
		purchase_years    REAL,
		holding_years     REAL,
		maturity          TEXT,
		contribution      REAL,
		holding_rate      REAL,
		conversion_rate   REAL,
		purchase_count    INTEGER,
		total_contributed REAL,
		units_final       REAL,
		effective_price   REAL,
		exit_price        REAL,
		current_price     REAL,
		final_value       REAL,
		profit_ratio      REAL,
		warnings          TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_ts ON simulation_runs(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_batch ON simulation_runs(batch_id)`,

	`CREATE TABLE IF NOT EXISTS goal_seeks (
		id                    TEXT PRIMARY KEY,
		timestamp             INTEGER NOT NULL,
		ticker                TEXT,
		frequency             TEXT,
		total_years           REAL,
		purchase_years        REAL,
		holding_years         REAL,
		maturity              TEXT,
		target                REAL,
		required_contribution REAL,
		achieved_value        REAL,
		iterations            INTEGER,
		converged             INTEGER,
		warnings              TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goal_ts ON goal_seeks(timestamp)`,
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
