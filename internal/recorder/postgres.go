package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresRecorder persists simulation history to PostgreSQL.
type PostgresRecorder struct {
	sqlStore
}

// NewPostgresRecorder connects to dsn, e.g.
// "host=localhost port=5432 user=postgres dbname=dca sslmode=disable",
// and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{sqlStore{db: db, numbered: true, now: time.Now}}
	if err := r.migrate(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id                UUID PRIMARY KEY,
		batch_id          TEXT,
		timestamp         BIGINT NOT NULL,
		scenario          TEXT,
		ticker            TEXT,
		fx_ticker         TEXT,
		cross_currency    BOOLEAN,
		frequency         TEXT,
		total_years       DOUBLE PRECISION,
		purchase_years    DOUBLE PRECISION,
		holding_years     DOUBLE PRECISION,
		maturity          DATE,
		contribution      DOUBLE PRECISION,
		holding_rate      DOUBLE PRECISION,
		conversion_rate   DOUBLE PRECISION,
		purchase_count    INTEGER,
		total_contributed DOUBLE PRECISION,
		units_final       DOUBLE PRECISION,
		effective_price   DOUBLE PRECISION,
		exit_price        DOUBLE PRECISION,
		current_price     DOUBLE PRECISION,
		final_value       DOUBLE PRECISION,
		profit_ratio      DOUBLE PRECISION,
		warnings          TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_ts ON simulation_runs(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_batch ON simulation_runs(batch_id)`,

	`CREATE TABLE IF NOT EXISTS goal_seeks (
		id                    UUID PRIMARY KEY,
		timestamp             BIGINT NOT NULL,
		ticker                TEXT,
		frequency             TEXT,
		total_years           DOUBLE PRECISION,
		purchase_years        DOUBLE PRECISION,
		holding_years         DOUBLE PRECISION,
		maturity              DATE,
		target                DOUBLE PRECISION,
		required_contribution DOUBLE PRECISION,
		achieved_value        DOUBLE PRECISION,
		iterations            INTEGER,
		converged             BOOLEAN,
		warnings              TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goal_ts ON goal_seeks(timestamp)`,
}

func (r *PostgresRecorder) Close() error {
	log.Println("[INFO] closing postgres recorder")
	return r.db.Close()
}
