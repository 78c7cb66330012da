package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"DCASimulator/internal/model"

	"github.com/google/uuid"
)

// sqlStore implements Recorder over database/sql. The SQLite and Postgres
// recorders differ only in driver, schema types and placeholder style.
type sqlStore struct {
	db       *sql.DB
	mu       sync.Mutex
	numbered bool
	now      func() time.Time
}

func (s *sqlStore) RecordSimulation(run *SimulationRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertRun(s.db, run)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *sqlStore) insertRun(ex execer, run *SimulationRun) (string, error) {
	if run.Result == nil {
		return "", fmt.Errorf("record simulation: nil result")
	}
	id := uuid.NewString()
	q := `INSERT INTO simulation_runs (` + runColumns + `) VALUES (` + placeholders(24, s.numbered) + `)`
	if _, err := ex.Exec(q, runArgs(id, s.now(), run)...); err != nil {
		return "", fmt.Errorf("insert simulation run: %w", err)
	}
	return id, nil
}

// RecordScenarios stores the three runs of a scenario set in one transaction
// and returns their shared batch ID.
func (s *sqlStore) RecordScenarios(p model.SimulationParams, set *model.ScenarioSet) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	batchID := uuid.NewString()
	for _, run := range scenarioRuns(batchID, p, set) {
		if _, err := s.insertRun(tx, run); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("%s scenario: %w", run.Scenario, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return batchID, nil
}

func (s *sqlStore) RecordGoalSeek(evt *GoalSeekEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if evt.Result == nil {
		return "", fmt.Errorf("record goal seek: nil result")
	}
	id := uuid.NewString()
	q := `INSERT INTO goal_seeks (` + goalColumns + `) VALUES (` + placeholders(14, s.numbered) + `)`
	if _, err := s.db.Exec(q, goalArgs(id, s.now(), evt)...); err != nil {
		return "", fmt.Errorf("insert goal seek: %w", err)
	}
	return id, nil
}

// RecentRuns returns up to limit stored runs, newest first.
func (s *sqlStore) RecentRuns(limit int) ([]RunSummary, error) {
	q := `SELECT id, timestamp, scenario, ticker, contribution, final_value, profit_ratio
		FROM simulation_runs ORDER BY timestamp DESC, scenario LIMIT ` + placeholders(1, s.numbered)
	rows, err := s.db.Query(q, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Scenario, &r.Ticker, &r.Contribution, &r.FinalValue, &r.ProfitRatio); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) migrate(stmts []string) error {
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec %q: %w", q[:40], err)
		}
	}
	return nil
}
