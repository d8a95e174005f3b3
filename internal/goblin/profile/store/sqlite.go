package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/EvanBalster/perf-goblin/internal/goblin/burdenstat"
	"github.com/EvanBalster/perf-goblin/internal/goblin/profile"
)

// SQLite is a queryable sibling of the textual form: one row per
// (task id, option index) holding the Full accumulator, plus a run log so a
// host application can tell which process produced a given snapshot.
type SQLite struct {
	db *sql.DB

	// Now is an injectable clock for testing.
	Now func() time.Time
}

// OpenSQLite opens (creating if necessary) a profile store at path, which
// may be ":memory:" for a transient store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("goblin: store: open sqlite %q: %w", path, err)
	}
	s := &SQLite{db: db, Now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	for _, stmt := range migrations() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("goblin: store: migrate: %w", err)
		}
	}
	return nil
}

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS profile_options (
			task_id      TEXT NOT NULL,
			option_index INTEGER NOT NULL,
			count        REAL NOT NULL,
			mean         REAL NOT NULL,
			sum_sq       REAL NOT NULL,
			updated_at   TEXT NOT NULL,
			PRIMARY KEY (task_id, option_index)
		)`,
		`CREATE TABLE IF NOT EXISTS profile_runs (
			run_id     TEXT PRIMARY KEY,
			saved_at   TEXT NOT NULL,
			task_count INTEGER NOT NULL
		)`,
	}
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Save writes every task's Full accumulator, stamping a fresh run id and
// returning it.
func (s *SQLite) Save(p *profile.Profile) (runID string, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("goblin: store: save: %w", err)
	}
	defer tx.Rollback()

	now := s.Now().UTC().Format(time.RFC3339Nano)
	ids := p.Ids()
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return "", err
		}
		t := p.Find(id)
		for i, opt := range t.Options {
			if _, err := tx.Exec(
				`INSERT INTO profile_options (task_id, option_index, count, mean, sum_sq, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)
				 ON CONFLICT(task_id, option_index) DO UPDATE SET
				   count=excluded.count, mean=excluded.mean, sum_sq=excluded.sum_sq, updated_at=excluded.updated_at`,
				id, i, opt.Full.K, opt.Full.Mean, opt.Full.SumSq, now,
			); err != nil {
				return "", fmt.Errorf("goblin: store: save task %q option %d: %w", id, i, err)
			}
		}
	}

	runID = uuid.NewString()
	if _, err := tx.Exec(
		`INSERT INTO profile_runs (run_id, saved_at, task_count) VALUES (?, ?, ?)`,
		runID, now, len(ids),
	); err != nil {
		return "", fmt.Errorf("goblin: store: save run log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("goblin: store: save: commit: %w", err)
	}
	return runID, nil
}

// Load reconstructs a profile from every persisted task's Full accumulator.
// Recent accumulators start empty, matching the textual form's semantics.
func (s *SQLite) Load() (*profile.Profile, error) {
	rows, err := s.db.Query(`SELECT task_id, option_index, count, mean, sum_sq FROM profile_options ORDER BY task_id, option_index`)
	if err != nil {
		return nil, fmt.Errorf("goblin: store: load: %w", err)
	}
	defer rows.Close()

	byTask := map[string][]profile.OptionStat{}
	order := []string{}
	for rows.Next() {
		var taskID string
		var idx int
		var count, mean, sumSq float64
		if err := rows.Scan(&taskID, &idx, &count, &mean, &sumSq); err != nil {
			return nil, fmt.Errorf("goblin: store: load: scan: %w", err)
		}
		if _, ok := byTask[taskID]; !ok {
			order = append(order, taskID)
		}
		opts := byTask[taskID]
		for len(opts) <= idx {
			opts = append(opts, profile.OptionStat{})
		}
		opts[idx] = profile.OptionStat{Full: burdenstat.Stat{K: count, Mean: mean, SumSq: sumSq}}
		byTask[taskID] = opts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goblin: store: load: %w", err)
	}

	p := profile.New()
	for _, id := range order {
		p.Assimilate(id, &profile.Task{Options: byTask[id]}, 1)
	}
	return p, nil
}
