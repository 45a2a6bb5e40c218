package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/eunmann/pg-keybench/pkg/stats"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	host TEXT NOT NULL,
	key_type TEXT NOT NULL,
	exec_mode TEXT NOT NULL,
	iterations INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS summaries (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	input_size INTEGER NOT NULL,
	rows_returned INTEGER NOT NULL,
	total_runs INTEGER NOT NULL,
	mean_ns INTEGER NOT NULL,
	median_ns INTEGER NOT NULL,
	std_dev_ns INTEGER NOT NULL,
	min_ns INTEGER NOT NULL,
	max_ns INTEGER NOT NULL,
	p50_ns INTEGER NOT NULL,
	p95_ns INTEGER NOT NULL,
	p99_ns INTEGER NOT NULL,
	PRIMARY KEY (run_id, name)
);
`

// OpenHistory opens (creating if needed) the SQLite run history at path.
func OpenHistory(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// AppendHistory records the run and one summary row per strategy in a single
// transaction, so a run is either fully recorded or absent.
func AppendHistory(ctx context.Context, path string, meta Meta, results []*stats.Stats) error {
	db, err := OpenHistory(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, started_at, host, key_type, exec_mode, iterations) VALUES (?, ?, ?, ?, ?, ?)",
		meta.RunID, meta.Started.UTC().Format(time.RFC3339), meta.Host.String(), meta.KeyType, meta.ExecMode, meta.Iterations)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO summaries (
		run_id, name, description, input_size, rows_returned, total_runs,
		mean_ns, median_ns, std_dev_ns, min_ns, max_ns, p50_ns, p95_ns, p99_ns
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare summary insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.ExecContext(ctx,
			meta.RunID, r.Name(), r.Description(), r.InputSize(), r.RowsReturned(), r.Len(),
			int64(r.Mean()), int64(r.Median()), int64(r.StdDev()), int64(r.Min()), int64(r.Max()),
			int64(r.Percentile(50)), int64(r.Percentile(95)), int64(r.Percentile(99)))
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", r.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
