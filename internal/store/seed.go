package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/pkg/keys"
	"github.com/eunmann/pg-keybench/pkg/logging"
)

// SeedBatchRows is the number of rows sent per COPY while seeding.
const SeedBatchRows = 50_000

// SeedOptions configures Seed.
type SeedOptions struct {
	// Rows is the number of rows to load, keyed by ids 1..Rows.
	Rows int64
	// Truncate empties the table before loading.
	Truncate bool
}

// ResponseFor is the response text stored for id.
func ResponseFor(id int64) string {
	return fmt.Sprintf("response-%d", id)
}

// Seed creates the lookup table if needed and loads ids 1..opts.Rows, each
// keyed through keyOf, then analyzes the table.
func Seed[K any](ctx context.Context, p *Pool, t Target, repr keys.Repr[K], keyOf func(int64) K, opts SeedOptions, log zerolog.Logger) error {
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s PRIMARY KEY, %s TEXT NOT NULL);",
		t.QTable(), t.QKey(), repr.ColumnType, t.QValue())
	if _, err := p.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", t.Table, err)
	}
	if opts.Truncate {
		if _, err := p.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s;", t.QTable())); err != nil {
			return fmt.Errorf("truncate %s: %w", t.Table, err)
		}
	}

	batches := (opts.Rows + SeedBatchRows - 1) / SeedBatchRows
	progress := logging.NewProgressTracker("seed", batches, log)
	columns := []string{t.KeyColumn, t.ValueColumn}

	for first := int64(1); first <= opts.Rows; first += SeedBatchRows {
		start := time.Now()
		n := min(SeedBatchRows, opts.Rows-first+1)
		_, err := p.pool.CopyFrom(ctx, pgx.Identifier{t.Table}, columns, pgx.CopyFromSlice(int(n), func(i int) ([]any, error) {
			id := first + int64(i)
			return []any{repr.Param(keyOf(id)), ResponseFor(id)}, nil
		}))
		if err != nil {
			return fmt.Errorf("seed rows %d..%d: %w", first, first+n-1, err)
		}
		progress.RecordCompletion(time.Since(start))
		progress.LogProgress()
	}

	if _, err := p.pool.Exec(ctx, fmt.Sprintf("ANALYZE %s;", t.QTable())); err != nil {
		return fmt.Errorf("analyze %s: %w", t.Table, err)
	}
	log.Info().Int64("rows", opts.Rows).Str("table", t.Table).Dur("elapsed", progress.Elapsed()).Msg("seed complete")
	return nil
}
