// Package strategy implements the query techniques under comparison.
//
// Every technique resolves a key set into the matching rows of one lookup
// table. Each is generic over the key type so that one implementation serves
// both the digest and the bigint representation.
package strategy

import (
	"context"
	"fmt"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/store"
)

// Strategy is one query technique.
type Strategy[K any] interface {
	// Name identifies the strategy for selection and in results.
	Name() string
	// Description is a one-line summary of the technique.
	Description() string
	// Run resolves keys and returns every matching record. An empty key set
	// yields an empty result. On error no records are returned.
	Run(ctx context.Context, env *Env, keys []K) ([]store.Record, error)
	// Cleanup runs once after the last iteration.
	Cleanup(ctx context.Context, env *Env) error
	// NeedsWarmup reports whether one untimed run should precede measurement.
	NeedsWarmup() bool
}

// Env is the execution context shared by every strategy in a run.
type Env struct {
	DB store.DB

	// ColdQueries resets server caches before every timed iteration.
	ColdQueries bool
	// DisableCache makes ClearCaches discard plans and statistics; when false
	// ClearCaches does nothing.
	DisableCache bool
}

// NewEnv returns an Env in cold-query mode.
func NewEnv(db store.DB) *Env {
	return &Env{
		DB:           db,
		ColdQueries:  true,
		DisableCache: true,
	}
}

// ClearCaches discards cached query plans and resets collected statistics.
// Reloading the server configuration is attempted but may be refused.
func (e *Env) ClearCaches(ctx context.Context) error {
	if !e.DisableCache {
		return nil
	}
	if err := e.DB.Exec(ctx, "DISCARD PLANS;"); err != nil {
		return fmt.Errorf("%w: discard plans: %w", bencherr.ErrStore, err)
	}
	if err := e.DB.Exec(ctx, "SELECT pg_stat_reset();"); err != nil {
		return fmt.Errorf("%w: reset statistics: %w", bencherr.ErrStore, err)
	}
	_ = e.DB.Exec(ctx, "SELECT pg_reload_conf();")
	return nil
}

// base carries the identity of a strategy and its default behavior.
type base struct {
	name        string
	description string
}

func (b base) Name() string        { return b.name }
func (b base) Description() string { return b.description }
func (b base) NeedsWarmup() bool   { return false }

func (b base) Cleanup(ctx context.Context, env *Env) error {
	return env.ClearCaches(ctx)
}

func storeErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", bencherr.ErrStore, what, err)
}

func selectPrefix(t store.Target) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", t.QValue(), t.QTable(), t.QKey())
}

// Validate checks a lookup result: no more than maxExpected records and no
// empty responses.
func Validate(records []store.Record, maxExpected int) error {
	if len(records) > maxExpected {
		return fmt.Errorf("%w: too many results returned: %d > %d", bencherr.ErrBenchmarkFailed, len(records), maxExpected)
	}
	for i, r := range records {
		if r.Response == "" {
			return fmt.Errorf("%w: empty response at index %d", bencherr.ErrBenchmarkFailed, i)
		}
	}
	return nil
}
