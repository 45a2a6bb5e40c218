package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/config"
	"github.com/eunmann/pg-keybench/internal/harness"
	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/internal/report"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/internal/strategy"
	"github.com/eunmann/pg-keybench/pkg/keys"
	"github.com/eunmann/pg-keybench/pkg/logging"
	"github.com/eunmann/pg-keybench/pkg/stats"
)

// runBenchmarks runs the strategy called only, or every strategy when only
// is empty, and writes the results.
func runBenchmarks(cmd *cobra.Command, cfg config.Config, only string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logctx.FromContext(ctx)

	pool, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	ids := keys.Generate(cfg.TestIDs, cfg.IDRange, cfg.Seed)
	log.Info().
		Int("keys", len(ids)).
		Int64("id_range", cfg.IDRange).
		Uint64("seed", cfg.Seed).
		Str("key_type", cfg.KeyType).
		Msg("generated test keys")

	var results []*stats.Stats
	switch cfg.KeyType {
	case config.KeyTypeBigInt:
		results, err = benchmark(ctx, cfg, pool, keys.BigIntRepr, ids, only, log)
	default:
		results, err = benchmark(ctx, cfg, pool, keys.DigestRepr, keys.Digests(ids), only, log)
	}
	if err != nil {
		return err
	}

	if err := writeResults(ctx, cmd.OutOrStdout(), cfg, results, log); err != nil {
		return err
	}
	logging.PhaseComplete(log, "benchmark", time.Since(start)).
		Int("strategies_completed", len(results)).
		Log("benchmark completed")

	if len(results) == 0 {
		return fmt.Errorf("%w: no strategy completed a run", bencherr.ErrBenchmarkFailed)
	}
	return nil
}

// benchmark runs the selected strategies over ks and returns the statistics
// of those that produced at least one sample.
func benchmark[K any](ctx context.Context, cfg config.Config, db store.DB, repr keys.Repr[K], ks []K, only string, log zerolog.Logger) ([]*stats.Stats, error) {
	target := store.DefaultTarget()
	strategies := strategy.All(repr, target)
	if only != "" {
		st, ok := strategy.ByName(only, repr, target)
		if !ok {
			return nil, fmt.Errorf("%w: strategy %q", bencherr.ErrNotFound, only)
		}
		strategies = []strategy.Strategy[K]{st}
	}

	env := strategy.NewEnv(db)
	env.ColdQueries = cfg.ColdQueries
	env.DisableCache = cfg.DisableCache

	log.Info().
		Int("strategies", len(strategies)).
		Int("iterations", cfg.Iterations).
		Bool("cold_queries", env.ColdQueries).
		Bool("disable_cache", env.DisableCache).
		Msg("running benchmarks")

	suite := harness.New[K](env, harness.Config{
		Iterations: cfg.Iterations,
		Validate:   cfg.ValidateResults,
		SettleGC:   cfg.SettleGC,
	}, log)
	return suite.RunAll(ctx, strategies, ks), nil
}

// writeResults emits every configured sink and prints the ranking to out.
func writeResults(ctx context.Context, out io.Writer, cfg config.Config, results []*stats.Stats, log zerolog.Logger) error {
	meta := report.NewMeta(cfg.KeyType, cfg.ExecMode, cfg.Iterations)
	files, err := report.Write(ctx, report.Options{
		OutDir:      cfg.OutDir,
		ParquetPath: cfg.ParquetPath,
		PromFile:    cfg.PromFile,
		HistoryDB:   cfg.HistoryDB,
		S3: report.S3Options{
			URI:       cfg.S3URI,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			Compress:  cfg.S3Compress,
		},
	}, meta, results, log)
	if err != nil {
		return err
	}
	log.Info().Str("run_id", meta.RunID).Strs("files", files).Msg("results written")
	return report.EncodeRanking(out, results)
}

// runSeed loads the lookup table for the configured key type.
func runSeed(cmd *cobra.Command, cfg config.Config, truncate bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SeedRows == 0 {
		return errors.New("--seed-rows must be positive to seed")
	}
	ctx := cmd.Context()
	log := logctx.FromContext(ctx)

	pool, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	opts := store.SeedOptions{Rows: cfg.SeedRows, Truncate: truncate}
	target := store.DefaultTarget()
	if cfg.KeyType == config.KeyTypeBigInt {
		return store.Seed(ctx, pool, target, keys.BigIntRepr, func(id int64) int64 { return id }, opts, log)
	}
	return store.Seed(ctx, pool, target, keys.DigestRepr, keys.DigestOf, opts, log)
}

func connect(ctx context.Context, cfg config.Config, log zerolog.Logger) (*store.Pool, error) {
	url, source, err := config.ResolveDatabaseURL(cfg.DatabaseURL, config.DefaultEnvFile)
	if err != nil {
		return nil, err
	}
	mode, err := store.ParseExecMode(cfg.ExecMode)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", string(source)).Int32("max_conns", cfg.MaxConns).Str("exec_mode", cfg.ExecMode).Msg("connecting to database")

	pool, err := store.Open(ctx, url, store.Options{MaxConns: cfg.MaxConns, ExecMode: mode})
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", bencherr.ErrStore, err)
	}
	return pool, nil
}
