// Package harness measures strategies: it runs each one for a fixed number of
// iterations against the same key set and collects the latency samples.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/internal/strategy"
	"github.com/eunmann/pg-keybench/pkg/humanfmt"
	"github.com/eunmann/pg-keybench/pkg/logging"
	"github.com/eunmann/pg-keybench/pkg/memdiag"
	"github.com/eunmann/pg-keybench/pkg/stats"
)

// Config controls how each strategy is measured.
type Config struct {
	// Iterations is the number of timed runs per strategy.
	Iterations int
	// Validate checks every result with strategy.Validate; a failed check
	// discards the sample.
	Validate bool
	// SettleGC forces a garbage collection before each timed run.
	SettleGC bool
}

// Suite runs strategies sequentially and keeps the statistics of every
// strategy that produced at least one sample.
type Suite[K any] struct {
	env     *strategy.Env
	cfg     Config
	log     zerolog.Logger
	results []*stats.Stats
}

// New returns an empty suite.
func New[K any](env *strategy.Env, cfg Config, log zerolog.Logger) *Suite[K] {
	return &Suite[K]{env: env, cfg: cfg, log: log}
}

// Results returns the statistics gathered so far in execution order.
func (s *Suite[K]) Results() []*stats.Stats {
	return s.results
}

// RunAll runs every strategy in order. A strategy that fails entirely is
// logged and left out of the results; the remaining strategies still run.
func (s *Suite[K]) RunAll(ctx context.Context, strategies []strategy.Strategy[K], keys []K) []*stats.Stats {
	for _, st := range strategies {
		if _, err := s.Run(ctx, st, keys); err != nil {
			s.log.Error().Err(err).Str("strategy", st.Name()).Msg("strategy excluded from results")
		}
	}
	return s.results
}

// Run measures one strategy. It returns an error, and records nothing, when
// the warmup fails or no iteration succeeds.
func (s *Suite[K]) Run(ctx context.Context, st strategy.Strategy[K], keys []K) (*stats.Stats, error) {
	name := st.Name()
	log := s.log.With().Str("strategy", name).Logger()
	ctx = logctx.WithLogger(ctx, log)

	log.Info().
		Str("description", st.Description()).
		Int("input_size", len(keys)).
		Int("iterations", s.cfg.Iterations).
		Msg("benchmark started")
	start := time.Now()

	if st.NeedsWarmup() {
		if _, err := st.Run(ctx, s.env, keys); err != nil {
			log.Error().Err(err).Msg("warmup failed")
			return nil, fmt.Errorf("%s warmup: %w", name, err)
		}
	}

	engine := stats.New(name, st.Description(), len(keys))
	progress := logging.NewProgressTracker(name, int64(s.cfg.Iterations), log)

	for i := 1; i <= s.cfg.Iterations; i++ {
		elapsed, rows, err := s.iterate(ctx, st, keys, i)
		if err != nil {
			log.Warn().Err(err).Int("iteration", i).Msg("iteration failed")
			progress.RecordSkip()
		} else {
			engine.AddResult(elapsed, rows)
			progress.RecordCompletion(elapsed)
			log.Info().
				Int("iteration", i).
				Str("duration_ms", humanfmt.Millis(elapsed)).
				Int("rows", rows).
				Msg("iteration complete")
		}
		progress.LogProgress()
	}

	if err := st.Cleanup(ctx, s.env); err != nil {
		log.Warn().Err(err).Msg("cleanup failed")
	}

	if engine.Len() == 0 {
		return nil, fmt.Errorf("%w: %s: no successful iterations out of %d",
			bencherr.ErrBenchmarkFailed, name, s.cfg.Iterations)
	}
	s.results = append(s.results, engine)

	logging.StrategyComplete(log, name, time.Since(start)).
		ProgressFromTracker(progress).
		Int("rows_returned", engine.RowsReturned()).
		Dur("mean", engine.Mean()).
		Dur("median", engine.Median()).
		Dur("p95", engine.Percentile(95)).
		Log("benchmark finished")
	return engine, nil
}

func (s *Suite[K]) iterate(ctx context.Context, st strategy.Strategy[K], keys []K, i int) (time.Duration, int, error) {
	ctx = logctx.ForIteration(ctx, i)
	log := logctx.FromContext(ctx)

	if s.env.ColdQueries {
		if err := s.env.ClearCaches(ctx); err != nil {
			log.Warn().Err(err).Msg("cache reset failed")
		}
	}
	if s.cfg.SettleGC {
		memdiag.Settle(log)
	}

	start := time.Now()
	records, err := st.Run(ctx, s.env, keys)
	elapsed := time.Since(start)
	if err != nil {
		return 0, 0, err
	}

	if s.cfg.Validate {
		if err := strategy.Validate(records, len(keys)); err != nil {
			return 0, 0, err
		}
	}
	return elapsed, len(records), nil
}
