// Package cli implements the pg-keybench command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eunmann/pg-keybench/internal/config"
	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/pkg/logging"
)

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	return RunContext(context.Background(), args)
}

// RunContext executes the CLI with the given arguments under ctx.
func RunContext(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

// options is the flag state shared by every command.
type options struct {
	cfg config.Config

	noCacheReset bool
	warm         bool
	truncate     bool
}

// resolve folds the negative flags into cfg.
func (o *options) resolve() config.Config {
	cfg := o.cfg
	cfg.DisableCache = !o.noCacheReset
	cfg.ColdQueries = !o.warm
	return cfg
}

// NewRootCommand builds the command tree. Without a subcommand the root runs
// every strategy, like "all".
func NewRootCommand() *cobra.Command {
	opts := &options{cfg: config.Defaults()}

	root := &cobra.Command{
		Use:           "pg-keybench",
		Short:         "Benchmark strategies for bulk key lookups against PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.Init(opts.cfg.Debug, opts.cfg.Human)
			cmd.SetContext(logctx.WithLogger(cmd.Context(), *logging.L()))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmarks(cmd, opts.resolve(), "")
		},
	}
	bindFlags(root.PersistentFlags(), opts)

	root.AddCommand(
		newListCommand(),
		newRunCommand(opts),
		newAllCommand(opts),
		newSeedCommand(opts),
	)
	return root
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	c := &o.cfg
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection string (default $"+config.EnvDatabaseURL+", then "+config.DefaultDatabaseURL+")")
	fs.IntVar(&c.Iterations, "iterations", c.Iterations, "timed runs per strategy")
	fs.IntVar(&c.TestIDs, "test-ids", c.TestIDs, "number of keys looked up per run")
	fs.Int64Var(&c.IDRange, "id-range", c.IDRange, "keys are drawn from ids in [1, id-range)")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed for key generation")
	fs.StringVar(&c.KeyType, "key-type", c.KeyType, "key representation: digest (BYTEA sha-256) or bigint")
	fs.Int32Var(&c.MaxConns, "max-conns", c.MaxConns, "connection pool size")
	fs.StringVar(&c.ExecMode, "exec-mode", c.ExecMode, "pgx query exec mode: cache_statement, cache_describe, describe_exec, exec, simple_protocol")

	fs.BoolVar(&o.noCacheReset, "no-cache-reset", false, "skip DISCARD PLANS and statistics reset between runs")
	fs.BoolVar(&o.warm, "warm", false, "do not reset caches before each iteration")
	fs.BoolVar(&c.ValidateResults, "validate", false, "discard runs returning more rows than keys or an empty response")
	fs.BoolVar(&c.SettleGC, "settle-gc", false, "force a garbage collection before each timed run")

	fs.StringVar(&c.OutDir, "out", c.OutDir, "directory for CSV and log results")
	fs.StringVar(&c.ParquetPath, "parquet", "", "also write raw samples to this Parquet file")
	fs.StringVar(&c.PromFile, "prom-file", "", "also write summary gauges to this Prometheus textfile")
	fs.StringVar(&c.HistoryDB, "history-db", "", "append the run to this SQLite history database")
	fs.StringVar(&c.S3URI, "s3-uri", "", "upload result files under s3://bucket/prefix/<run-id>/")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", "", "custom S3 endpoint (MinIO, LocalStack)")
	fs.BoolVar(&c.S3PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	fs.BoolVar(&c.S3Compress, "s3-compress", false, "upload text results zstd-compressed")

	fs.Int64Var(&c.SeedRows, "seed-rows", c.SeedRows, "rows loaded by the seed command")

	fs.BoolVar(&c.Debug, "debug", false, "enable debug logging")
	fs.BoolVar(&c.Human, "human", false, "human-readable console logs instead of JSON")
}
