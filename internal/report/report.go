// Package report writes benchmark results: CSV files and a text summary in the
// output directory, plus optional Parquet, Prometheus textfile, SQLite
// history and S3 copies.
package report

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/pkg/fileutil"
	"github.com/eunmann/pg-keybench/pkg/logging"
	"github.com/eunmann/pg-keybench/pkg/stats"
	"github.com/eunmann/pg-keybench/pkg/sysmem"
)

// File names inside the output directory.
const (
	RawFileName     = "raw_results.csv"
	SummaryFileName = "summary.csv"
	LogFileName     = "benchmark_results.log"
)

// Meta identifies one benchmark run.
type Meta struct {
	RunID      string
	Started    time.Time
	Host       sysmem.Host
	KeyType    string
	ExecMode   string
	Iterations int
}

// NewMeta stamps a new run.
func NewMeta(keyType, execMode string, iterations int) Meta {
	return Meta{
		RunID:      uuid.NewString(),
		Started:    time.Now().UTC(),
		Host:       sysmem.Detect(),
		KeyType:    keyType,
		ExecMode:   execMode,
		Iterations: iterations,
	}
}

// Options selects the sinks. Empty paths disable the optional sinks.
type Options struct {
	OutDir      string
	ParquetPath string
	PromFile    string
	HistoryDB   string
	S3          S3Options
}

// Write emits every configured sink and returns the files written. Any
// failure is wrapped with bencherr.ErrIO.
func Write(ctx context.Context, opts Options, meta Meta, results []*stats.Stats, log zerolog.Logger) ([]string, error) {
	start := time.Now()

	if removed, err := fileutil.CleanupTmpFiles(opts.OutDir); err != nil {
		return nil, ioErr("clean output dir", err)
	} else if removed > 0 {
		log.Debug().Int("files_removed", removed).Str("dir", opts.OutDir).Msg("removed stale tmp files")
	}

	var files []string
	write := func(path string, fn func(string) error) error {
		if err := fn(path); err != nil {
			return ioErr(filepath.Base(path), err)
		}
		files = append(files, path)
		return nil
	}

	if err := write(filepath.Join(opts.OutDir, RawFileName), func(p string) error {
		return WriteRawCSV(p, results)
	}); err != nil {
		return nil, err
	}
	if err := write(filepath.Join(opts.OutDir, SummaryFileName), func(p string) error {
		return WriteSummaryCSV(p, results)
	}); err != nil {
		return nil, err
	}
	if err := write(filepath.Join(opts.OutDir, LogFileName), func(p string) error {
		return WriteLog(p, meta, results)
	}); err != nil {
		return nil, err
	}
	if opts.ParquetPath != "" {
		if err := write(opts.ParquetPath, func(p string) error {
			return WriteParquet(p, meta, results)
		}); err != nil {
			return nil, err
		}
	}
	if opts.PromFile != "" {
		if err := write(opts.PromFile, func(p string) error {
			return WritePrometheus(p, meta, results)
		}); err != nil {
			return nil, err
		}
	}
	if opts.HistoryDB != "" {
		if err := AppendHistory(ctx, opts.HistoryDB, meta, results); err != nil {
			return nil, ioErr("history", err)
		}
		log.Info().Str("path", opts.HistoryDB).Msg("run recorded in history")
	}
	if opts.S3.URI != "" {
		up, err := NewS3Uploader(ctx, opts.S3)
		if err != nil {
			return nil, ioErr("s3", err)
		}
		keys, err := up.Upload(ctx, meta.RunID, files)
		if err != nil {
			return nil, ioErr("s3 upload", err)
		}
		log.Info().Strs("keys", keys).Str("bucket", up.Bucket()).Msg("results uploaded")
	}

	logging.PhaseComplete(log, "report", time.Since(start)).
		Int("files", len(files)).
		Str("out_dir", opts.OutDir).
		Log("results written")
	return files, nil
}

func ioErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", bencherr.ErrIO, what, err)
}

var descriptionReplacer = strings.NewReplacer(",", ";", "\r\n", " ", "\n", " ", "\r", " ")

// cleanDescription substitutes record separators so a description stays in
// one CSV field.
func cleanDescription(s string) string {
	return descriptionReplacer.Replace(s)
}

// byMedian returns a copy of results ordered by ascending median.
func byMedian(results []*stats.Stats) []*stats.Stats {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b *stats.Stats) int {
		return cmp.Compare(a.Median(), b.Median())
	})
	return sorted
}
