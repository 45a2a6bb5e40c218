package report

import (
	"github.com/parquet-go/parquet-go"

	"github.com/eunmann/pg-keybench/pkg/fileutil"
	"github.com/eunmann/pg-keybench/pkg/stats"
)

// SampleRow is one timed sample in the Parquet export.
type SampleRow struct {
	RunID        string `parquet:"run_id"`
	KeyType      string `parquet:"key_type"`
	Name         string `parquet:"name"`
	Description  string `parquet:"description"`
	InputSize    int64  `parquet:"input_size"`
	RowsReturned int64  `parquet:"rows_returned"`
	RunNumber    int32  `parquet:"run_number"`
	DurationNs   int64  `parquet:"duration_ns"`
}

// SampleRows flattens results into one row per sample.
func SampleRows(meta Meta, results []*stats.Stats) []SampleRow {
	var rows []SampleRow
	for _, r := range results {
		for i, d := range r.Runs() {
			rows = append(rows, SampleRow{
				RunID:        meta.RunID,
				KeyType:      meta.KeyType,
				Name:         r.Name(),
				Description:  r.Description(),
				InputSize:    int64(r.InputSize()),
				RowsReturned: int64(r.RowsReturned()),
				RunNumber:    int32(i + 1),
				DurationNs:   d.Nanoseconds(),
			})
		}
	}
	return rows
}

// WriteParquet writes every sample to a Parquet file at path.
func WriteParquet(path string, meta Meta, results []*stats.Stats) error {
	rows := SampleRows(meta, results)
	return fileutil.WriteTmpThenMove(path, func(tmpPath string) error {
		return parquet.WriteFile(tmpPath, rows)
	})
}
