package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/eunmann/pg-keybench/pkg/fileutil"
	"github.com/eunmann/pg-keybench/pkg/stats"
)

// Column orders of the CSV files.
var (
	RawHeader = []string{
		"name", "description", "input_size", "rows_returned",
		"run_number", "duration_ms", "duration_ns",
	}
	SummaryHeader = []string{
		"name", "description", "input_size", "rows_returned", "total_runs",
		"mean_ms", "median_ms", "std_dev_ms", "min_ms", "max_ms",
		"p50_ms", "p95_ms", "p99_ms",
	}
)

// WriteRawCSV writes one row per sample to path.
func WriteRawCSV(path string, results []*stats.Stats) error {
	return fileutil.WriteStream(path, func(w io.Writer) error {
		return EncodeRaw(w, results)
	})
}

// WriteSummaryCSV writes one row per strategy to path.
func WriteSummaryCSV(path string, results []*stats.Stats) error {
	return fileutil.WriteStream(path, func(w io.Writer) error {
		return EncodeSummary(w, results)
	})
}

// EncodeRaw writes the raw sample CSV. Milliseconds are truncated.
func EncodeRaw(w io.Writer, results []*stats.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RawHeader); err != nil {
		return err
	}
	for _, r := range results {
		desc := cleanDescription(r.Description())
		for i, d := range r.Runs() {
			err := cw.Write([]string{
				r.Name(),
				desc,
				strconv.Itoa(r.InputSize()),
				strconv.Itoa(r.RowsReturned()),
				strconv.Itoa(i + 1),
				ms(d),
				strconv.FormatInt(d.Nanoseconds(), 10),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeSummary writes the summary CSV. Milliseconds are truncated.
func EncodeSummary(w io.Writer, results []*stats.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for _, r := range results {
		err := cw.Write([]string{
			r.Name(),
			cleanDescription(r.Description()),
			strconv.Itoa(r.InputSize()),
			strconv.Itoa(r.RowsReturned()),
			strconv.Itoa(r.Len()),
			ms(r.Mean()),
			ms(r.Median()),
			ms(r.StdDev()),
			ms(r.Min()),
			ms(r.Max()),
			ms(r.Percentile(50)),
			ms(r.Percentile(95)),
			ms(r.Percentile(99)),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ms(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
