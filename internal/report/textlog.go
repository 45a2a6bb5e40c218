package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eunmann/pg-keybench/pkg/fileutil"
	"github.com/eunmann/pg-keybench/pkg/humanfmt"
	"github.com/eunmann/pg-keybench/pkg/stats"
)

// WriteLog writes the human-readable report to path.
func WriteLog(path string, meta Meta, results []*stats.Stats) error {
	return fileutil.WriteStream(path, func(w io.Writer) error {
		return EncodeLog(w, meta, results)
	})
}

// EncodeLog renders the report: run header, a summary table and a ranking,
// both ordered by median, and per-strategy details in execution order.
func EncodeLog(w io.Writer, meta Meta, results []*stats.Stats) error {
	var b strings.Builder
	ranked := byMedian(results)

	b.WriteString("PostgreSQL Query Benchmark Results\n")
	b.WriteString("==================================\n")
	fmt.Fprintf(&b, "Run ID: %s\n", meta.RunID)
	fmt.Fprintf(&b, "Timestamp: %s\n", meta.Started.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Host: %s\n", meta.Host)
	fmt.Fprintf(&b, "Key type: %s, exec mode: %s, iterations: %d\n", meta.KeyType, meta.ExecMode, meta.Iterations)
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-35s %8s %12s %12s %12s %12s %12s %8s %10s\n",
		"Benchmark", "Runs", "Median", "Mean", "Min", "Max", "StdDev", "Rows", "InputSize")
	b.WriteString(strings.Repeat("-", 130))
	b.WriteString("\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "%-35s %8d %12s %12s %12s %12s %12s %8d %10d\n",
			r.Name(), r.Len(),
			humanfmt.Duration(r.Median()),
			humanfmt.Duration(r.Mean()),
			humanfmt.Duration(r.Min()),
			humanfmt.Duration(r.Max()),
			humanfmt.Duration(r.StdDev()),
			r.RowsReturned(), r.InputSize())
	}

	b.WriteString("\nDetailed Statistics:\n")
	b.WriteString("===================\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\nBenchmark: %s (%s)\n", r.Name(), r.Description())
		fmt.Fprintf(&b, "  Runs: %d\n", r.Len())
		fmt.Fprintf(&b, "  Input Size: %d IDs\n", r.InputSize())
		fmt.Fprintf(&b, "  Rows Returned: %d\n", r.RowsReturned())
		writeDetail(&b, "Median", r.Median())
		writeDetail(&b, "Mean", r.Mean())
		writeDetail(&b, "Min", r.Min())
		writeDetail(&b, "Max", r.Max())
		writeDetail(&b, "Standard Deviation", r.StdDev())
		writeDetail(&b, "95th Percentile", r.Percentile(95))
		writeDetail(&b, "99th Percentile", r.Percentile(99))
		if m := r.Median(); m > 0 {
			fmt.Fprintf(&b, "  Key Throughput (median): %s keys\n", humanfmt.Rate(int64(r.InputSize()), m))
		}
	}

	b.WriteString("\nPerformance Ranking (by median time):\n")
	b.WriteString("=====================================\n")
	for i, r := range ranked {
		fmt.Fprintf(&b, "%d. %s - %s ms\n", i+1, r.Name(), humanfmt.Millis(r.Median()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDetail(b *strings.Builder, label string, d time.Duration) {
	fmt.Fprintf(b, "  %s: %s ms\n", label, humanfmt.Millis(d))
}

// EncodeRanking writes the short console summary: one line per strategy,
// fastest median first.
func EncodeRanking(w io.Writer, results []*stats.Stats) error {
	var b strings.Builder
	b.WriteString("\nBenchmark Summary:\n")
	b.WriteString("==================\n")
	for i, r := range byMedian(results) {
		fmt.Fprintf(&b, "%d. %s - %s ms median (%d runs)\n", i+1, r.Name(), humanfmt.Millis(r.Median()), r.Len())
	}
	_, err := io.WriteString(w, b.String())
	return err
}
