package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eunmann/pg-keybench/pkg/stats"
)

const namespace = "pgkeybench"

// WritePrometheus writes the summary statistics in the Prometheus text
// format, for the node exporter textfile collector.
func WritePrometheus(path string, meta Meta, results []*stats.Stats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	constLabels := prometheus.Labels{"key_type": meta.KeyType}
	latency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "latency_seconds",
		Help:        "Lookup latency statistic per strategy.",
		ConstLabels: constLabels,
	}, []string{"strategy", "stat"})
	samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "samples",
		Help:        "Successful timed iterations per strategy.",
		ConstLabels: constLabels,
	}, []string{"strategy"})
	rows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "rows_returned",
		Help:        "Rows returned by the last successful iteration.",
		ConstLabels: constLabels,
	}, []string{"strategy"})
	inputSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "input_keys",
		Help:        "Keys looked up per iteration.",
		ConstLabels: constLabels,
	})
	finished := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the report was written.",
		ConstLabels: constLabels,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(latency, samples, rows, inputSize, finished)

	for _, r := range results {
		stat := func(name string, d time.Duration) {
			latency.WithLabelValues(r.Name(), name).Set(d.Seconds())
		}
		stat("mean", r.Mean())
		stat("median", r.Median())
		stat("stddev", r.StdDev())
		stat("min", r.Min())
		stat("max", r.Max())
		stat("p50", r.Percentile(50))
		stat("p95", r.Percentile(95))
		stat("p99", r.Percentile(99))
		samples.WithLabelValues(r.Name()).Set(float64(r.Len()))
		rows.WithLabelValues(r.Name()).Set(float64(r.RowsReturned()))
		inputSize.Set(float64(r.InputSize()))
	}
	finished.SetToCurrentTime()

	return prometheus.WriteToTextfile(path, reg)
}
