package benchutil

import (
	"os"
	"testing"
)

// LongBenchEnv gates the scaling benchmarks.
const LongBenchEnv = "PGKEYBENCH_LONG_BENCH"

// SkipIfNoLongBench skips the benchmark unless PGKEYBENCH_LONG_BENCH is set.
func SkipIfNoLongBench(b *testing.B) {
	if os.Getenv(LongBenchEnv) == "" {
		b.Skip("set " + LongBenchEnv + "=1 to run scaling benchmark")
	}
}

// Sizes returns BenchmarkSizes, extended with ScalingSizes when long
// benchmarks are enabled.
func Sizes() []int {
	if os.Getenv(LongBenchEnv) == "" {
		return BenchmarkSizes
	}
	return append(append([]int{}, BenchmarkSizes...), ScalingSizes...)
}
