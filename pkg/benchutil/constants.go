package benchutil

// Shared constants for benchmarks across packages.

// BenchmarkSeed is the default seed for reproducible key sets.
const BenchmarkSeed = 42

// RangeFactor sets the id range of generated keys to RangeFactor times the
// key count, keeping collisions rare.
const RangeFactor = 16

// Standard key counts for quick runs. 60000 matches the default population.
var BenchmarkSizes = []int{1000, 10000, 60000}

// ScalingSizes are larger populations, used with PGKEYBENCH_LONG_BENCH=1.
var ScalingSizes = []int{250000, 1000000}
