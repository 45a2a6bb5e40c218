// Package benchutil provides reproducible key sets for benchmarks.
package benchutil

import (
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// IDs returns n unique ids drawn with BenchmarkSeed.
func IDs(n int) []int64 {
	return keys.Generate(n, int64(n)*RangeFactor, BenchmarkSeed)
}

// Digests returns the digest keys of IDs(n).
func Digests(n int) []keys.Digest {
	return keys.Digests(IDs(n))
}
