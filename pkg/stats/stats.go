// Package stats summarizes the wall-clock samples of one benchmarked strategy.
package stats

import (
	"math"
	"slices"
	"time"
)

// Stats holds the samples recorded for one strategy over one key set.
//
// Samples are kept in insertion order. Derived statistics never reorder them;
// median and percentiles sort a copy. Stats is not safe for concurrent use.
type Stats struct {
	name        string
	description string
	inputSize   int

	runs         []time.Duration
	rowsReturned int
}

// New creates an empty Stats for the named strategy.
func New(name, description string, inputSize int) *Stats {
	return &Stats{
		name:        name,
		description: description,
		inputSize:   inputSize,
	}
}

// AddResult records one successful run. The row count replaces the previous
// one; it is expected to be the same for every run over a fixed key set.
func (s *Stats) AddResult(d time.Duration, rows int) {
	s.runs = append(s.runs, d)
	s.rowsReturned = rows
}

// Name returns the strategy name.
func (s *Stats) Name() string { return s.name }

// Description returns the strategy description.
func (s *Stats) Description() string { return s.description }

// InputSize returns the number of keys each run was given.
func (s *Stats) InputSize() int { return s.inputSize }

// RowsReturned returns the row count of the most recent run.
func (s *Stats) RowsReturned() int { return s.rowsReturned }

// Len returns the number of recorded runs.
func (s *Stats) Len() int { return len(s.runs) }

// Runs returns a copy of the recorded durations in insertion order.
func (s *Stats) Runs() []time.Duration {
	return slices.Clone(s.runs)
}

// Mean returns the arithmetic mean, or zero with no runs.
func (s *Stats) Mean() time.Duration {
	if len(s.runs) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.runs {
		total += d
	}
	return total / time.Duration(len(s.runs))
}

// Median returns the middle run, averaging the two central runs when the
// count is even. Zero with no runs.
func (s *Stats) Median() time.Duration {
	if len(s.runs) == 0 {
		return 0
	}
	sorted := s.sorted()
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev returns the population standard deviation. Fewer than two runs
// yield zero.
func (s *Stats) StdDev() time.Duration {
	if len(s.runs) < 2 {
		return 0
	}
	mean := float64(s.Mean().Nanoseconds())
	var sum float64
	for _, d := range s.runs {
		diff := float64(d.Nanoseconds()) - mean
		sum += diff * diff
	}
	return time.Duration(math.Sqrt(sum / float64(len(s.runs))))
}

// Min returns the fastest run, or zero with no runs.
func (s *Stats) Min() time.Duration {
	if len(s.runs) == 0 {
		return 0
	}
	return slices.Min(s.runs)
}

// Max returns the slowest run, or zero with no runs.
func (s *Stats) Max() time.Duration {
	if len(s.runs) == 0 {
		return 0
	}
	return slices.Max(s.runs)
}

// Percentile returns the run at rank round(p/100*(n-1)) of the sorted runs.
// p outside [0, 100] yields zero, as does an empty Stats.
func (s *Stats) Percentile(p float64) time.Duration {
	if len(s.runs) == 0 || !(p >= 0 && p <= 100) {
		return 0
	}
	sorted := s.sorted()
	idx := int(math.Round(p / 100 * float64(len(sorted)-1)))
	return sorted[min(idx, len(sorted)-1)]
}

func (s *Stats) sorted() []time.Duration {
	sorted := slices.Clone(s.runs)
	slices.Sort(sorted)
	return sorted
}
