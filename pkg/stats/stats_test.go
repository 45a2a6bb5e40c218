package stats

import (
	"math"
	"slices"
	"testing"
	"time"
)

func withRuns(ms ...int) *Stats {
	s := New("test", "test strategy", 100)
	for _, m := range ms {
		s.AddResult(time.Duration(m)*time.Millisecond, 10)
	}
	return s
}

func TestEmpty(t *testing.T) {
	s := New("empty", "", 0)

	checks := map[string]time.Duration{
		"Mean":   s.Mean(),
		"Median": s.Median(),
		"StdDev": s.StdDev(),
		"Min":    s.Min(),
		"Max":    s.Max(),
	}
	for _, p := range []float64{0, 50, 95, 99, 100} {
		checks["Percentile"] += s.Percentile(p)
	}
	for name, got := range checks {
		if got != 0 {
			t.Errorf("%s() = %v on empty stats, want 0", name, got)
		}
	}
	if s.Len() != 0 || s.RowsReturned() != 0 {
		t.Errorf("Len() = %d, RowsReturned() = %d, want 0, 0", s.Len(), s.RowsReturned())
	}
}

func TestSingleRun(t *testing.T) {
	s := withRuns(7)
	want := 7 * time.Millisecond

	for name, got := range map[string]time.Duration{
		"Mean":   s.Mean(),
		"Median": s.Median(),
		"Min":    s.Min(),
		"Max":    s.Max(),
		"P0":     s.Percentile(0),
		"P99":    s.Percentile(99),
	} {
		if got != want {
			t.Errorf("%s() = %v, want %v", name, got, want)
		}
	}
	if s.StdDev() != 0 {
		t.Errorf("StdDev() = %v with one run, want 0", s.StdDev())
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		runs   []int
		mean   time.Duration
		median time.Duration
		min    time.Duration
		max    time.Duration
	}{
		{"odd", []int{5, 1, 3}, 3 * time.Millisecond, 3 * time.Millisecond, 1 * time.Millisecond, 5 * time.Millisecond},
		{"even", []int{4, 1, 3, 2}, 2500 * time.Microsecond, 2500 * time.Microsecond, 1 * time.Millisecond, 4 * time.Millisecond},
		{"duplicates", []int{2, 2, 2, 8}, 3500 * time.Microsecond, 2 * time.Millisecond, 2 * time.Millisecond, 8 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withRuns(tt.runs...)
			if got := s.Mean(); got != tt.mean {
				t.Errorf("Mean() = %v, want %v", got, tt.mean)
			}
			if got := s.Median(); got != tt.median {
				t.Errorf("Median() = %v, want %v", got, tt.median)
			}
			if got := s.Min(); got != tt.min {
				t.Errorf("Min() = %v, want %v", got, tt.min)
			}
			if got := s.Max(); got != tt.max {
				t.Errorf("Max() = %v, want %v", got, tt.max)
			}
		})
	}
}

func TestStdDevIsPopulation(t *testing.T) {
	// 2,4,4,4,5,5,7,9: mean 5, population variance 4.
	s := withRuns(2, 4, 4, 4, 5, 5, 7, 9)
	if got := s.StdDev(); got != 2*time.Millisecond {
		t.Errorf("StdDev() = %v, want 2ms", got)
	}

	s = withRuns(1, 2)
	want := time.Duration(math.Sqrt(0.25e12))
	if got := s.StdDev(); got != want {
		t.Errorf("StdDev() = %v, want %v", got, want)
	}
}

func TestPercentile(t *testing.T) {
	// 1..100 ms
	runs := make([]int, 100)
	for i := range runs {
		runs[i] = 100 - i
	}
	s := withRuns(runs...)

	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1 * time.Millisecond},
		{50, 51 * time.Millisecond}, // round(49.5) = 50
		{95, 95 * time.Millisecond}, // round(94.05) = 94
		{99, 99 * time.Millisecond}, // round(98.01) = 98
		{100, 100 * time.Millisecond},
		{-1, 0},
		{100.5, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := s.Percentile(tt.p); got != tt.want {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPercentile50AndMedian(t *testing.T) {
	// Odd counts: rank round((n-1)/2) is the central element.
	for n := 1; n <= 51; n += 2 {
		runs := make([]int, n)
		for i := range runs {
			runs[i] = (i * 37) % 101
		}
		s := withRuns(runs...)
		if s.Percentile(50) != s.Median() {
			t.Errorf("n=%d: Percentile(50) = %v, Median() = %v", n, s.Percentile(50), s.Median())
		}
	}

	// Even counts: the median averages the central pair while Percentile(50)
	// selects the upper one (round half away from zero).
	s := withRuns(10, 20)
	if s.Median() != 15*time.Millisecond {
		t.Errorf("Median() = %v, want 15ms", s.Median())
	}
	if s.Percentile(50) != 20*time.Millisecond {
		t.Errorf("Percentile(50) = %v, want 20ms", s.Percentile(50))
	}
}

func TestDerivationsDoNotReorderRuns(t *testing.T) {
	s := withRuns(9, 1, 5, 3)
	before := s.Runs()

	_ = s.Median()
	_ = s.Percentile(95)
	_ = s.Min()

	if !slices.Equal(before, s.Runs()) {
		t.Errorf("Runs() changed order: %v -> %v", before, s.Runs())
	}

	runs := s.Runs()
	runs[0] = 0
	if s.Runs()[0] != 9*time.Millisecond {
		t.Error("Runs() returned the internal slice")
	}
}

func TestAddResultOverwritesRows(t *testing.T) {
	s := New("rows", "", 3)
	s.AddResult(time.Millisecond, 3)
	s.AddResult(time.Millisecond, 2)
	if s.RowsReturned() != 2 {
		t.Errorf("RowsReturned() = %d, want 2", s.RowsReturned())
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if s.Name() != "rows" || s.InputSize() != 3 {
		t.Errorf("Name() = %q, InputSize() = %d", s.Name(), s.InputSize())
	}
}
