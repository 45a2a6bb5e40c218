// Package memdiag reads Go heap statistics and quiesces the collector between
// timed iterations, so that a collection triggered by one strategy's garbage
// does not land inside another strategy's measurement.
package memdiag

import (
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/eunmann/pg-keybench/pkg/humanfmt"
)

// Stats holds the subset of runtime memory statistics the benchmark logs.
type Stats struct {
	// HeapAlloc is bytes allocated on heap and still in use.
	HeapAlloc uint64
	// HeapSys is bytes obtained from OS for heap.
	HeapSys uint64
	// TotalAlloc is cumulative bytes allocated (even if freed).
	TotalAlloc uint64
	// NumGC is the number of completed GC cycles.
	NumGC uint32
}

// Read reads current memory statistics.
func Read() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc:  m.HeapAlloc,
		HeapSys:    m.HeapSys,
		TotalAlloc: m.TotalAlloc,
		NumGC:      m.NumGC,
	}
}

// Since returns the bytes allocated between before and now.
func Since(before Stats) uint64 {
	return Read().TotalAlloc - before.TotalAlloc
}

// Settle runs a full collection, returns freed memory to the OS, and logs
// how much heap it reclaimed at debug level. It returns the bytes freed.
func Settle(log zerolog.Logger) uint64 {
	before := Read()
	runtime.GC()
	debug.FreeOSMemory()
	after := Read()

	var freed uint64
	if before.HeapAlloc > after.HeapAlloc {
		freed = before.HeapAlloc - after.HeapAlloc
	}

	log.Debug().
		Str("before_heap", humanfmt.Bytes(int64(before.HeapAlloc))).
		Str("after_heap", humanfmt.Bytes(int64(after.HeapAlloc))).
		Str("freed", humanfmt.Bytes(int64(freed))).
		Msg("forced GC")
	return freed
}
