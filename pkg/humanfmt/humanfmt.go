// Package humanfmt formats byte sizes, latencies, counts and rates for logs
// and the text report.
package humanfmt

import (
	"fmt"
	"strconv"
	"time"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

type unit struct {
	size   float64
	suffix string
}

var (
	byteUnits  = []unit{{GiB, " GiB"}, {MiB, " MiB"}, {KiB, " KiB"}}
	countUnits = []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
)

// scaled renders n in the largest unit it reaches with two decimals, or as
// a plain integer followed by plain.
func scaled(n int64, units []unit, plain string) string {
	for _, u := range units {
		if float64(n) >= u.size {
			return strconv.FormatFloat(float64(n)/u.size, 'f', 2, 64) + u.suffix
		}
	}
	return strconv.FormatInt(n, 10) + plain
}

// Bytes formats a byte count using IEC binary units, e.g. "1.23 MiB".
func Bytes(b int64) string {
	return scaled(b, byteUnits, " B")
}

// Duration picks a unit suited to d.
// Examples: "1.23s", "45.6ms", "789.0µs", "1m30s".
func Duration(d time.Duration) string {
	if d < 0 {
		return d.String()
	}

	switch {
	case d >= time.Minute:
		m := d / time.Minute
		s := (d % time.Minute) / time.Second
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// Millis formats d as fractional milliseconds with three decimals, the unit
// every latency column of the report uses.
func Millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Nanoseconds())/1e6, 'f', 3, 64)
}

// Count abbreviates n with K, M or B, e.g. "1.23M". Below a thousand it is
// printed as is.
func Count(n int64) string {
	return scaled(n, countUnits, "")
}

// Rate formats n items over d as items per second, e.g. "1.20M/s".
func Rate(n int64, d time.Duration) string {
	if d <= 0 {
		return "∞"
	}
	return Count(int64(float64(n)/d.Seconds())) + "/s"
}
