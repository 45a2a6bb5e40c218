// Package sysmem describes the host a benchmark ran on.
package sysmem

import (
	"fmt"
	"runtime"

	"github.com/eunmann/pg-keybench/pkg/humanfmt"
)

// Host summarizes the machine running the benchmark client.
type Host struct {
	OS   string
	Arch string
	CPUs int

	// TotalBytes is physical memory; zero when it could not be detected.
	TotalBytes uint64
	// FreeBytes is memory not in use at detection time, when the platform
	// reports it.
	FreeBytes uint64
}

// Detect reads the host description.
func Detect() Host {
	h := Host{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CPUs: runtime.NumCPU(),
	}
	h.TotalBytes, h.FreeBytes, _ = physicalMemory()
	return h
}

// String renders the host for a report header,
// e.g. "linux/amd64, 8 CPUs, 15.50 GiB RAM (3.20 GiB free)".
func (h Host) String() string {
	s := fmt.Sprintf("%s/%s, %d CPUs", h.OS, h.Arch, h.CPUs)
	if h.TotalBytes == 0 {
		return s + ", RAM unknown"
	}
	s += ", " + humanfmt.Bytes(int64(h.TotalBytes)) + " RAM"
	if h.FreeBytes > 0 {
		s += " (" + humanfmt.Bytes(int64(h.FreeBytes)) + " free)"
	}
	return s
}
