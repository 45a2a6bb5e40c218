//go:build linux

package sysmem

import "golang.org/x/sys/unix"

func physicalMemory() (total, free uint64, ok bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, false
	}
	unit := uint64(info.Unit)
	return uint64(info.Totalram) * unit, uint64(info.Freeram) * unit, true
}
