//go:build linux

package platform

import "golang.org/x/sys/unix"

// ReadUmask reads the process umask exactly once. unix.Umask itself both
// sets and returns the previous mask, so the read is performed by setting
// the mask back to what it already was.
func ReadUmask() uint32 {
	mask := unix.Umask(0)
	unix.Umask(mask)

	return uint32(mask)
}
