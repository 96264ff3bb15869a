//go:build linux

package platform

import (
	"os"
	"syscall"
	"time"

	"github.com/desertwitch/gocp/internal/cpengine"
	"golang.org/x/sys/unix"
)

// LstatIfPossible satisfies cpengine.Lstater (and mirrors afero's own
// convention for the same capability).
func (*OSFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	fi, err := os.Lstat(name)

	return fi, true, wrap("lstat", name, err)
}

// Symlink and Readlink satisfy cpengine.Symlinker.
func (*OSFs) Symlink(oldname, newname string) error {
	return wrap("symlink", newname, os.Symlink(oldname, newname))
}

func (*OSFs) Readlink(name string) (string, error) {
	target, err := os.Readlink(name)

	return target, wrap("readlink", name, err)
}

// Link satisfies cpengine.Linker.
func (*OSFs) Link(oldname, newname string) error {
	return wrap("link", newname, os.Link(oldname, newname))
}

// Lchown satisfies cpengine.Owner.
func (*OSFs) Lchown(name string, uid, gid int) error {
	return wrap("lchown", name, os.Lchown(name, uid, gid))
}

// Lutimes satisfies cpengine.TimeSetter.
func (*OSFs) Lutimes(name string, atime, mtime time.Time) error {
	tv := []unix.Timeval{
		unix.NsecToTimeval(atime.UnixNano()),
		unix.NsecToTimeval(mtime.UnixNano()),
	}

	return wrap("lutimes", name, unix.Lutimes(name, tv))
}

// Mkfifo satisfies cpengine.FIFOMaker.
func (*OSFs) Mkfifo(name string, mode os.FileMode) error {
	return wrap("mkfifo", name, unix.Mkfifo(name, uint32(mode.Perm())))
}

// FileID satisfies cpengine.Identifier, extracting the (device, inode) pair
// that keys the hard-link ledger and drives cycle detection.
func (*OSFs) FileID(fi os.FileInfo) cpengine.FileInformation {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return cpengine.FileInformation{}
	}

	return cpengine.FileInformation{Device: uint64(st.Dev), Inode: st.Ino}
}
