//go:build linux

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ReflinkCopy satisfies cpengine.ReflinkCopier, performing a copy-on-write
// clone of src onto dst via the FICLONE ioctl (named via
// golang.org/x/sys/unix rather than a hardcoded ioctl number), on
// filesystems that support it (btrfs, xfs with reflink=1, overlayfs over
// those, ...).
func (*OSFs) ReflinkCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", src, err)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}
	defer out.Close()

	if err := unix.IoctlFileClone(int(out.Fd()), int(in.Fd())); err != nil {
		os.Remove(dst)

		return fmt.Errorf("ficlone %q from %q: %w", dst, src, err)
	}

	return nil
}
