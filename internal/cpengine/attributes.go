package cpengine

import (
	"fmt"
	"os"
)

// newDestMode computes the permission bits for a newly created destination
// (one with no pre-existing file to inherit permissions from): start from
// the source mode, clear suid/sgid/sticky (0o7000), then apply the process
// umask. This differs from copyAttributes' mode step, which (when mode
// preservation is requested) re-establishes the source bits verbatim onto
// an existing destination.
func newDestMode(sourceMode, umask os.FileMode) os.FileMode {
	return (sourceMode &^ 0o7000) &^ umask
}

// copyAttributes applies attrs to dst, reading source metadata from src, in
// the mandated order: ownership, mode, timestamps, security context,
// extended attributes. destIsSymlink controls whether the mode step is
// skipped (no portable lchmod).
func (e *Engine) copyAttributes(src, dst string, srcInfo os.FileInfo, destIsSymlink bool) error {
	attrs := e.opts.Attrs

	if err := e.applyOwnership(src, dst, srcInfo, attrs.Ownership, destIsSymlink); err != nil {
		return err
	}

	if err := e.applyMode(dst, srcInfo, attrs.Mode, destIsSymlink); err != nil {
		return err
	}

	if err := e.applyTimestamps(dst, srcInfo, attrs.Timestamps, destIsSymlink); err != nil {
		return err
	}

	if err := e.applySecurityContext(src, dst, attrs.Context); err != nil {
		return err
	}

	if err := e.applyXattrs(src, dst, attrs.Xattr); err != nil {
		return err
	}

	return nil
}

// guard runs step under the given Preserve level: skipped when No, the
// error swallowed-but-logged when BestEffort, and returned as-is (aborting
// this file's copy) when Required.
func (e *Engine) guard(name string, level Preserve, step func() error) error {
	if level == PreserveNo {
		return nil
	}

	err := step()
	if err == nil {
		return nil
	}

	if level == PreserveRequired {
		return fmt.Errorf("failed to preserve %s: %w", name, err)
	}

	e.log.Warn("failed to preserve attribute", "attribute", name, "error", err)

	return nil
}

func (e *Engine) applyOwnership(src, dst string, srcInfo os.FileInfo, level Preserve, destIsSymlink bool) error {
	return e.guard("ownership", level, func() error {
		uid, gid, ok := platformOwner(srcInfo)
		if !ok {
			return fmt.Errorf("%w: ownership", ErrCapabilityUnavailable)
		}

		if destIsSymlink {
			owner, ok := e.fs.(Owner)
			if !ok {
				return fmt.Errorf("%w: lchown", ErrCapabilityUnavailable)
			}

			return owner.Lchown(dst, uid, gid)
		}

		return e.fs.Chown(dst, uid, gid)
	})
}

func (e *Engine) applyMode(dst string, srcInfo os.FileInfo, level Preserve, destIsSymlink bool) error {
	return e.guard("mode", level, func() error {
		if destIsSymlink {
			return nil // no portable lchmod
		}

		return e.fs.Chmod(dst, srcInfo.Mode()&(os.ModePerm|os.ModeSetuid|os.ModeSetgid|os.ModeSticky))
	})
}

func (e *Engine) applyTimestamps(dst string, srcInfo os.FileInfo, level Preserve, destIsSymlink bool) error {
	return e.guard("timestamps", level, func() error {
		atime, mtime := platformTimes(srcInfo)

		if destIsSymlink {
			ts, ok := e.fs.(TimeSetter)
			if !ok {
				return fmt.Errorf("%w: lutimes", ErrCapabilityUnavailable)
			}

			return ts.Lutimes(dst, atime, mtime)
		}

		return e.fs.Chtimes(dst, atime, mtime)
	})
}

func (e *Engine) applySecurityContext(src, dst string, level Preserve) error {
	return e.guard("security context", level, func() error {
		sc, ok := e.fs.(SecurityContextCopier)
		if !ok {
			return nil // best-effort on non-SELinux platforms; absence is not failure
		}

		return sc.CopySecurityContext(src, dst)
	})
}

func (e *Engine) applyXattrs(src, dst string, level Preserve) error {
	return e.guard("extended attributes", level, func() error {
		xc, ok := e.fs.(XattrCopier)
		if !ok {
			return fmt.Errorf("%w: xattrs", ErrCapabilityUnavailable)
		}

		return xc.CopyXattrs(src, dst)
	})
}
