package cpengine

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// overwriteDecision is the result of the Overwrite Policy's pure decision
// function.
type overwriteDecision int

const (
	decisionProceed overwriteDecision = iota
	decisionSkip
)

// verify is the pure decision function over (mode, destination path,
// confirm hook). It never touches the filesystem.
func verify(mode OverwriteMode, dest string, confirm Confirm) overwriteDecision {
	switch {
	case mode.IsNoClobber():
		return decisionSkip

	case mode.IsInteractive():
		if confirm == nil || !confirm(fmt.Sprintf("overwrite %q?", dest)) {
			return decisionSkip
		}

		return decisionProceed

	default: // Clobber
		return decisionProceed
	}
}

// handleExistingDest implements the higher-level policy run whenever the
// destination of a copy already exists: self-copy rejection, backup, and
// force/remove-destination pre-removal. It reports (skip, error); skip is
// true when the caller should treat this destination as silently done
// (NoClobber or a declined interactive prompt).
func (e *Engine) handleExistingDest(src, dst string, sourceInCommandLine bool) (skip bool, err error) {
	if forbidden, err := e.isForbiddenCopyToSameFile(src, dst, sourceInCommandLine); err != nil {
		return false, err
	} else if forbidden {
		return false, fmt.Errorf("%w: %q and %q", ErrSameFile, src, dst)
	}

	decision := verify(e.opts.Overwrite, dst, e.opts.Confirm)
	if decision == decisionSkip {
		if e.opts.Overwrite.IsInteractive() {
			e.log.Info(ErrOverwriteDeclined.Error(), "dst", dst)
		} else {
			e.log.Info(ErrOverwriteDenied.Error(), "dst", dst)
		}

		return true, nil
	}

	if e.opts.BackupMode != BackupNone {
		backupPath, err := e.opts.Backup.BackupPath(dst, e.opts.BackupMode, e.opts.BackupSuffix, e.fs)
		if err != nil {
			return false, fmt.Errorf("failed to compute backup path for %q: %w", dst, err)
		}

		if backupPath == src {
			return false, fmt.Errorf("%w: backup path %q would overwrite the source", ErrInvalidOptions, backupPath)
		}

		if err := copyBytes(e.fs, dst, backupPath); err != nil {
			return false, fmt.Errorf("failed to back up %q to %q: %w", dst, backupPath, err)
		}
	}

	if e.opts.Overwrite.Clobber == ClobberForce {
		if fi, statErr := e.fs.Stat(dst); statErr == nil && fi.Mode().Perm()&0o200 == 0 {
			if err := e.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
				return false, fmt.Errorf("failed to remove read-only destination %q: %w", dst, err)
			}
		}
	}

	if e.opts.Overwrite.Clobber == ClobberRemoveDestination {
		if err := e.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to remove destination %q: %w", dst, err)
		}
	}

	return false, nil
}

// isForbiddenCopyToSameFile implements the dereference-sensitive self-copy
// check: if the source is a symlink and effective dereferencing is off, the
// comparison happens at the symlink level; otherwise both paths are fully
// resolved before comparison.
func (e *Engine) isForbiddenCopyToSameFile(src, dst string, sourceInCommandLine bool) (bool, error) {
	srcLinkInfo, err := e.lstatOrStat(src, false)
	if err != nil {
		return false, nil
	}

	dereference := e.dereferenceFor(src, sourceInCommandLine) || srcLinkInfo.Mode()&os.ModeSymlink == 0

	srcInfo, srcErr := e.lstatOrStat(src, dereference)
	dstInfo, dstErr := e.lstatOrStat(dst, dereference)

	if srcErr != nil || dstErr != nil {
		return false, nil // either path is unreadable; not our concern here
	}

	srcID := fileID(e.fs, srcInfo)
	dstID := fileID(e.fs, dstInfo)

	if !srcID.Valid() || !dstID.Valid() {
		return false, nil
	}

	if srcID != dstID {
		return false, nil
	}

	// Same identity. Forbidden unless force+backup is active on a regular
	// file (GNU's documented carve-out for "cp --force --backup f f").
	if e.opts.Overwrite.Clobber == ClobberForce && e.opts.BackupMode != BackupNone && srcInfo.Mode().IsRegular() {
		return false, nil
	}

	return true, nil
}

// copyBytes performs a plain byte-for-byte copy of src onto dst through fs,
// used only for backup creation (never the main content-transfer path,
// which goes through copy_helper and may reflink).
func copyBytes(fs FS, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", src, err)
	}
	defer in.Close()

	fi, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", src, err)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy bytes to %q: %w", dst, err)
	}

	return nil
}
