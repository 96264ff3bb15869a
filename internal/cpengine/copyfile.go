package cpengine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyFile is the Single-File Copier: given one resolved source and one
// resolved destination, it executes the active CopyMode, including
// pre-existence handling, backup, and attribute application.
//
// sourceInCommandLine distinguishes a top-level operand (eligible for
// DereferenceCommandLineOnly) from an entry discovered while recursing.
func (e *Engine) copyFile(src, dst string, srcMeta os.FileInfo, sourceInCommandLine bool) error {
	dereference := e.dereferenceFor(src, sourceInCommandLine)

	// Preflight 1: cp -i -u quirk — Update mode with a Standard Interactive
	// overwrite mode silently no-ops when the destination already exists,
	// without even prompting.
	if e.opts.CopyMode == CopyModeUpdate && e.opts.Overwrite.IsInteractive() && e.opts.Overwrite.Clobber == ClobberStandard {
		if _, err := e.fs.Stat(dst); err == nil {
			return nil
		}
	}

	destExists := false

	var destInfo os.FileInfo
	if fi, err := e.lstatOrStat(dst, false); err == nil {
		destExists = true
		destInfo = fi
	}

	destIsSymlink := destExists && destInfo.Mode()&os.ModeSymlink != 0

	// Preflight 2.
	if destIsSymlink {
		if id := fileID(e.fs, destInfo); e.symlinks.Contains(id) {
			return fmt.Errorf("will not copy through just-created symlink: %q", dst)
		}

		if dereference {
			if _, err := e.fs.Stat(dst); err != nil && errors.Is(err, os.ErrNotExist) {
				if e.opts.Overwrite.Clobber != ClobberRemoveDestination {
					return fmt.Errorf("%w %q", ErrDanglingSymlink, dst)
				}
			}
		}
	}

	// Preflight 3.
	if destExists {
		skip, err := e.handleExistingDest(src, dst, sourceInCommandLine)
		if err != nil {
			return err
		}

		if skip {
			return nil
		}

		if _, err := e.fs.Stat(dst); err != nil {
			destExists = false
		}
	}

	// Preflight 4: verbose output, suspending the progress sink.
	e.emitVerbose(src, dst)

	// Preflight 5.
	srcEff, err := e.lstatOrStat(src, dereference)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", src, err)
	}

	sourceIsSymlink := srcEff.Mode()&os.ModeSymlink != 0
	sourceIsFifo := srcEff.Mode()&os.ModeNamedPipe != 0

	// Preflight 6.
	var destPermissions os.FileMode
	if destExists {
		fi, statErr := e.fs.Stat(dst)
		if statErr != nil {
			return fmt.Errorf("failed to stat %q: %w", dst, statErr)
		}

		destPermissions = fi.Mode().Perm()
	} else {
		destPermissions = newDestMode(srcEff.Mode(), e.opts.Umask)
	}

	finalIsSymlink := destIsSymlink

	switch e.opts.CopyMode {
	case CopyModeLink:
		if err := e.dispatchLink(src, dst, srcEff, dereference, destExists); err != nil {
			return err
		}

	case CopyModeSymLink:
		if err := e.dispatchSymlink(src, dst, destExists); err != nil {
			return err
		}

		finalIsSymlink = true

	case CopyModeCopy:
		if err := e.copyHelper(src, dst, srcEff, sourceIsSymlink, sourceIsFifo, dereference); err != nil {
			return err
		}

		finalIsSymlink = sourceIsSymlink && !dereference

	case CopyModeUpdate:
		if destExists {
			fi, statErr := e.fs.Stat(dst)
			if statErr == nil && !fi.ModTime().Before(srcEff.ModTime()) {
				return nil
			}
		}

		if err := e.copyHelper(src, dst, srcEff, sourceIsSymlink, sourceIsFifo, dereference); err != nil {
			return err
		}

		finalIsSymlink = sourceIsSymlink && !dereference

	case CopyModeAttrOnly:
		if err := e.createEmpty(dst, destPermissions); err != nil {
			return err
		}

		finalIsSymlink = false
	}

	// Postflight.
	if !finalIsSymlink {
		_ = e.fs.Chmod(dst, destPermissions) // best-effort; a real write will fail loudly if rights are lacking
	}

	if err := e.copyAttributes(src, dst, srcEff, finalIsSymlink); err != nil {
		return err
	}

	e.opts.Progress.Add(srcEff.Size())

	if e.opts.Attrs.Links != PreserveNo && nlinkOf(srcEff) > 1 {
		e.hardLinks.Record(fileID(e.fs, srcEff), dst)
	}

	return nil
}

// emitVerbose prints the --parents ancestor chain (if any) followed by the
// "src -> dst" line, suspending the progress sink so output does not
// interleave with its display.
func (e *Engine) emitVerbose(src, dst string) {
	if !e.opts.Verbose {
		return
	}

	e.opts.Progress.Suspend(func() {
		if e.opts.Parents {
			for _, pair := range alignedAncestors(src, dst) {
				fmt.Fprintf(e.verboseOut(), "%s -> %s\n", pair[0], pair[1])
			}
		}

		fmt.Fprintf(e.verboseOut(), "%s -> %s\n", src, dst)
	})
}

// verboseOut returns the writer set with SetVerboseWriter (used by tests),
// or os.Stdout when none was set.
func (e *Engine) verboseOut() io.Writer {
	if e.verboseWriter != nil {
		return e.verboseWriter
	}

	return os.Stdout
}

func (e *Engine) dispatchLink(src, dst string, srcEff os.FileInfo, dereference bool, destExists bool) error {
	if destExists {
		if _, err := e.handleExistingDest(src, dst, true); err != nil {
			return err
		}

		if err := e.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %q before linking: %w", dst, err)
		}
	}

	linker, ok := e.fs.(Linker)
	if !ok {
		return fmt.Errorf("%w: hard links", ErrCapabilityUnavailable)
	}

	linkSrc := src

	if srcEff.Mode()&os.ModeSymlink != 0 && dereference {
		symlinker, ok := e.fs.(Symlinker)
		if !ok {
			return fmt.Errorf("%w: symlink resolution", ErrCapabilityUnavailable)
		}

		resolved, err := symlinker.Readlink(src)
		if err != nil {
			return fmt.Errorf("failed to resolve symlink %q: %w", src, err)
		}

		linkSrc = resolved
	}

	if err := linker.Link(linkSrc, dst); err != nil {
		return fmt.Errorf("failed to hard-link %q to %q: %w", dst, linkSrc, err)
	}

	return nil
}

func (e *Engine) dispatchSymlink(src, dst string, destExists bool) error {
	if destExists && e.opts.Overwrite.Clobber == ClobberForce {
		if err := e.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %q before symlinking: %w", dst, err)
		}
	}

	symlinker, ok := e.fs.(Symlinker)
	if !ok {
		return fmt.Errorf("%w: symlinks", ErrCapabilityUnavailable)
	}

	if err := symlinker.Symlink(src, dst); err != nil {
		return fmt.Errorf("failed to symlink %q -> %q: %w", dst, src, err)
	}

	if fi, err := e.lstatOrStat(dst, false); err == nil {
		e.symlinks.Record(fileID(e.fs, fi))
	}

	return nil
}

func (e *Engine) createEmpty(dst string, perm os.FileMode) error {
	f, err := e.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE, perm)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}

	return f.Close()
}

// copyHelper is the content-transfer core (spec's copy_helper).
func (e *Engine) copyHelper(src, dst string, srcEff os.FileInfo, sourceIsSymlink, sourceIsFifo, dereference bool) error {
	if e.opts.Parents {
		if err := e.fs.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
			return fmt.Errorf("failed to create parent directories for %q: %w", dst, err)
		}
	}

	if filepath.Clean(src) == "/dev/null" {
		return e.createEmpty(dst, newDestMode(srcEff.Mode(), e.opts.Umask))
	}

	if sourceIsFifo && e.opts.Recursive {
		return e.copyFifo(src, dst)
	}

	if sourceIsSymlink && !dereference {
		return e.copySymlinkEntry(src, dst)
	}

	if !srcEff.Mode().IsRegular() {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, src)
	}

	return e.copyOnWrite(src, dst, srcEff)
}

func (e *Engine) copyFifo(src, dst string) error {
	if _, err := e.fs.Stat(dst); err == nil {
		skip, err := e.handleExistingDest(src, dst, true)
		if err != nil {
			return err
		}

		if skip {
			return nil
		}

		if err := e.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %q before recreating fifo: %w", dst, err)
		}
	}

	maker, ok := e.fs.(FIFOMaker)
	if !ok {
		return fmt.Errorf("%w: fifos", ErrCapabilityUnavailable)
	}

	if err := maker.Mkfifo(dst, 0o666); err != nil {
		return fmt.Errorf("failed to create fifo %q: %w", dst, err)
	}

	return nil
}

func (e *Engine) copySymlinkEntry(src, dst string) error {
	symlinker, ok := e.fs.(Symlinker)
	if !ok {
		return fmt.Errorf("%w: symlinks", ErrCapabilityUnavailable)
	}

	target, err := symlinker.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink %q: %w", src, err)
	}

	actualDst := dst

	if fi, err := e.fs.Stat(dst); err == nil && fi.IsDir() {
		actualDst = filepath.Join(dst, filepath.Base(src))
	}

	if fi, err := e.lstatOrStat(actualDst, false); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 || !fi.IsDir() {
			if err := e.fs.Remove(actualDst); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to remove %q before symlinking: %w", actualDst, err)
			}
		}
	}

	if err := symlinker.Symlink(target, actualDst); err != nil {
		return fmt.Errorf("failed to symlink %q -> %q: %w", actualDst, target, err)
	}

	if fi, err := e.lstatOrStat(actualDst, false); err == nil {
		e.symlinks.Record(fileID(e.fs, fi))
	}

	return nil
}

// copyOnWrite performs a reflink/CoW clone when the platform supports it
// and the active ReflinkMode allows it, falling back to a streaming
// read/write loop otherwise.
func (e *Engine) copyOnWrite(src, dst string, srcEff os.FileInfo) error {
	if e.opts.Reflink != ReflinkNever {
		if reflinker, ok := e.fs.(ReflinkCopier); ok {
			err := reflinker.ReflinkCopy(src, dst)
			if err == nil {
				return nil
			}

			if e.opts.Reflink == ReflinkAlways {
				return fmt.Errorf("failed to reflink %q to %q: %w", src, dst, err)
			}
			// ReflinkAuto: fall through to byte copy.
		} else if e.opts.Reflink == ReflinkAlways {
			return fmt.Errorf("%w: reflink", ErrCapabilityUnavailable)
		}
	}

	return e.streamCopy(src, dst, srcEff)
}

func (e *Engine) streamCopy(src, dst string, srcEff os.FileInfo) error {
	in, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", src, err)
	}
	defer in.Close()

	perm := newDestMode(srcEff.Mode(), e.opts.Umask)

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC

	out, err := e.fs.OpenFile(dst, flags, perm)
	if err != nil && e.opts.Overwrite.Clobber == ClobberForce {
		if rmErr := e.fs.Remove(dst); rmErr == nil {
			out, err = e.fs.OpenFile(dst, flags, perm)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %q to %q: %w", src, dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", dst, err)
	}

	return nil
}
