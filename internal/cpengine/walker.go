package cpengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// copyDirectory is the Directory Walker: it recursively copies src onto
// dst, creating dst if absent, tracking visited inodes along the current
// descent path for cycle avoidance, honouring one-file-system, and
// dispatching each entry to the single-file copier or a further recursion.
func (e *Engine) copyDirectory(ctx context.Context, src, dst string, srcInfo os.FileInfo) error {
	visited := map[FileInformation]struct{}{}

	rootDev := deviceOf(srcInfo)

	return e.copyDirectoryRec(ctx, src, dst, srcInfo, rootDev, visited)
}

func (e *Engine) copyDirectoryRec(ctx context.Context, src, dst string, srcInfo os.FileInfo, rootDev uint64, visited map[FileInformation]struct{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("copy interrupted: %w", err)
	}

	id := fileID(e.fs, srcInfo)
	if id.Valid() {
		if _, ok := visited[id]; ok {
			return fmt.Errorf("%w: %q", ErrCopyLoop, src)
		}

		visited[id] = struct{}{}
		defer delete(visited, id)
	}

	destExisted := true
	destMode := newDestMode(srcInfo.Mode(), e.opts.Umask)

	if fi, err := e.fs.Stat(dst); err != nil {
		destExisted = false

		if err := e.fs.Mkdir(dst, destMode|0o200); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dst, err)
		}
	} else if !fi.IsDir() {
		return fmt.Errorf("%w: %q exists and is not a directory", ErrInvalidOptions, dst)
	}

	dir, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open directory %q: %w", src, err)
	}

	entries, err := dir.Readdir(-1)
	dir.Close()

	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", src, err)
	}

	var nonFatal error

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy interrupted: %w", err)
		}

		entrySrc := filepath.Join(src, entry.Name())
		entryDst := filepath.Join(dst, entry.Name())

		if e.opts.OneFileSystem && deviceOf(entry) != rootDev {
			e.log.Warn(ErrDeviceMismatch.Error(), "path", entrySrc)

			continue
		}

		if err := e.copyDirEntry(ctx, entrySrc, entryDst, entry, rootDev, visited); err != nil {
			e.log.Error("failed to copy", "src", entrySrc, "error", err)

			nonFatal = ErrNotAllFilesCopied
		}
	}

	if !destExisted {
		if err := e.fs.Chmod(dst, destMode); err != nil {
			e.log.Warn("failed to set final directory mode", "path", dst, "error", err)
		}
	}

	if err := e.copyAttributes(src, dst, srcInfo, false); err != nil {
		return err
	}

	return nonFatal
}

func (e *Engine) copyDirEntry(ctx context.Context, entrySrc, entryDst string, entry os.FileInfo, rootDev uint64, visited map[FileInformation]struct{}) error {
	if e.opts.Attrs.Links != PreserveNo && !entry.IsDir() && nlinkOf(entry) > 1 {
		id := fileID(e.fs, entry)

		if linked, err := e.tryHardLinkFromLedger(id, entry, entryDst); err != nil {
			return err
		} else if linked {
			return nil
		}
	}

	if entry.IsDir() {
		return e.copyDirectoryRec(ctx, entrySrc, entryDst, entry, rootDev, visited)
	}

	return e.copyFile(entrySrc, entryDst, entry, false)
}
