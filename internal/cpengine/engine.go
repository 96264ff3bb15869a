package cpengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Engine is the top-level orchestrator: it owns the ledgers and the
// "seen sources" set for one invocation, and drives the directory walker
// and single-file copier over a resolved source list.
type Engine struct {
	fs   FS
	opts Options
	log  *slog.Logger

	hardLinks   *HardLinkLedger
	symlinks    *SymlinkLedger
	seenSources map[string]struct{}
	nonFatal    bool

	verboseWriter io.Writer
}

// SetVerboseWriter overrides the destination of --verbose "src -> dst"
// lines, which otherwise go to os.Stdout. Tests use this to capture output.
func (e *Engine) SetVerboseWriter(w io.Writer) {
	e.verboseWriter = w
}

// New constructs an Engine. opts must already have passed Options.Validate.
func New(fs FS, opts Options, log *slog.Logger) *Engine {
	if opts.Progress == nil {
		opts.Progress = noopProgress{}
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		fs:          fs,
		opts:        opts,
		log:         log,
		hardLinks:   NewHardLinkLedger(),
		symlinks:    NewSymlinkLedger(),
		seenSources: make(map[string]struct{}),
	}
}

// ErrNotAllFilesCopied is the final disposition returned by Copy when at
// least one per-file error occurred during the run, but the run itself
// otherwise completed (GNU cp's exit code 1 for partial failures).
var ErrNotAllFilesCopied = errors.New("not all files copied")

// Copy iterates sources, dispatching each to the directory walker or the
// single-file copier, aggregating non-fatal per-file errors. target and
// kind come from Resolve.
func (e *Engine) Copy(ctx context.Context, sources []string, target string, kind TargetKind) error {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copy interrupted: %w", err)
		}

		if _, seen := e.seenSources[src]; seen {
			e.log.Warn("source specified more than once", "src", src)

			continue
		}
		e.seenSources[src] = struct{}{}

		if err := e.copyOneSource(ctx, src, target, kind); err != nil {
			if isFatal(err) {
				return err
			}

			e.nonFatal = true
			e.log.Error("failed to copy", "src", src, "error", err)
		}
	}

	if e.nonFatal {
		return ErrNotAllFilesCopied
	}

	return nil
}

// fatalError wraps an error that must abort the whole run immediately,
// rather than being aggregated as a per-file failure.
type fatalError struct{ err error }

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

func fatal(err error) error {
	if err == nil {
		return nil
	}

	return &fatalError{err: err}
}

func isFatal(err error) bool {
	var fe *fatalError

	return errors.As(err, &fe) ||
		errors.Is(err, ErrInvalidOptions) ||
		errors.Is(err, ErrTargetNotDirectory) ||
		errors.Is(err, context.Canceled)
}

func (e *Engine) copyOneSource(ctx context.Context, src, target string, kind TargetKind) error {
	srcInfo, err := e.lstatOrStat(src, e.dereferenceFor(src, true))
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", src, err)
	}

	dst, err := e.constructDestPath(src, target, kind)
	if err != nil {
		return fatal(err)
	}

	if e.opts.Attrs.Links != PreserveNo && !srcInfo.IsDir() {
		id := fileID(e.fs, srcInfo)
		if linked, err := e.tryHardLinkFromLedger(id, srcInfo, dst); err != nil {
			return err
		} else if linked {
			return nil
		}
	}

	if srcInfo.IsDir() {
		if !e.opts.Recursive {
			return fmt.Errorf("%w: %q", ErrNotADirectory, src)
		}

		return e.copyDirectory(ctx, src, dst, srcInfo)
	}

	return e.copyFile(src, dst, srcInfo, true)
}

// tryHardLinkFromLedger consults the hard-link ledger for id and, on a hit,
// materialises dst as a hard link to the recorded destination instead of
// copying. The Directory Walker calls it for each entry (spec.md §4.5), and
// copyOneSource calls it once per top-level source (spec.md §4.6 step 2).
func (e *Engine) tryHardLinkFromLedger(id FileInformation, srcInfo os.FileInfo, dst string) (bool, error) {
	existing, ok := e.hardLinks.Lookup(id)
	if !ok {
		return false, nil
	}

	if _, err := e.fs.Stat(dst); err == nil {
		if err := e.fs.Remove(dst); err != nil {
			return false, fmt.Errorf("failed to remove %q before linking: %w", dst, err)
		}
	}

	linker, ok := e.fs.(Linker)
	if !ok {
		return false, fmt.Errorf("%w: hard links", ErrCapabilityUnavailable)
	}

	if err := linker.Link(existing, dst); err != nil {
		return false, fmt.Errorf("failed to hard-link %q to %q: %w", dst, existing, err)
	}

	return true, nil
}

// constructDestPath implements spec.md §4.7.
func (e *Engine) constructDestPath(src, target string, kind TargetKind) (string, error) {
	if e.opts.NoTargetDir {
		if fi, err := e.fs.Stat(target); err == nil && fi.IsDir() {
			return "", fmt.Errorf("%w: cannot overwrite directory %q with non-directory", ErrTargetNotDirectory, target)
		}
	}

	if e.opts.Parents {
		if fi, err := e.fs.Stat(target); err != nil || !fi.IsDir() {
			return "", fmt.Errorf("%w: %q", ErrNotADirectory, target)
		}
	}

	if kind == TargetFile {
		return target, nil
	}

	root := ""
	if !e.opts.Parents {
		root = filepath.Dir(src)
	}

	return localizeToTarget(root, src, target)
}

// dereferenceFor reports whether src should be dereferenced, given the
// effective DereferenceMode and whether src is itself a command-line
// operand (cliDereference) as opposed to an entry discovered while
// recursing.
func (e *Engine) dereferenceFor(src string, cliDereference bool) bool {
	switch e.opts.Dereference {
	case DereferenceAlways:
		return true
	case DereferenceCommandLineOnly:
		return cliDereference
	default: // DereferenceNever
		return false
	}
}

// lstatOrStat reads metadata for path, following the final symlink iff
// dereference is true.
func (e *Engine) lstatOrStat(path string, dereference bool) (os.FileInfo, error) {
	if dereference {
		return e.fs.Stat(path)
	}

	if lstater, ok := e.fs.(Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(path)

		return fi, err
	}

	return e.fs.Stat(path)
}
