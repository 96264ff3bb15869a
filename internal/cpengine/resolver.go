package cpengine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TargetKind distinguishes whether the resolved target is a directory into
// which all sources are placed, or a single named destination file.
type TargetKind int

const (
	// TargetFile means target is a single, named destination.
	TargetFile TargetKind = iota
	// TargetDirectory means target is a directory sources are placed into.
	TargetDirectory
)

func (k TargetKind) String() string {
	if k == TargetDirectory {
		return "directory"
	}

	return "file"
}

// Resolve normalises the raw operand list into sources, a target, and the
// target's kind, applying the rules of the path resolver in order. fs is
// consulted only to test whether a path currently exists and is a
// directory.
func Resolve(fs FS, args []string, opts Options) (sources []string, target string, kind TargetKind, err error) {
	if len(args) == 0 {
		return nil, "", 0, ErrNoSources
	}

	if opts.TargetDir != "" {
		if fi, statErr := fs.Stat(opts.TargetDir); statErr != nil || !fi.IsDir() {
			return nil, "", 0, fmt.Errorf("%w: %q", ErrNotADirectory, opts.TargetDir)
		}

		sources = append(sources, args...)
		target = opts.TargetDir
	} else {
		if opts.NoTargetDir && len(args) > 2 {
			return nil, "", 0, fmt.Errorf("%w: extra operand %q", ErrInvalidOptions, args[2])
		}

		if len(args) < 2 {
			return nil, "", 0, ErrNoTarget
		}

		sources = append(sources, args[:len(args)-1]...)
		target = args[len(args)-1]
	}

	if opts.StripSlashes {
		for i, s := range sources {
			sources[i] = stripTrailingSlashes(s)
		}
	}

	isDir := false
	if fi, statErr := fs.Stat(target); statErr == nil {
		isDir = fi.IsDir()
	}

	if !opts.NoTargetDir && (len(sources) > 1 || isDir) {
		kind = TargetDirectory

		if !isDir {
			return nil, "", 0, fmt.Errorf("%w: %q", ErrNotADirectory, target)
		}
	} else {
		kind = TargetFile

		if isDir {
			return nil, "", 0, fmt.Errorf("%w: cannot overwrite directory %q with non-directory", ErrTargetNotDirectory, target)
		}
	}

	return sources, target, kind, nil
}

// stripTrailingSlashes removes trailing path separators from p, leaving a
// lone separator (the root) untouched.
func stripTrailingSlashes(p string) string {
	trimmed := strings.TrimRight(p, string(filepath.Separator))
	if trimmed == "" {
		return p[:1]
	}

	return trimmed
}

// localizeToTarget computes target/(source relative to root), per spec
// property 6.
func localizeToTarget(root, source, target string) (string, error) {
	rel, err := filepath.Rel(root, source)
	if err != nil {
		return "", fmt.Errorf("failed to localize %q under %q: %w", source, root, err)
	}

	return filepath.Join(target, rel), nil
}

// alignedAncestors returns, for each proper ancestor of source (deepest
// last, excluding source itself), a pair (sourceAncestor, destAncestor)
// where dest is the full destination path that source itself resolves to
// (i.e. dest's trailing path components mirror source's). This powers
// --parents' per-ancestor verbose output: e.g.
// alignedAncestors("a/b/c", "d/a/b/c") == [("a","d/a"), ("a/b","d/a/b")].
func alignedAncestors(source, dest string) [][2]string {
	srcParts := strings.Split(filepath.Clean(source), string(filepath.Separator))
	dstParts := strings.Split(filepath.Clean(dest), string(filepath.Separator))

	diff := len(dstParts) - len(srcParts)
	if diff < 0 {
		return nil
	}

	var pairs [][2]string

	for i := 1; i < len(srcParts); i++ {
		srcAnc := filepath.Join(srcParts[:i]...)
		dstAnc := filepath.Join(dstParts[:i+diff]...)
		pairs = append(pairs, [2]string{srcAnc, dstAnc})
	}

	return pairs
}
