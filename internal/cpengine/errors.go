package cpengine

import "errors"

var (
	// ErrNoSources is returned when no source operands were given.
	ErrNoSources = errors.New("missing source operand")

	// ErrNoTarget is returned when no destination operand was given.
	ErrNoTarget = errors.New("missing destination operand")

	// ErrTargetNotDirectory is returned when a destination that must be
	// treated as a file (single source, or --no-target-directory) is an
	// existing directory.
	ErrTargetNotDirectory = errors.New("target is not a directory")

	// ErrSameFile is returned when source and destination resolve to the
	// same file under the active dereference policy.
	ErrSameFile = errors.New("source and destination are the same file")

	// ErrNotADirectory is returned when a source is a directory but
	// recursion is off, and when a target that must be a directory (several
	// sources, --target-directory, --parents) is not one.
	ErrNotADirectory = errors.New("omitting directory (use -r or -R)")

	// ErrDanglingSymlink is returned when a symlink whose target does not
	// exist is encountered and must be dereferenced.
	ErrDanglingSymlink = errors.New("not writing through dangling symlink")

	// ErrOverwriteDenied is the message logged when the overwrite policy
	// refuses to replace an existing destination; the destination is
	// skipped and no error is returned.
	ErrOverwriteDenied = errors.New("not overwriting existing file")

	// ErrOverwriteDeclined is the message logged when an interactive prompt
	// was declined by the user; the destination is skipped and no error is
	// returned.
	ErrOverwriteDeclined = errors.New("not overwriting, declined by user")

	// ErrDeviceMismatch is the message logged when --one-file-system meets
	// a directory entry on a different device than the source root; the
	// entry is skipped and no error is returned.
	ErrDeviceMismatch = errors.New("skipping, different file system")

	// ErrCopyLoop is returned when recursion reaches a directory whose
	// identity is already on the current descent path (a cycle). It is not
	// returned for a destination that lies inside the source tree.
	ErrCopyLoop = errors.New("cannot copy a directory into itself")

	// ErrUnsupportedFileType is returned for file types the engine cannot
	// copy (sockets, unknown modes) without --recursive handling for them.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrCapabilityUnavailable is returned when a requested preservation
	// or copy-acceleration capability has no platform implementation and
	// the caller required it.
	ErrCapabilityUnavailable = errors.New("capability not available on this platform")
)
