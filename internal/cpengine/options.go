// Package cpengine implements the policy machine behind a POSIX-style file
// and directory copy: given a set of sources, a target, and a configuration,
// it decides for each source/destination pair whether to copy, how to copy
// it, what metadata to carry over, and how to handle a pre-existing
// destination.
package cpengine

import (
	"errors"
	"fmt"
	"os"
)

// CopyMode selects the primary action taken for a single source/destination
// pair. Exactly one mode is active for the lifetime of an Engine.
type CopyMode int

const (
	// CopyModeCopy performs a normal data copy (or reflink/CoW where asked).
	CopyModeCopy CopyMode = iota
	// CopyModeLink hard-links the destination to the source.
	CopyModeLink
	// CopyModeSymLink creates a symbolic link at the destination pointing at
	// the (possibly relative) source path.
	CopyModeSymLink
	// CopyModeUpdate copies only if the source is newer than an existing
	// destination, or the destination does not exist.
	CopyModeUpdate
	// CopyModeAttrOnly creates the destination (if absent) and copies
	// attributes without transferring any data.
	CopyModeAttrOnly
)

func (m CopyMode) String() string {
	switch m {
	case CopyModeCopy:
		return "copy"
	case CopyModeLink:
		return "link"
	case CopyModeSymLink:
		return "symlink"
	case CopyModeUpdate:
		return "update"
	case CopyModeAttrOnly:
		return "attrs-only"
	default:
		return fmt.Sprintf("CopyMode(%d)", int(m))
	}
}

// ClobberMode refines OverwriteModeClobber.
type ClobberMode int

const (
	// ClobberStandard overwrites an existing destination in place.
	ClobberStandard ClobberMode = iota
	// ClobberForce removes a read-only destination before writing, and
	// retries after an unlink if the initial open is refused.
	ClobberForce
	// ClobberRemoveDestination unconditionally removes the destination
	// before writing, regardless of permissions.
	ClobberRemoveDestination
)

func (m ClobberMode) String() string {
	switch m {
	case ClobberStandard:
		return "standard"
	case ClobberForce:
		return "force"
	case ClobberRemoveDestination:
		return "remove-destination"
	default:
		return fmt.Sprintf("ClobberMode(%d)", int(m))
	}
}

// OverwriteMode governs what happens when the destination of a copy already
// exists.
type OverwriteMode struct {
	kind    overwriteKind
	Clobber ClobberMode // meaningful when kind is overwriteClobber or overwriteInteractive
}

type overwriteKind int

const (
	overwriteClobber overwriteKind = iota
	overwriteInteractive
	overwriteNoClobber
)

// NewClobberOverwrite builds an OverwriteMode that proceeds unconditionally
// (subject to sub), the default GNU cp behavior.
func NewClobberOverwrite(sub ClobberMode) OverwriteMode {
	return OverwriteMode{kind: overwriteClobber, Clobber: sub}
}

// NewInteractiveOverwrite builds an OverwriteMode that consults the confirm
// hook before overwriting.
func NewInteractiveOverwrite(sub ClobberMode) OverwriteMode {
	return OverwriteMode{kind: overwriteInteractive, Clobber: sub}
}

// NewNoClobberOverwrite builds an OverwriteMode that silently skips existing
// destinations.
func NewNoClobberOverwrite() OverwriteMode {
	return OverwriteMode{kind: overwriteNoClobber}
}

// IsNoClobber reports whether this is the NoClobber variant.
func (m OverwriteMode) IsNoClobber() bool { return m.kind == overwriteNoClobber }

// IsInteractive reports whether this is the Interactive variant.
func (m OverwriteMode) IsInteractive() bool { return m.kind == overwriteInteractive }

func (m OverwriteMode) String() string {
	switch m.kind {
	case overwriteClobber:
		return "clobber(" + m.Clobber.String() + ")"
	case overwriteInteractive:
		return "interactive(" + m.Clobber.String() + ")"
	case overwriteNoClobber:
		return "no-clobber"
	default:
		return fmt.Sprintf("OverwriteMode(%d)", int(m.kind))
	}
}

// ReflinkMode governs use of copy-on-write acceleration.
type ReflinkMode int

const (
	ReflinkAuto ReflinkMode = iota
	ReflinkAlways
	ReflinkNever
)

func (m ReflinkMode) String() string {
	switch m {
	case ReflinkAuto:
		return "auto"
	case ReflinkAlways:
		return "always"
	case ReflinkNever:
		return "never"
	default:
		return fmt.Sprintf("ReflinkMode(%d)", int(m))
	}
}

// SparseMode governs whether holes are preserved or introduced.
type SparseMode int

const (
	SparseAuto SparseMode = iota
	SparseAlways
	SparseNever
)

func (m SparseMode) String() string {
	switch m {
	case SparseAuto:
		return "auto"
	case SparseAlways:
		return "always"
	case SparseNever:
		return "never"
	default:
		return fmt.Sprintf("SparseMode(%d)", int(m))
	}
}

// Preserve is a tri-state describing whether (and how strictly) an attribute
// must survive a copy.
type Preserve int

const (
	// PreserveNo skips the attribute entirely.
	PreserveNo Preserve = iota
	// PreserveBestEffort attempts the attribute; failures are logged but
	// do not abort the copy.
	PreserveBestEffort
	// PreserveRequired attempts the attribute; failure aborts the copy of
	// the current file.
	PreserveRequired
)

// Max merges two Preserve values, taking the stricter (higher) of the two.
// This is the merge rule used when e.g. --preserve=all is combined with -p
// or an explicit --preserve list; --no-preserve does not use it and resets
// the named attributes to PreserveNo instead.
func (p Preserve) Max(other Preserve) Preserve {
	if other > p {
		return other
	}

	return p
}

func (p Preserve) String() string {
	switch p {
	case PreserveNo:
		return "no"
	case PreserveBestEffort:
		return "best-effort"
	case PreserveRequired:
		return "required"
	default:
		return fmt.Sprintf("Preserve(%d)", int(p))
	}
}

// Attributes records, per attribute kind, whether and how strictly it must
// be preserved across a copy.
type Attributes struct {
	Ownership  Preserve
	Mode       Preserve
	Timestamps Preserve
	Context    Preserve
	Links      Preserve
	Xattr      Preserve
}

// MergeAll folds --preserve=all (or -a's implied preserve-all) into the
// receiver by raising every field to at least PreserveBestEffort, without
// lowering a field already set to PreserveRequired.
func (a Attributes) MergeAll() Attributes {
	a.Ownership = a.Ownership.Max(PreserveBestEffort)
	a.Mode = a.Mode.Max(PreserveBestEffort)
	a.Timestamps = a.Timestamps.Max(PreserveBestEffort)
	a.Context = a.Context.Max(PreserveBestEffort)
	a.Links = a.Links.Max(PreserveBestEffort)
	a.Xattr = a.Xattr.Max(PreserveBestEffort)

	return a
}

// DereferenceMode controls when symlinks are followed.
type DereferenceMode int

const (
	// DereferenceCommandLineOnly follows symlinks named directly as
	// operands but not symlinks discovered while recursing (GNU -H).
	DereferenceCommandLineOnly DereferenceMode = iota
	// DereferenceAlways follows every symlink encountered (GNU -L).
	DereferenceAlways
	// DereferenceNever never follows symlinks; they are recreated as
	// symlinks (GNU -P, the default when recursing).
	DereferenceNever
)

func (d DereferenceMode) String() string {
	switch d {
	case DereferenceCommandLineOnly:
		return "command-line-only"
	case DereferenceAlways:
		return "always"
	case DereferenceNever:
		return "never"
	default:
		return fmt.Sprintf("DereferenceMode(%d)", int(d))
	}
}

// BackupMode controls whether and how an existing destination is backed up
// before being overwritten. The concrete naming scheme lives outside this
// package (see the BackupNamer collaborator in Options).
type BackupMode int

const (
	BackupNone BackupMode = iota
	BackupSimple
	BackupNumbered
	BackupExisting
)

func (b BackupMode) String() string {
	switch b {
	case BackupNone:
		return "none"
	case BackupSimple:
		return "simple"
	case BackupNumbered:
		return "numbered"
	case BackupExisting:
		return "existing"
	default:
		return fmt.Sprintf("BackupMode(%d)", int(b))
	}
}

// BackupNamer computes the backup path for an existing destination about to
// be overwritten. It is an external collaborator, not implemented by this
// package; cmd/cp supplies the GNU-compatible ~/numbered-suffix scheme.
type BackupNamer interface {
	BackupPath(dest string, mode BackupMode, suffix string, fs FS) (string, error)
}

// Confirm is the interactive-prompt hook. It returns true to proceed with an
// operation the OverwriteMode is asking about, false to skip it.
type Confirm func(prompt string) bool

// Options aggregates the configuration for one invocation of the engine. It
// is constructed once, checked with Validate, and treated as read-only
// thereafter.
type Options struct {
	CopyMode       CopyMode
	Overwrite      OverwriteMode
	Attrs          Attributes
	Reflink        ReflinkMode
	Sparse         SparseMode
	Recursive      bool
	Dereference    DereferenceMode
	OneFileSystem  bool
	Parents        bool
	StripSlashes   bool
	BackupMode     BackupMode
	BackupSuffix   string
	Verbose        bool
	AttributesOnly bool
	NoTargetDir    bool
	TargetDir      string

	// Confirm is invoked by the Overwrite Policy for Interactive modes. A
	// nil Confirm is treated as "always decline" (fail safe).
	Confirm Confirm

	// Backup names backup paths; required when BackupMode != BackupNone.
	Backup BackupNamer

	// Progress receives byte-count updates and verbose-output suspension.
	// May be nil, in which case progress reporting is a no-op.
	Progress Progress

	// Umask is the process umask, read once by the caller (see
	// internal/platform.ReadUmask) and threaded through as configuration
	// rather than read again per file, per the "no global state beyond a
	// once-read umask" design note.
	Umask os.FileMode
}

// Validate enforces the configuration-time invariants expressible on
// Options alone: NoClobber XOR backups, a BackupNamer whenever backups are
// on, and no-target-directory XOR parents. Exactly one CopyMode is checked
// by the caller before Options construction, and no-target-directory with
// extra operands is checked by Resolve (it depends on the operand list).
func (o Options) Validate() error {
	if o.Overwrite.IsNoClobber() && o.BackupMode != BackupNone {
		return fmt.Errorf("%w: --no-clobber and --backup are mutually exclusive", ErrInvalidOptions)
	}

	if o.BackupMode != BackupNone && o.Backup == nil {
		return fmt.Errorf("%w: backup mode %s requires a BackupNamer", ErrInvalidOptions, o.BackupMode)
	}

	if o.NoTargetDir && o.Parents {
		return fmt.Errorf("%w: --no-target-directory and --parents are mutually exclusive", ErrInvalidOptions)
	}

	return nil
}

// ErrInvalidOptions is returned by Options.Validate for illegal combinations
// of configuration values.
var ErrInvalidOptions = errors.New("invalid options")
