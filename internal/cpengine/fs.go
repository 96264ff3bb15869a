package cpengine

import (
	"os"
	"time"

	"github.com/spf13/afero"
)

// FS is the filesystem capability the engine is built against. It embeds
// afero.Fs for the directory/regular-file operations that have a faithful
// in-memory implementation (letting the policy-heavy parts of the engine be
// exercised against afero.NewMemMapFs() in unit tests), and is extended by
// the optional capability interfaces below for operations — symlinks, hard
// links, FIFOs, ownership, extended attributes, reflink — that have no
// faithful in-memory model and are only available from a real OS-backed
// implementation (see internal/platform).
//
// Components consult the optional interfaces with a type assertion and
// degrade to ErrCapabilityUnavailable when absent, per the platform-gating
// design note.
type FS interface {
	afero.Fs
}

// Lstater mirrors afero.Lstater: Stat that does not follow a final symlink.
type Lstater interface {
	LstatIfPossible(name string) (os.FileInfo, bool, error)
}

// Symlinker creates and reads symbolic links.
type Symlinker interface {
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
}

// Linker creates hard links.
type Linker interface {
	Link(oldname, newname string) error
}

// Owner changes ownership without following a final symlink.
type Owner interface {
	Lchown(name string, uid, gid int) error
}

// TimeSetter sets access/modification times without following a final
// symlink (lutimes semantics).
type TimeSetter interface {
	Lutimes(name string, atime, mtime time.Time) error
}

// FIFOMaker creates named pipes.
type FIFOMaker interface {
	Mkfifo(name string, mode os.FileMode) error
}

// XattrCopier enumerates and copies extended attributes from src to dst.
type XattrCopier interface {
	CopyXattrs(src, dst string) error
}

// SecurityContextCopier copies a platform security label (e.g. SELinux)
// from src to dst. Implementations are best-effort on platforms without
// such a facility.
type SecurityContextCopier interface {
	CopySecurityContext(src, dst string) error
}

// ReflinkCopier performs a copy-on-write clone of src onto dst, returning an
// error if the underlying filesystem cannot do so.
type ReflinkCopier interface {
	ReflinkCopy(src, dst string) error
}

// Identifier extracts the cross-mount-safe identity of a path, used for
// hard-link ledger keys and cycle detection.
type Identifier interface {
	FileID(fi os.FileInfo) FileInformation
}
