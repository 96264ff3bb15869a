// Package platform supplies the real-filesystem capability implementations
// the copy engine's capability hooks dispatch to: symlinks, hard links,
// FIFOs, ownership, timestamps, extended attributes, and reflink/CoW
// acceleration. It is the only package in this module that reaches past
// afero's portable subset into os and golang.org/x/sys/unix directly,
// exactly the way the spec's "platform gating" design note describes: the
// engine is written against capability interfaces, and a non-POSIX build
// would supply a different implementation of this package without
// touching engine logic.
package platform

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
)

// OSFs is a real-filesystem afero.Fs that additionally implements the
// optional capability interfaces cpengine consults, except
// SecurityContextCopier; on non-Linux builds TimeSetter, FIFOMaker,
// Identifier and ReflinkCopier are not implemented either. Production
// wiring (cmd/cp) always constructs one of these; tests exercising only
// the policy layer use afero.NewMemMapFs() instead, which implements none
// of the capability interfaces apart from Lstater and so exercises the
// engine's graceful-degradation paths.
type OSFs struct{}

// NewOSFs constructs the production filesystem backend.
func NewOSFs() *OSFs { return &OSFs{} }

func (*OSFs) Create(name string) (afero.File, error) {
	f, err := os.Create(name)

	return f, wrap("create", name, err)
}

func (*OSFs) Mkdir(name string, perm os.FileMode) error {
	return wrap("mkdir", name, os.Mkdir(name, perm))
}

func (*OSFs) MkdirAll(path string, perm os.FileMode) error {
	return wrap("mkdirall", path, os.MkdirAll(path, perm))
}

func (*OSFs) Open(name string) (afero.File, error) {
	f, err := os.Open(name)

	return f, wrap("open", name, err)
}

func (*OSFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := os.OpenFile(name, flag, perm)

	return f, wrap("openfile", name, err)
}

func (*OSFs) Remove(name string) error {
	return wrap("remove", name, os.Remove(name))
}

func (*OSFs) RemoveAll(path string) error {
	return wrap("removeall", path, os.RemoveAll(path))
}

func (*OSFs) Rename(oldname, newname string) error {
	return wrap("rename", oldname, os.Rename(oldname, newname))
}

func (*OSFs) Stat(name string) (os.FileInfo, error) {
	fi, err := os.Stat(name)

	return fi, wrap("stat", name, err)
}

func (*OSFs) Name() string { return "OSFs" }

func (*OSFs) Chmod(name string, mode os.FileMode) error {
	return wrap("chmod", name, os.Chmod(name, mode))
}

func (*OSFs) Chown(name string, uid, gid int) error {
	return wrap("chown", name, os.Chown(name, uid, gid))
}

func (*OSFs) Chtimes(name string, atime, mtime time.Time) error {
	return wrap("chtimes", name, os.Chtimes(name, atime, mtime))
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s %q: %w", op, path, err)
}
