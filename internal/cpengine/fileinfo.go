package cpengine

import "os"

// FileInformation is an opaque identity record for a file: device and inode
// on POSIX platforms. It is used as the hard-link ledger key and for cycle
// detection during recursive directory walks, precisely because it survives
// a file being referenced by more than one path.
type FileInformation struct {
	Device uint64
	Inode  uint64
}

// Valid reports whether the identity was actually extracted from a platform
// stat structure (as opposed to being the zero value returned when no
// Identifier capability is available).
func (fi FileInformation) Valid() bool {
	return fi.Device != 0 || fi.Inode != 0
}

// fileID extracts a FileInformation for fi, consulting fs's Identifier
// capability when present. When fs implements no Identifier, the zero value
// is returned and callers must treat hard-link preservation and cycle
// detection as unavailable (they degrade to "always copy", never "always
// treat as identical").
func fileID(fs FS, fi os.FileInfo) FileInformation {
	if ident, ok := fs.(Identifier); ok {
		return ident.FileID(fi)
	}

	return FileInformation{}
}
