//go:build !linux

package cpengine

import (
	"os"
	"time"
)

// platformOwner has no portable implementation outside Linux's Stat_t; it
// reports unavailable so Preserve.Required callers fail loudly instead of
// silently no-op'ing, per the spec's capability-hook design note.
func platformOwner(fi os.FileInfo) (uid, gid int, ok bool) {
	return 0, 0, false
}

// platformTimes falls back to ModTime for both atime and mtime on
// platforms without a known stat structure layout here.
func platformTimes(fi os.FileInfo) (atime, mtime time.Time) {
	return fi.ModTime(), fi.ModTime()
}

// deviceOf has no portable implementation outside Linux here; returning a
// constant means --one-file-system comparisons never spuriously trigger.
func deviceOf(fi os.FileInfo) uint64 {
	return 0
}

// nlinkOf has no portable implementation outside Linux here; treating every
// file as having a single link means hard-link preservation degrades to
// "always copy", never "falsely treat distinct files as linked".
func nlinkOf(fi os.FileInfo) uint64 {
	return 1
}
