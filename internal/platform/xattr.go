package platform

import (
	"fmt"

	"github.com/pkg/xattr"
)

// CopyXattrs satisfies cpengine.XattrCopier: enumerate src's extended
// attributes and set each one on dst. Missing xattr support on the
// underlying filesystem surfaces as an error from xattr.List, which the
// engine's Preserve-level guard turns into a log line or an abort
// depending on whether preservation was required.
func (*OSFs) CopyXattrs(src, dst string) error {
	names, err := xattr.List(src)
	if err != nil {
		return fmt.Errorf("failed to list xattrs on %q: %w", src, err)
	}

	for _, name := range names {
		value, err := xattr.Get(src, name)
		if err != nil {
			return fmt.Errorf("failed to read xattr %q on %q: %w", name, src, err)
		}

		if err := xattr.Set(dst, name, value); err != nil {
			return fmt.Errorf("failed to set xattr %q on %q: %w", name, dst, err)
		}
	}

	return nil
}
