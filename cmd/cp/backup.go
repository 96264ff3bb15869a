package main

import (
	"fmt"
	"os"

	"github.com/desertwitch/gocp/internal/cpengine"
)

// gnuBackupNamer implements the classic GNU --backup naming scheme: simple
// (suffix appended), numbered (.~N~), and existing (numbered if a first
// numbered backup dest.~1~ exists, simple otherwise). Only dest.~1~ is
// probed for "existing"; higher-numbered backups without a .~1~ are not
// detected.
type gnuBackupNamer struct{}

func (gnuBackupNamer) BackupPath(dest string, mode cpengine.BackupMode, suffix string, fs cpengine.FS) (string, error) {
	switch mode {
	case cpengine.BackupNone:
		return "", nil

	case cpengine.BackupSimple:
		return dest + suffix, nil

	case cpengine.BackupNumbered:
		return nextNumberedBackup(dest, fs)

	case cpengine.BackupExisting:
		if hasNumberedBackup(dest, fs) {
			return nextNumberedBackup(dest, fs)
		}

		return dest + suffix, nil

	default:
		return "", fmt.Errorf("%w: unrecognized backup mode %s", cpengine.ErrInvalidOptions, mode)
	}
}

func hasNumberedBackup(dest string, fs cpengine.FS) bool {
	_, err := fs.Stat(fmt.Sprintf("%s.~1~", dest))

	return err == nil
}

func nextNumberedBackup(dest string, fs cpengine.FS) (string, error) {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.~%d~", dest, n)

		if _, err := fs.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("probing backup candidate %q: %w", candidate, err)
		}
	}
}
