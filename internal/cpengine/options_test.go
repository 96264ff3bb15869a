package cpengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreserve_Max_TakesStricter(t *testing.T) {
	t.Parallel()

	require.Equal(t, PreserveRequired, PreserveNo.Max(PreserveRequired))
	require.Equal(t, PreserveRequired, PreserveRequired.Max(PreserveBestEffort))
	require.Equal(t, PreserveBestEffort, PreserveNo.Max(PreserveBestEffort))
	require.Equal(t, PreserveNo, PreserveNo.Max(PreserveNo))
}

func TestAttributes_MergeAll_RaisesEveryFieldWithoutLowering(t *testing.T) {
	t.Parallel()

	attrs := Attributes{Mode: PreserveRequired}
	merged := attrs.MergeAll()

	require.Equal(t, PreserveRequired, merged.Mode)
	require.Equal(t, PreserveBestEffort, merged.Ownership)
	require.Equal(t, PreserveBestEffort, merged.Timestamps)
	require.Equal(t, PreserveBestEffort, merged.Context)
	require.Equal(t, PreserveBestEffort, merged.Links)
	require.Equal(t, PreserveBestEffort, merged.Xattr)
}

func TestOptions_Validate_NoClobberWithBackup_Error(t *testing.T) {
	t.Parallel()

	opts := Options{
		Overwrite:  NewNoClobberOverwrite(),
		BackupMode: BackupSimple,
		Backup:     stubBackupNamer{},
	}

	err := opts.Validate()
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptions_Validate_BackupModeWithoutNamer_Error(t *testing.T) {
	t.Parallel()

	opts := Options{
		Overwrite:  NewClobberOverwrite(ClobberStandard),
		BackupMode: BackupSimple,
	}

	err := opts.Validate()
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptions_Validate_NoTargetDirWithParents_Error(t *testing.T) {
	t.Parallel()

	opts := Options{
		Overwrite:   NewClobberOverwrite(ClobberStandard),
		NoTargetDir: true,
		Parents:     true,
	}

	err := opts.Validate()
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptions_Validate_WellFormed_NoError(t *testing.T) {
	t.Parallel()

	opts := Options{
		Overwrite: NewClobberOverwrite(ClobberStandard),
	}

	require.NoError(t, opts.Validate())
}

type stubBackupNamer struct{}

func (stubBackupNamer) BackupPath(dest string, _ BackupMode, suffix string, _ FS) (string, error) {
	return dest + suffix, nil
}
