package main

import (
	"testing"

	"github.com/desertwitch/gocp/internal/cpengine"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func Test_Unit_Translate_Archive_SetsRecursiveAndPreserveAll(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Archive: true, operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)

	require.True(t, opts.Recursive)
	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Mode)
	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Ownership)
	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Links)
	require.Equal(t, cpengine.DereferenceNever, opts.Dereference)
}

func Test_Unit_Translate_PosixPreserve_SetsModeOwnershipTimestamps(t *testing.T) {
	t.Parallel()

	o := &rawOptions{PosixPreserve: true, operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)

	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Mode)
	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Ownership)
	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Timestamps)
	require.Equal(t, cpengine.PreserveNo, opts.Attrs.Xattr)
}

func Test_Unit_Translate_ExplicitPreserveList_IsRequired(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Preserve: []string{"mode", "xattr"}, operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)

	require.Equal(t, cpengine.PreserveRequired, opts.Attrs.Mode)
	require.Equal(t, cpengine.PreserveRequired, opts.Attrs.Xattr)
	require.Equal(t, cpengine.PreserveNo, opts.Attrs.Ownership)
}

func Test_Unit_Translate_NoPreserveAppliedAfterPreserve(t *testing.T) {
	t.Parallel()

	o := &rawOptions{
		Preserve:   []string{"all"},
		NoPreserve: []string{"xattr"},
		operands:   []string{"/a", "/b"},
	}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)

	require.Equal(t, cpengine.PreserveBestEffort, opts.Attrs.Mode)
	require.Equal(t, cpengine.PreserveNo, opts.Attrs.Xattr)
}

func Test_Unit_Translate_BadPreserveName_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Preserve: []string{"bogus"}, operands: []string{"/a", "/b"}}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, errArgBadPreserve)
}

func Test_Unit_Translate_ConflictingCopyModes_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Link: true, SymbolicLink: true, operands: []string{"/a", "/b"}}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, cpengine.ErrInvalidOptions)
}

func Test_Unit_Translate_NoClobberAndInteractive_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{NoClobber: true, Interactive: true, operands: []string{"/a", "/b"}}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, cpengine.ErrInvalidOptions)
}

func Test_Unit_Translate_RemoveDestinationWinsOverForce(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Force: true, RemoveDestination: true, operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)
	require.Equal(t, cpengine.ClobberRemoveDestination, opts.Overwrite.Clobber)
}

func Test_Unit_Translate_ReflinkDefaultAuto(t *testing.T) {
	t.Parallel()

	o := &rawOptions{operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)
	require.Equal(t, cpengine.ReflinkAuto, opts.Reflink)
}

func Test_Unit_Translate_ReflinkBadValue_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Reflink: "sometimes", operands: []string{"/a", "/b"}}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, errArgBadMode)
}

func Test_Unit_Translate_BackupRequiresNamer(t *testing.T) {
	t.Parallel()

	o := &rawOptions{Backup: "simple", operands: []string{"/a", "/b"}}

	opts, err := o.translate(afero.NewMemMapFs())
	require.NoError(t, err)
	require.NotNil(t, opts.Backup)
	require.Equal(t, cpengine.BackupSimple, opts.BackupMode)
}

func Test_Unit_Translate_NoOperands_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, errArgNoSources)
}

func Test_Unit_Translate_DereferenceMutuallyExclusive_Error(t *testing.T) {
	t.Parallel()

	o := &rawOptions{DereferenceAll: true, DereferenceNone: true, operands: []string{"/a", "/b"}}

	_, err := o.translate(afero.NewMemMapFs())
	require.ErrorIs(t, err, cpengine.ErrInvalidOptions)
}
