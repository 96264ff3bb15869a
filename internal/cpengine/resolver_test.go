package cpengine

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoOperands_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	_, _, _, err := Resolve(fs, nil, Options{})
	require.ErrorIs(t, err, ErrNoSources)
}

func TestResolve_SingleSourceFile_TargetFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src", []byte("hi"), 0o644))

	sources, target, kind, err := Resolve(fs, []string{"/src", "/dst"}, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/src"}, sources)
	require.Equal(t, "/dst", target)
	require.Equal(t, TargetFile, kind)
}

func TestResolve_MultipleSourcesNonDirTarget_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	_, _, _, err := Resolve(fs, []string{"/a", "/b", "/dst"}, Options{})
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestResolve_ExistingDirTarget_TargetDirectory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/dst", 0o755))

	sources, target, kind, err := Resolve(fs, []string{"/a", "/dst"}, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"/a"}, sources)
	require.Equal(t, "/dst", target)
	require.Equal(t, TargetDirectory, kind)
}

func TestResolve_TargetDirFlag_AllOperandsAreSources(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/dst", 0o755))

	sources, target, kind, err := Resolve(fs, []string{"/a", "/b"}, Options{TargetDir: "/dst"})
	require.NoError(t, err)
	require.Equal(t, []string{"/a", "/b"}, sources)
	require.Equal(t, "/dst", target)
	require.Equal(t, TargetDirectory, kind)
}

func TestResolve_TargetDirFlagNotADirectory_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notdir", []byte("x"), 0o644))

	_, _, _, err := Resolve(fs, []string{"/a"}, Options{TargetDir: "/notdir"})
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestResolve_NoTargetDirWithExtraOperand_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	_, _, _, err := Resolve(fs, []string{"/a", "/b", "/c"}, Options{NoTargetDir: true})
	require.ErrorIs(t, err, ErrInvalidOptions)
}

func TestResolve_NoTargetDirOntoExistingDirectory_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/dst", 0o755))

	_, _, _, err := Resolve(fs, []string{"/a", "/dst"}, Options{NoTargetDir: true})
	require.ErrorIs(t, err, ErrTargetNotDirectory)
}

func TestStripTrailingSlashes_TrimsTrailingSeparators(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/a/b", stripTrailingSlashes("/a/b///"))
	require.Equal(t, "/", stripTrailingSlashes("///"))
	require.Equal(t, "/a", stripTrailingSlashes("/a"))
}

func TestLocalizeToTarget_JoinsRelativePath(t *testing.T) {
	t.Parallel()

	dst, err := localizeToTarget("/a", "/a/b/c", "/dst")
	require.NoError(t, err)
	require.Equal(t, "/dst/b/c", dst)
}

func TestAlignedAncestors_MatchesSpecExample(t *testing.T) {
	t.Parallel()

	got := alignedAncestors("a/b/c", "d/a/b/c")
	want := [][2]string{
		{"a", "d/a"},
		{"a/b", "d/a/b"},
	}
	require.Equal(t, want, got)
}

func TestAlignedAncestors_NoProperAncestors_Empty(t *testing.T) {
	t.Parallel()

	got := alignedAncestors("a", "d/a")
	require.Empty(t, got)
}
