package cpengine

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestOptions() Options {
	return Options{
		CopyMode:  CopyModeCopy,
		Overwrite: NewClobberOverwrite(ClobberStandard),
		Reflink:   ReflinkNever,
	}
}

func TestEngine_Copy_SingleFile_CopiesContent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src.txt", []byte("hello"), 0o644))

	sources, target, kind, err := Resolve(fs, []string{"/src.txt", "/dst.txt"}, newTestOptions())
	require.NoError(t, err)

	e := New(fs, newTestOptions(), nil)
	require.NoError(t, e.Copy(context.Background(), sources, target, kind))

	got, err := afero.ReadFile(fs, "/dst.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestEngine_Copy_RecursiveDirectory_CopiesTree(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("A"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/sub/b.txt", []byte("B"), 0o644))

	opts := newTestOptions()
	opts.Recursive = true

	sources, target, kind, err := Resolve(fs, []string{"/src", "/dst"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)
	require.NoError(t, e.Copy(context.Background(), sources, target, kind))

	got, err := afero.ReadFile(fs, "/dst/a.txt")
	require.NoError(t, err)
	require.Equal(t, "A", string(got))

	got, err = afero.ReadFile(fs, "/dst/sub/b.txt")
	require.NoError(t, err)
	require.Equal(t, "B", string(got))
}

func TestEngine_Copy_NonRecursiveDirectory_Error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0o755))

	opts := newTestOptions()

	sources, target, kind, err := Resolve(fs, []string{"/src", "/dst"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)
	err = e.Copy(context.Background(), sources, target, kind)
	require.ErrorIs(t, err, ErrNotAllFilesCopied)
}

func TestEngine_Copy_NoClobberSkipsExisting(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src.txt", []byte("new"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/dst.txt", []byte("old"), 0o644))

	opts := newTestOptions()
	opts.Overwrite = NewNoClobberOverwrite()

	sources, target, kind, err := Resolve(fs, []string{"/src.txt", "/dst.txt"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)
	require.NoError(t, e.Copy(context.Background(), sources, target, kind))

	got, err := afero.ReadFile(fs, "/dst.txt")
	require.NoError(t, err)
	require.Equal(t, "old", string(got))
}

func TestEngine_Copy_Verbose_PrintsSourceArrowDest(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src.txt", []byte("hi"), 0o644))

	opts := newTestOptions()
	opts.Verbose = true

	sources, target, kind, err := Resolve(fs, []string{"/src.txt", "/dst.txt"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)

	var buf bytes.Buffer
	e.SetVerboseWriter(&buf)

	require.NoError(t, e.Copy(context.Background(), sources, target, kind))
	require.Contains(t, buf.String(), "/src.txt -> /dst.txt")
}

func TestEngine_Copy_AttributesOnly_CreatesEmptyFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src.txt", []byte("content"), 0o644))

	opts := newTestOptions()
	opts.CopyMode = CopyModeAttrOnly

	sources, target, kind, err := Resolve(fs, []string{"/src.txt", "/dst.txt"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)
	require.NoError(t, e.Copy(context.Background(), sources, target, kind))

	got, err := afero.ReadFile(fs, "/dst.txt")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEngine_Copy_DuplicateSource_SkipsSecondOccurrence(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src.txt", []byte("hi"), 0o644))
	require.NoError(t, fs.MkdirAll("/dst", 0o755))

	opts := newTestOptions()

	sources, target, kind, err := Resolve(fs, []string{"/src.txt", "/src.txt", "/dst"}, opts)
	require.NoError(t, err)

	e := New(fs, opts, nil)
	require.NoError(t, e.Copy(context.Background(), sources, target, kind))
}
