package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func setupTestFs() afero.Fs {
	return afero.NewMemMapFs()
}

func setupTestProgram(fs afero.Fs, args []string) (*program, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	prog := &program{
		fsys:    fs,
		stdout:  stdout,
		stderr:  stderr,
		rawOpts: &rawOptions{},
	}

	if args == nil {
		args = []string{"gocp", "/src", "/dst"}
	}

	if err := prog.parseArgs(args); err != nil {
		panic("expected to parse test args successfully: " + err.Error())
	}

	return prog, stdout, stderr
}

func Test_Unit_ParseArgs_OperandsCaptured_Success(t *testing.T) {
	t.Parallel()

	prog, _, _ := setupTestProgram(setupTestFs(), []string{"gocp", "-r", "/a", "/b", "/dst"})

	require.True(t, prog.rawOpts.Recursive)
	require.Equal(t, []string{"/a", "/b", "/dst"}, prog.rawOpts.operands)
}

func Test_Unit_ParseArgs_PreserveCommaList_Accumulates(t *testing.T) {
	t.Parallel()

	prog, _, _ := setupTestProgram(setupTestFs(), []string{"gocp", "--preserve=mode,ownership", "/a", "/b"})

	require.Equal(t, []string{"mode", "ownership"}, prog.rawOpts.Preserve)
}

func Test_Unit_ParseArgs_ConfigYaml_FillsUnsetFlags(t *testing.T) {
	t.Parallel()

	fs := setupTestFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("recursive: true\nverbose: true\n"), 0o644))

	prog, _, _ := setupTestProgram(fs, []string{"gocp", "--config=/cfg.yaml", "/a", "/b"})

	require.True(t, prog.rawOpts.Recursive)
	require.True(t, prog.rawOpts.Verbose)
}

func Test_Unit_ParseArgs_FlagOverridesConfigYaml(t *testing.T) {
	t.Parallel()

	fs := setupTestFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("recursive: false\n"), 0o644))

	prog, _, _ := setupTestProgram(fs, []string{"gocp", "--config=/cfg.yaml", "-r", "/a", "/b"})

	require.True(t, prog.rawOpts.Recursive)
}

func Test_Unit_ParseLogLevel_KnownLevels_Success(t *testing.T) {
	t.Parallel()

	level, err := parseLogLevel("debug")
	require.NoError(t, err)
	require.Equal(t, "DEBUG", level.String())
}

func Test_Unit_ParseLogLevel_Unknown_Error(t *testing.T) {
	t.Parallel()

	_, err := parseLogLevel("loud")
	require.ErrorIs(t, err, errArgInvalidLogLevel)
}
