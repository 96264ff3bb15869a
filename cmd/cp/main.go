/*
gocp is a POSIX-style file-and-directory copy utility, GNU-`cp`-compatible
for the operand and flag surface it implements. It duplicates one or more
source filesystem entries into a destination path, optionally preserving
ownership, mode, timestamps, security context and extended attributes,
following GNU's rules for symlinks, hard links, copy-on-write acceleration,
and the many edge cases around pre-existing destinations (self-copy,
dangling symlinks, directory/file conflicts, backups, interactive prompts).

# FEATURES

  - Five copy modes: plain data copy, hard link, symlink, update-if-newer,
    and attributes-only.
  - Three overwrite policies: clobber (with force / remove-destination
    sub-modes), interactive, and no-clobber.
  - Attribute preservation with per-attribute required/best-effort
    semantics: ownership, mode, timestamps, security context, hard links,
    extended attributes.
  - Recursive directory copy with cycle detection, one-file-system
    support, and hard-link preservation across the files copied in one
    invocation.
  - Copy-on-write acceleration via FICLONE where the filesystem supports
    it, with auto/always/never control.
  - GNU-compatible backup naming (~, numbered, existing) on overwrite.
  - CLI and YAML config: combine a structured config file with flags.
  - JSON or human-readable structured logs; an optional progress bar.

# INSTALLATION

To build from source, run `go build -o gocp ./cmd/cp` in the module root.
`go test ./...` runs the test suite.

# USAGE

	gocp [flags] SOURCE... DEST
	gocp [flags] -t DEST SOURCE...

# ARGUMENTS

	-t DIR, --target-directory=DIR
		All operands are sources; DIR is the target.

	-T, --no-target-directory
		Treat the destination as a file, not a directory.

	-r, -R, --recursive
		Recurse into source directories.

	-a, --archive
		Equivalent to -dR --preserve=all.

	-d
		Equivalent to --no-dereference --preserve=links.

	-p
		Equivalent to --preserve=mode,ownership,timestamps.

	--preserve=LIST
		Preserve the listed attributes: mode, ownership, timestamps,
		context, links, xattr, all. A LIST value is required; a bare
		--preserve takes the next argument as its LIST.

	--no-preserve=LIST
		Negation of --preserve; applied after every --preserve on the
		command line, in argument order.

	-l, --link
		Hard-link instead of copying.

	-s, --symbolic-link
		Symlink instead of copying.

	--attributes-only
		Create the destination, copy only attributes, write no data.

	-f, --force
		If the destination cannot be opened for writing, remove it and
		retry.

	--remove-destination
		Always remove the destination before writing to it.

	-i, --interactive
		Ask before overwriting an existing destination.

	-n, --no-clobber
		Silently skip existing destinations. Mutually exclusive with
		--backup.

	-u, --update
		Copy only when the source is newer than an existing destination,
		or the destination is missing.

	-L, -P, -H
		Dereference all symlinks / dereference none / dereference only
		symlinks named directly on the command line.

	--parents
		Recreate the full source path under the destination directory.

	--reflink=WHEN
		WHEN is auto (the default when the flag is absent), always, or
		never. A WHEN value is required when the flag is given.

	--sparse=WHEN
		WHEN is auto (default), always, or never.

	--backup=CONTROL, --suffix=SUF
		CONTROL is none, simple, numbered, or existing, and is required
		when --backup is given. SUF defaults to "~".

	-x, --one-file-system
		Do not cross mount points while recursing.

	-v, --verbose
		Print "src -> dst" per file copied (and per parent with
		--parents).

	--strip-trailing-slashes
		Strip trailing '/' from source operands.

	-g, --progress
		Display a progress bar (non-GNU extension).

	--config string
		Optional. Path to a YAML file supplying defaults for any flag not
		explicitly given on the command line.

	--log-level [debug|info|warn|error]
		Optional. Controls verbosity of the operational logs emitted to
		standard error. Default: info.

	--json
		Optional. Emit operational logs in JSON instead of the default
		human-readable format.

# RETURN CODES

  - `0`: Success
  - `1`: Failure, or at least one file failed to copy

# DESIGN CHOICES AND LIMITATIONS

The engine is single-threaded and synchronous: a copy in progress cannot be
cancelled mid-file, only between files and between directory entries. An
interrupted process leaves whatever the OS left behind; a partial
destination is never rolled back.

--copy-contents for special files and --context (an explicit SELinux label
override) are not implemented; both are rejected at configuration time if
requested, the same way GNU's own cp rejects them on builds lacking the
relevant platform support.

# SECURITY, CONTRIBUTIONS AND LICENSING

Please report issues via the project's issue tracker. Contributions are
welcome and should pass the test suite and linting rules before submission.
All code is licensed under the GNU General Public License v2.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/desertwitch/gocp/internal/cpengine"
	"github.com/desertwitch/gocp/internal/platform"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1

	exitTimeout = 10 * time.Second
)

var (
	// Version is filled in at build time.
	Version string

	errArgConfigMalformed = errors.New("--config yaml file is malformed")
	errArgConfigMissing   = errors.New("--config yaml file does not exist")
	errArgInvalidLogLevel = errors.New("--log-level has an unrecognized value")
	errArgNoSources       = errors.New("missing file operand")
	errArgBadPreserve     = errors.New("invalid --preserve/--no-preserve attribute name")
	errArgBadMode         = errors.New("--reflink/--sparse/--backup value not recognized")
)

type program struct {
	fsys   cpengine.FS
	stdout io.Writer
	stderr io.Writer

	rawOpts *rawOptions
	opts    cpengine.Options

	log   *slog.Logger
	flags *flag.FlagSet

	provokeTestPanic bool
}

func main() {
	var prog *program
	var exitCode int

	defer func() {
		if prog != nil {
			prog.log.Info("program exited", "code", exitCode)
		}
		os.Exit(exitCode)
	}()

	fmt.Fprintf(os.Stdout, "gocp (v%s)\n", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	doneChan := make(chan int, 1)

	prog, err := newProgram(os.Args, platform.NewOSFs(), os.Stdout, os.Stderr)
	if prog == nil || err != nil {
		exitCode = exitCodeFailure

		return
	}

	go func() {
		code, _ := prog.run(ctx)
		doneChan <- code
	}()

	select {
	case code := <-doneChan:
		exitCode = code

		return

	case <-sigChan:
		prog.log.Warn("received interrupt signal; shutting down (waiting up to 10s)...")
		cancel()

		select {
		case code := <-doneChan:
			exitCode = code

			return

		case <-time.After(exitTimeout):
			prog.log.Error("timed out while waiting for program exit; killing...", "error-type", "fatal")
			exitCode = exitCodeFailure

			return
		}
	}
}

func newProgram(cliArgs []string, fsys cpengine.FS, stdout, stderr io.Writer) (*program, error) {
	prog := &program{
		fsys:    fsys,
		stdout:  stdout,
		stderr:  stderr,
		rawOpts: &rawOptions{},
	}

	if err := prog.parseArgs(cliArgs); err != nil {
		fmt.Fprintf(prog.stderr, "fatal: failed to parse configuration: %v\n\n", err)
		prog.flags.Usage()

		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	opts, err := prog.rawOpts.translate(prog.fsys)
	if err != nil {
		fmt.Fprintf(prog.stderr, "fatal: failed to validate configuration: %v\n\n", err)
		prog.flags.Usage()

		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	prog.opts = opts

	prog.log = slog.New(prog.logHandler())

	return prog, nil
}

func (prog *program) run(ctx context.Context) (retExitCode int, retError error) {
	defer func() {
		if r := recover(); r != nil {
			prog.log.Error("internal panic recovered", "error", r, "error-type", "fatal")
			debug.PrintStack()
			retExitCode = exitCodeFailure
		}
	}()

	sources, target, kind, err := cpengine.Resolve(prog.fsys, prog.rawOpts.operands, prog.opts)
	if err != nil {
		prog.log.Error("failed to resolve operands", "error", err, "error-type", "fatal")

		return exitCodeFailure, fmt.Errorf("failed to resolve operands: %w", err)
	}

	engine := cpengine.New(prog.fsys, prog.opts, prog.log)

	if prog.provokeTestPanic {
		panic("testing program panic")
	}

	if err := engine.Copy(ctx, sources, target, kind); err != nil {
		if errors.Is(err, cpengine.ErrNotAllFilesCopied) {
			prog.log.Warn("completed with per-file failures; exiting...")

			return exitCodeFailure, nil
		}

		if !errors.Is(err, context.Canceled) {
			prog.log.Error("failed to copy", "error", err, "error-type", "fatal")
		}

		return exitCodeFailure, fmt.Errorf("failed to copy: %w", err)
	}

	prog.log.Info("completed; exiting...")

	return exitCodeSuccess, nil
}
