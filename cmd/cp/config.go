package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"
)

const defaultLogLevel = slog.LevelInfo

// rawOptions holds the configuration surface before it is validated and
// translated into cpengine.Options. Flags and the optional --config YAML
// file populate the same struct; translate() is where the GNU-flavored
// surface (archive, -d, -p, dereference letters, preserve/no-preserve
// lists) collapses into the engine's orthogonal types.
type rawOptions struct {
	TargetDir          string   `yaml:"target-directory"`
	NoTargetDir        bool     `yaml:"no-target-directory"`
	Recursive          bool     `yaml:"recursive"`
	Archive            bool     `yaml:"archive"`
	NoDereferenceLinks bool     `yaml:"-"`
	PosixPreserve      bool     `yaml:"-"`
	Preserve           []string `yaml:"preserve"`
	NoPreserve         []string `yaml:"no-preserve"`
	Link               bool     `yaml:"link"`
	SymbolicLink       bool     `yaml:"symbolic-link"`
	AttributesOnly     bool     `yaml:"attributes-only"`
	Force              bool     `yaml:"force"`
	RemoveDestination  bool     `yaml:"remove-destination"`
	Interactive        bool     `yaml:"interactive"`
	NoClobber          bool     `yaml:"no-clobber"`
	Update             bool     `yaml:"update"`
	DereferenceAll     bool     `yaml:"-"`
	DereferenceNone    bool     `yaml:"-"`
	DereferenceCmdline bool     `yaml:"-"`
	Parents            bool     `yaml:"parents"`
	Reflink            string   `yaml:"reflink"`
	Sparse             string   `yaml:"sparse"`
	Backup             string   `yaml:"backup"`
	Suffix             string   `yaml:"suffix"`
	OneFileSystem      bool     `yaml:"one-file-system"`
	Verbose            bool     `yaml:"verbose"`
	StripSlashes       bool     `yaml:"strip-trailing-slashes"`
	Progress           bool     `yaml:"progress"`
	LogLevel           string   `yaml:"log-level"`
	JSON               bool     `yaml:"json"`

	operands []string
}

// stringListFlag adapts a *[]string to flag.Value, splitting each
// occurrence on commas and accumulating across repeated occurrences, the
// way GNU cp's --preserve can be given more than once.
type stringListFlag struct{ target *[]string }

func (f stringListFlag) String() string {
	if f.target == nil {
		return ""
	}

	return strings.Join(*f.target, ",")
}

func (f stringListFlag) Set(value string) error {
	for item := range strings.SplitSeq(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			*f.target = append(*f.target, item)
		}
	}

	return nil
}

func (prog *program) parseArgs(cliArgs []string) error {
	var (
		yamlFile string
		yamlOpts rawOptions
	)

	o := prog.rawOpts

	prog.flags = flag.NewFlagSet("gocp", flag.ExitOnError)
	prog.flags.SetOutput(prog.stderr)
	prog.flags.Usage = func() {
		fmt.Fprintf(prog.stderr, "usage: %q [flags] SOURCE... DEST\n", cliArgs[0])
		fmt.Fprintf(prog.stderr, "\t%q [flags] -t DEST SOURCE...\n\n", cliArgs[0])
		prog.flags.PrintDefaults()
	}

	prog.flags.StringVar(&o.TargetDir, "target-directory", "", "all operands are sources; this directory is the target")
	prog.flags.StringVar(&o.TargetDir, "t", "", "shorthand for --target-directory")
	prog.flags.BoolVar(&o.NoTargetDir, "no-target-directory", false, "treat destination as a file, not a directory")
	prog.flags.BoolVar(&o.NoTargetDir, "T", false, "shorthand for --no-target-directory")
	prog.flags.BoolVar(&o.Recursive, "recursive", false, "recurse into source directories")
	prog.flags.BoolVar(&o.Recursive, "r", false, "shorthand for --recursive")
	prog.flags.BoolVar(&o.Recursive, "R", false, "shorthand for --recursive")
	prog.flags.BoolVar(&o.Archive, "archive", false, "equivalent to -dR --preserve=all")
	prog.flags.BoolVar(&o.Archive, "a", false, "shorthand for --archive")
	prog.flags.BoolVar(&o.NoDereferenceLinks, "d", false, "equivalent to --no-dereference --preserve=links")
	prog.flags.BoolVar(&o.PosixPreserve, "p", false, "equivalent to --preserve=mode,ownership,timestamps")
	prog.flags.Var(stringListFlag{&o.Preserve}, "preserve", "comma-separated attributes to preserve: mode,ownership,timestamps,context,links,xattr,all")
	prog.flags.Var(stringListFlag{&o.NoPreserve}, "no-preserve", "comma-separated attributes to stop preserving, applied after --preserve")
	prog.flags.BoolVar(&o.Link, "link", false, "hard-link instead of copying")
	prog.flags.BoolVar(&o.Link, "l", false, "shorthand for --link")
	prog.flags.BoolVar(&o.SymbolicLink, "symbolic-link", false, "symlink instead of copying")
	prog.flags.BoolVar(&o.SymbolicLink, "s", false, "shorthand for --symbolic-link")
	prog.flags.BoolVar(&o.AttributesOnly, "attributes-only", false, "create destination, copy only attributes")
	prog.flags.BoolVar(&o.Force, "force", false, "if destination cannot be opened, remove and retry")
	prog.flags.BoolVar(&o.Force, "f", false, "shorthand for --force")
	prog.flags.BoolVar(&o.RemoveDestination, "remove-destination", false, "always remove destination before writing")
	prog.flags.BoolVar(&o.Interactive, "interactive", false, "ask before overwrite")
	prog.flags.BoolVar(&o.Interactive, "i", false, "shorthand for --interactive")
	prog.flags.BoolVar(&o.NoClobber, "no-clobber", false, "silently skip existing destinations")
	prog.flags.BoolVar(&o.NoClobber, "n", false, "shorthand for --no-clobber")
	prog.flags.BoolVar(&o.Update, "update", false, "copy only if source is newer or destination missing")
	prog.flags.BoolVar(&o.Update, "u", false, "shorthand for --update")
	prog.flags.BoolVar(&o.DereferenceAll, "L", false, "dereference all symlinks")
	prog.flags.BoolVar(&o.DereferenceNone, "P", false, "dereference no symlinks")
	prog.flags.BoolVar(&o.DereferenceCmdline, "H", false, "dereference only symlinks named on the command line")
	prog.flags.BoolVar(&o.Parents, "parents", false, "recreate full source path under destination")
	prog.flags.StringVar(&o.Reflink, "reflink", "", "auto (default), always, or never")
	prog.flags.StringVar(&o.Sparse, "sparse", "", "auto (default), always, or never")
	prog.flags.StringVar(&o.Backup, "backup", "", "none, simple, numbered, or existing; a value is required")
	prog.flags.StringVar(&o.Suffix, "suffix", "~", "backup suffix")
	prog.flags.BoolVar(&o.OneFileSystem, "one-file-system", false, "do not cross mount points")
	prog.flags.BoolVar(&o.OneFileSystem, "x", false, "shorthand for --one-file-system")
	prog.flags.BoolVar(&o.Verbose, "verbose", false, "print src -> dst per file")
	prog.flags.BoolVar(&o.Verbose, "v", false, "shorthand for --verbose")
	prog.flags.BoolVar(&o.StripSlashes, "strip-trailing-slashes", false, "strip trailing '/' from source operands")
	prog.flags.BoolVar(&o.Progress, "progress", false, "display a progress bar")
	prog.flags.BoolVar(&o.Progress, "g", false, "shorthand for --progress")

	prog.flags.StringVar(&yamlFile, "config", "", "path to a yaml configuration file")
	prog.flags.StringVar(&o.LogLevel, "log-level", "info", "debug, info, warn, error")
	prog.flags.BoolVar(&o.JSON, "json", false, "emit logs as JSON")

	if err := prog.flags.Parse(cliArgs[1:]); err != nil {
		return fmt.Errorf("failed parsing flags: %w", err)
	}

	o.operands = prog.flags.Args()

	setFlags := make(map[string]bool)
	prog.flags.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	if yamlFile != "" {
		f, err := prog.fsys.Open(yamlFile)
		if err != nil {
			return fmt.Errorf("%w: %w", errArgConfigMissing, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)

		if err := dec.Decode(&yamlOpts); err != nil {
			return fmt.Errorf("%w: %w", errArgConfigMalformed, err)
		}
	}

	mergeString(&o.TargetDir, yamlOpts.TargetDir, setFlags, "target-directory", "t")
	mergeBool(&o.NoTargetDir, yamlOpts.NoTargetDir, setFlags, "no-target-directory", "T")
	mergeBool(&o.Recursive, yamlOpts.Recursive, setFlags, "recursive", "r", "R")
	mergeBool(&o.Archive, yamlOpts.Archive, setFlags, "archive", "a")
	mergeBool(&o.Link, yamlOpts.Link, setFlags, "link", "l")
	mergeBool(&o.SymbolicLink, yamlOpts.SymbolicLink, setFlags, "symbolic-link", "s")
	mergeBool(&o.AttributesOnly, yamlOpts.AttributesOnly, setFlags, "attributes-only")
	mergeBool(&o.Force, yamlOpts.Force, setFlags, "force", "f")
	mergeBool(&o.RemoveDestination, yamlOpts.RemoveDestination, setFlags, "remove-destination")
	mergeBool(&o.Interactive, yamlOpts.Interactive, setFlags, "interactive", "i")
	mergeBool(&o.NoClobber, yamlOpts.NoClobber, setFlags, "no-clobber", "n")
	mergeBool(&o.Update, yamlOpts.Update, setFlags, "update", "u")
	mergeBool(&o.Parents, yamlOpts.Parents, setFlags, "parents")
	mergeBool(&o.OneFileSystem, yamlOpts.OneFileSystem, setFlags, "one-file-system", "x")
	mergeBool(&o.Verbose, yamlOpts.Verbose, setFlags, "verbose", "v")
	mergeBool(&o.StripSlashes, yamlOpts.StripSlashes, setFlags, "strip-trailing-slashes")
	mergeBool(&o.Progress, yamlOpts.Progress, setFlags, "progress", "g")
	mergeBool(&o.JSON, yamlOpts.JSON, setFlags, "json")

	mergeString(&o.Reflink, yamlOpts.Reflink, setFlags, "reflink")
	mergeString(&o.Sparse, yamlOpts.Sparse, setFlags, "sparse")
	mergeString(&o.Backup, yamlOpts.Backup, setFlags, "backup")
	mergeString(&o.Suffix, yamlOpts.Suffix, setFlags, "suffix")
	mergeString(&o.LogLevel, yamlOpts.LogLevel, setFlags, "log-level")

	if !setFlags["preserve"] {
		o.Preserve = append(o.Preserve, yamlOpts.Preserve...)
	}
	if !setFlags["no-preserve"] {
		o.NoPreserve = append(o.NoPreserve, yamlOpts.NoPreserve...)
	}

	return nil
}

// mergeBool copies yamlValue onto *dst unless any of flagNames was set
// explicitly on the command line.
func mergeBool(dst *bool, yamlValue bool, setFlags map[string]bool, flagNames ...string) {
	for _, name := range flagNames {
		if setFlags[name] {
			return
		}
	}

	*dst = yamlValue
}

func mergeString(dst *string, yamlValue string, setFlags map[string]bool, flagNames ...string) {
	if yamlValue == "" {
		return
	}

	for _, name := range flagNames {
		if setFlags[name] {
			return
		}
	}

	*dst = yamlValue
}

func parseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return defaultLogLevel, errArgInvalidLogLevel
	}
}

func (prog *program) logHandler() slog.Handler {
	level, _ := parseLogLevel(prog.rawOpts.LogLevel)

	if prog.rawOpts.JSON {
		return slog.NewJSONHandler(prog.stderr, &slog.HandlerOptions{Level: level})
	}

	return tint.NewHandler(prog.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})
}
