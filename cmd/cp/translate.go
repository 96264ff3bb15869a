package main

import (
	"fmt"
	"os"

	"github.com/desertwitch/gocp/internal/cpengine"
	"github.com/desertwitch/gocp/internal/platform"
)

// translate collapses the GNU-flavored flag surface (archive, -d, -p,
// dereference letters, cumulative preserve/no-preserve lists) into the
// engine's orthogonal cpengine.Options. fs is unused directly but kept in
// the signature so a future resolver-assisted default (e.g. inspecting the
// target's filesystem for reflink support) has a natural home.
func (o *rawOptions) translate(_ cpengine.FS) (cpengine.Options, error) {
	copyMode, err := o.copyMode()
	if err != nil {
		return cpengine.Options{}, err
	}

	overwrite, err := o.overwriteMode()
	if err != nil {
		return cpengine.Options{}, err
	}

	attrs, err := o.attributes()
	if err != nil {
		return cpengine.Options{}, err
	}

	reflink, err := parseReflinkMode(o.Reflink)
	if err != nil {
		return cpengine.Options{}, err
	}

	sparse, err := parseSparseMode(o.Sparse)
	if err != nil {
		return cpengine.Options{}, err
	}

	backupMode, err := parseBackupMode(o.Backup)
	if err != nil {
		return cpengine.Options{}, err
	}

	deref, err := o.dereferenceMode()
	if err != nil {
		return cpengine.Options{}, err
	}

	opts := cpengine.Options{
		CopyMode:       copyMode,
		Overwrite:      overwrite,
		Attrs:          attrs,
		Reflink:        reflink,
		Sparse:         sparse,
		Recursive:      o.Recursive || o.Archive,
		Dereference:    deref,
		OneFileSystem:  o.OneFileSystem,
		Parents:        o.Parents,
		StripSlashes:   o.StripSlashes,
		BackupMode:     backupMode,
		BackupSuffix:   o.Suffix,
		Verbose:        o.Verbose,
		AttributesOnly: o.AttributesOnly,
		NoTargetDir:    o.NoTargetDir,
		TargetDir:      o.TargetDir,
		Confirm:        promptConfirm,
		Umask:          os.FileMode(platform.ReadUmask()),
	}

	if backupMode != cpengine.BackupNone {
		opts.Backup = gnuBackupNamer{}
	}

	if o.Progress {
		opts.Progress = newProgressSink()
	}

	if err := opts.Validate(); err != nil {
		return cpengine.Options{}, err
	}

	if len(o.operands) == 0 {
		return cpengine.Options{}, errArgNoSources
	}

	return opts, nil
}

func (o *rawOptions) copyMode() (cpengine.CopyMode, error) {
	set := 0

	if o.Link {
		set++
	}
	if o.SymbolicLink {
		set++
	}
	if o.Update {
		set++
	}
	if o.AttributesOnly {
		set++
	}

	if set > 1 {
		return 0, fmt.Errorf("%w: -l, -s, -u and --attributes-only are mutually exclusive", cpengine.ErrInvalidOptions)
	}

	switch {
	case o.Link:
		return cpengine.CopyModeLink, nil
	case o.SymbolicLink:
		return cpengine.CopyModeSymLink, nil
	case o.Update:
		return cpengine.CopyModeUpdate, nil
	case o.AttributesOnly:
		return cpengine.CopyModeAttrOnly, nil
	default:
		return cpengine.CopyModeCopy, nil
	}
}

func (o *rawOptions) overwriteMode() (cpengine.OverwriteMode, error) {
	if o.NoClobber && o.Interactive {
		return cpengine.OverwriteMode{}, fmt.Errorf("%w: --no-clobber and --interactive are mutually exclusive", cpengine.ErrInvalidOptions)
	}

	sub := cpengine.ClobberStandard

	switch {
	case o.RemoveDestination:
		sub = cpengine.ClobberRemoveDestination
	case o.Force:
		sub = cpengine.ClobberForce
	}

	switch {
	case o.NoClobber:
		return cpengine.NewNoClobberOverwrite(), nil
	case o.Interactive:
		return cpengine.NewInteractiveOverwrite(sub), nil
	default:
		return cpengine.NewClobberOverwrite(sub), nil
	}
}

func (o *rawOptions) attributes() (cpengine.Attributes, error) {
	var attrs cpengine.Attributes

	if o.Archive {
		attrs = attrs.MergeAll()
	}

	if o.PosixPreserve {
		attrs.Mode = attrs.Mode.Max(cpengine.PreserveBestEffort)
		attrs.Ownership = attrs.Ownership.Max(cpengine.PreserveBestEffort)
		attrs.Timestamps = attrs.Timestamps.Max(cpengine.PreserveBestEffort)
	}

	if o.NoDereferenceLinks {
		attrs.Links = attrs.Links.Max(cpengine.PreserveBestEffort)
	}

	for _, name := range o.Preserve {
		if name == "all" {
			attrs = attrs.MergeAll()

			continue
		}

		field, err := attrField(&attrs, name)
		if err != nil {
			return attrs, err
		}

		*field = (*field).Max(cpengine.PreserveRequired)
	}

	for _, name := range o.NoPreserve {
		if name == "all" {
			attrs = cpengine.Attributes{}

			continue
		}

		field, err := attrField(&attrs, name)
		if err != nil {
			return attrs, err
		}

		*field = cpengine.PreserveNo
	}

	return attrs, nil
}

func attrField(attrs *cpengine.Attributes, name string) (*cpengine.Preserve, error) {
	switch name {
	case "mode":
		return &attrs.Mode, nil
	case "ownership":
		return &attrs.Ownership, nil
	case "timestamps":
		return &attrs.Timestamps, nil
	case "context":
		return &attrs.Context, nil
	case "links":
		return &attrs.Links, nil
	case "xattr":
		return &attrs.Xattr, nil
	default:
		return nil, fmt.Errorf("%w: %q", errArgBadPreserve, name)
	}
}

func (o *rawOptions) dereferenceMode() (cpengine.DereferenceMode, error) {
	set := 0

	if o.DereferenceAll {
		set++
	}
	if o.DereferenceNone {
		set++
	}
	if o.DereferenceCmdline {
		set++
	}

	if set > 1 {
		return 0, fmt.Errorf("%w: -L, -P and -H are mutually exclusive", cpengine.ErrInvalidOptions)
	}

	switch {
	case o.DereferenceAll:
		return cpengine.DereferenceAlways, nil
	case o.DereferenceNone:
		return cpengine.DereferenceNever, nil
	case o.DereferenceCmdline:
		return cpengine.DereferenceCommandLineOnly, nil
	case o.NoDereferenceLinks || o.Archive:
		return cpengine.DereferenceNever, nil
	case o.Recursive:
		return cpengine.DereferenceNever, nil
	default:
		return cpengine.DereferenceAlways, nil
	}
}

func parseReflinkMode(value string) (cpengine.ReflinkMode, error) {
	switch value {
	case "", "auto":
		return cpengine.ReflinkAuto, nil
	case "always":
		return cpengine.ReflinkAlways, nil
	case "never":
		return cpengine.ReflinkNever, nil
	default:
		return 0, fmt.Errorf("%w: --reflink=%q", errArgBadMode, value)
	}
}

func parseSparseMode(value string) (cpengine.SparseMode, error) {
	switch value {
	case "", "auto":
		return cpengine.SparseAuto, nil
	case "always":
		return cpengine.SparseAlways, nil
	case "never":
		return cpengine.SparseNever, nil
	default:
		return 0, fmt.Errorf("%w: --sparse=%q", errArgBadMode, value)
	}
}

func parseBackupMode(value string) (cpengine.BackupMode, error) {
	switch value {
	case "":
		return cpengine.BackupNone, nil
	case "none", "off":
		return cpengine.BackupNone, nil
	case "simple", "never":
		return cpengine.BackupSimple, nil
	case "numbered", "t":
		return cpengine.BackupNumbered, nil
	case "existing", "nil":
		return cpengine.BackupExisting, nil
	default:
		return 0, fmt.Errorf("%w: --backup=%q", errArgBadMode, value)
	}
}
