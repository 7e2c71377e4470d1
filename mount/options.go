package mount

import (
	"fmt"
	"strings"
)

// CacheStrategy selects how aggressively the managed cache keeps
// compressed pages around.
type CacheStrategy int

const (
	CacheDisabled CacheStrategy = iota
	CacheReadahead
	CacheReadaround
)

func (cs CacheStrategy) String() string {
	switch cs {
	case CacheDisabled:
		return "disabled"
	case CacheReadahead:
		return "readahead"
	case CacheReadaround:
		return "readaround"
	}
	return fmt.Sprintf("CacheStrategy(%d)", int(cs))
}

// Options is the structured mount configuration.
type Options struct {
	// Devices lists extra backing devices in declaration order, one per
	// device= token.
	Devices []string
	// BootstrapPath names a plain file to use as the metadata source
	// instead of a block device.
	BootstrapPath string
	// BlobDirPath names a directory of content-addressed blob files
	// used to resolve device slots by their embedded identifier.
	BlobDirPath string

	CacheStrategy CacheStrategy
	UserXattr     bool
	PosixACL      bool
}

// DefaultOptions returns the mount defaults applied before parsing.
func DefaultOptions() Options {
	return Options{
		CacheStrategy: CacheReadaround,
		UserXattr:     true,
		PosixACL:      true,
	}
}

// FileBacked reports whether the session reads its metadata from an
// ordinary file rather than a block device.
func (o Options) FileBacked() bool {
	return o.BootstrapPath != ""
}

// String renders the options in canonical comma-separated form, the way
// they appear in the mount log line and in show-options output.
func (o Options) String() string {
	var parts []string
	if o.UserXattr {
		parts = append(parts, "user_xattr")
	} else {
		parts = append(parts, "nouser_xattr")
	}
	if o.PosixACL {
		parts = append(parts, "acl")
	} else {
		parts = append(parts, "noacl")
	}
	parts = append(parts, "cache_strategy="+o.CacheStrategy.String())
	for _, d := range o.Devices {
		parts = append(parts, "device="+d)
	}
	if o.BootstrapPath != "" {
		parts = append(parts, "bootstrap_path="+o.BootstrapPath)
	}
	if o.BlobDirPath != "" {
		parts = append(parts, "blob_dir_path="+o.BlobDirPath)
	}
	return strings.Join(parts, ",")
}

// ParseOptions converts a comma-separated option string into a structured
// configuration. Empty tokens are skipped; an unrecognized or malformed
// token fails the whole parse with an error naming it.
func ParseOptions(s string) (Options, error) {
	opts := DefaultOptions()
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			continue
		}
		key, val, hasVal := strings.Cut(tok, "=")
		switch key {
		case "user_xattr", "nouser_xattr", "acl", "noacl":
			if hasVal {
				return opts, fmt.Errorf("%w %q", ErrUnknownOption, tok)
			}
			switch key {
			case "user_xattr":
				opts.UserXattr = true
			case "nouser_xattr":
				opts.UserXattr = false
			case "acl":
				opts.PosixACL = true
			case "noacl":
				opts.PosixACL = false
			}
		case "cache_strategy":
			switch val {
			case "disabled":
				opts.CacheStrategy = CacheDisabled
			case "readahead":
				opts.CacheStrategy = CacheReadahead
			case "readaround":
				opts.CacheStrategy = CacheReadaround
			default:
				return opts, fmt.Errorf("%w: unrecognized cache strategy %q", ErrUnknownOption, val)
			}
		case "device":
			if !hasVal || val == "" {
				return opts, fmt.Errorf("%w %q or missing value", ErrUnknownOption, tok)
			}
			opts.Devices = append(opts.Devices, val)
		case "bootstrap_path":
			if !hasVal || val == "" {
				return opts, fmt.Errorf("%w %q or missing value", ErrUnknownOption, tok)
			}
			opts.BootstrapPath = val
		case "blob_dir_path":
			if !hasVal || val == "" {
				return opts, fmt.Errorf("%w %q or missing value", ErrUnknownOption, tok)
			}
			opts.BlobDirPath = val
		default:
			return opts, fmt.Errorf("%w %q or missing value", ErrUnknownOption, tok)
		}
	}
	return opts, nil
}
