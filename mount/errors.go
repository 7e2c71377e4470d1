package mount

import "errors"

// Sentinel errors for package mount.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrUnknownOption is returned for an unrecognized or malformed
	// mount option token.
	ErrUnknownOption = errors.New("unrecognized mount option")

	// ErrNoSource means neither a block device nor an alternate
	// bootstrap/blob-directory source was configured. Rejected up front,
	// before anything is opened.
	ErrNoSource = errors.New("no backing device or bootstrap source configured")

	// ErrNotDirectory is returned when the root object or the blob
	// directory does not name a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrClosed is returned by operations on a torn-down session.
	ErrClosed = errors.New("session is closed")

	// ErrRemountChange means a remount tried to alter the device or
	// source configuration, which only flag options may change.
	ErrRemountChange = errors.New("cannot change backing configuration on remount")
)
