package disk

import "errors"

// Sentinel errors for package disk.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrBadMagic means the image does not carry a corofs superblock at
	// all. It is distinct from ErrCorrupted: the caller may want to try
	// another filesystem rather than report damage.
	ErrBadMagic = errors.New("cannot find valid corofs superblock")

	// ErrCorrupted covers metadata that identifies as corofs but fails
	// validation: checksum mismatch, missing volume-name terminator,
	// truncated records.
	ErrCorrupted = errors.New("corrupted filesystem metadata")

	// ErrUnsupported is returned for incompatible feature bits outside
	// the supported set. This is a hard compatibility gate.
	ErrUnsupported = errors.New("unsupported incompatible feature")

	// ErrBlockSize is returned when the on-disk block-size shift differs
	// from the single supported shift.
	ErrBlockSize = errors.New("unsupported block size")
)
