package device

import "errors"

// Sentinel errors for package device.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrCountMismatch means the number of option-declared extra devices
	// disagrees with the image's own device table.
	ErrCountMismatch = errors.New("extra devices don't match")

	// ErrExhausted means the device identifier space is full.
	ErrExhausted = errors.New("device identifier space exhausted")

	// ErrOutOfRange is returned by Resolve for a block number at or past
	// the total block count.
	ErrOutOfRange = errors.New("block number out of range")

	// ErrUnmapped means a block inside the total range is covered by no
	// device, which can only happen with a bogus slot table.
	ErrUnmapped = errors.New("block not mapped by any device")

	// ErrUnknownDevice is returned for an identifier that names no live
	// table entry.
	ErrUnknownDevice = errors.New("unknown device identifier")

	// ErrNotBlockDevice is returned when an extra device path does not
	// name a block device node.
	ErrNotBlockDevice = errors.New("not a block device")
)
