// Package disk implements the on-disk format of a corofs image.
//
// Everything here is pure parsing and encoding over byte buffers: the
// fixed-offset superblock inside block 0, the device-slot table that
// describes extra backing devices, and the compact inode record used to
// materialize the root object at mount time. All multi-byte fields are
// little-endian on disk regardless of host byte order, and every decoder
// reads them field by field rather than casting over raw memory.
//
// The package performs no I/O of its own; callers hand it blocks they have
// already read. Validation failures are reported through the sentinel
// errors in errors.go and can be classified with errors.Is.
package disk
