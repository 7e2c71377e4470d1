// Package corofs serves a mounted corofs session over FUSE.
//
// The metadata core owns the superblock, the device table and the
// managed cache; this package is the thin node layer on top: it
// materializes the root directory object and answers the filesystem
// statistics query. The directory tree and file content below the root
// are provided by the namespace layer, which plugs in behind Lookup.
package corofs
