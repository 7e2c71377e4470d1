// Package main provides the corofs command-line interface.
//
// corofs is a FUSE-based read-only filesystem for compressed block images.
// An image describes itself: a checksummed superblock carries the global
// parameters, and a device-slot table unifies the primary device plus any
// number of extra devices or content-addressed blob files into a single
// block address space.
//
// The main binary supports multiple subcommands:
//   - mount: Mount a corofs image at a specified mountpoint
//   - inspect: Decode and validate an image's superblock and device table
//   - stat: Report filesystem statistics for an image
package main
