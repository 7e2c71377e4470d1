// Package cmd provides the command-line interface implementation for corofs.
//
// This package contains all the subcommand implementations for the corofs
// CLI tool. It uses the Cobra library for command structure and Fang for
// beautiful styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - mount: FUSE mounting of corofs images
//   - inspect: Superblock and device-table decoding and validation
//   - stat: Filesystem statistics reporting
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command. The root command coordinates all
// subcommands.
//
// The package leverages the mount package for the mount pipeline, the disk
// package for on-disk format decoding, and the corofs package for the FUSE
// node layer.
package cmd
