package cmd

import (
	"github.com/corofs/corofs-fuse/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the corofs CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corofs",
		Short: "corofs - A FUSE-based read-only filesystem for compressed block images",
		Long: `corofs is a FUSE-based read-only filesystem for compressed block images.

A corofs image carries its own description: a checksummed superblock and a
device-slot table that unifies the primary device plus any number of extra
devices or content-addressed blob files into one block address space.

Use subcommands to perform different operations:
  - mount: Mount a corofs image at a specified mountpoint
  - inspect: Decode and validate an image's superblock and device table
  - stat: Report filesystem statistics for an image`,
		Version: version.GetFullVersion(),
	}

	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	inspectCmd := NewInspectCmd()
	statCmd := NewStatCmd()

	mountCmd.GroupID = groupFilesystem
	inspectCmd.GroupID = groupUtilities
	statCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(statCmd)

	return rootCmd
}
