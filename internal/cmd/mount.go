package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/corofs/corofs-fuse/corofs"
	"github.com/corofs/corofs-fuse/mcache"
	"github.com/corofs/corofs-fuse/mount"
	"github.com/corofs/corofs-fuse/version"
)

// NewMountCmd creates and returns the mount subcommand for the corofs CLI.
// It runs the full mount pipeline against an image and serves it over FUSE.
func NewMountCmd() *cobra.Command {
	var options string

	cmd := &cobra.Command{
		Use:   "mount DEVICE MOUNTPOINT",
		Short: "Mount a corofs image",
		Long: `Mount a corofs image at the specified mountpoint.

DEVICE is the backing block device, or "none" when the options supply an
alternate bootstrap source. MOUNTPOINT is the directory where the
filesystem will be mounted.

Options are comma-separated key[=value] tokens, e.g.
  -o device=/dev/vdb,device=/dev/vdc
  -o bootstrap_path=/var/lib/corofs/boot.img,blob_dir_path=/var/lib/corofs/blobs`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMount(args[0], args[1], options)
		},
	}

	cmd.Flags().StringVarP(&options, "options", "o", "", "Comma-separated mount options")

	return cmd
}

func runMount(device, mountpoint, options string) {
	// Print version info on startup
	fmt.Printf("corofs %s starting...\n", version.GetFullVersion())

	session, err := mount.Mount(device, options, mcache.NewPressureGroup())
	if err != nil {
		log.Fatalf("Mount failed: %v", err)
	}

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("corofs"),
		fuse.Subtype("corofs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		session.Close()
		log.Fatal(err)
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")

		fuse.Unmount(mountpoint)
		c.Close()

		// Tear down the session after the kernel connection is gone
		session.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("corofs %s mounted at %s (device: %s)", version.GetVersion(), mountpoint, device)
	err = fs.Serve(c, corofs.NewFS(session))
	session.Close()
	if err != nil {
		log.Fatal(err)
	}
}
