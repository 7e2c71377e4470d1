package device

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Device is one entry of the table: an extra backing store with its
// mapped block range. Exactly one of the two handles is open at a time —
// a block device held exclusively, or an ordinary blob file.
type Device struct {
	id   int
	Path string

	Blocks        uint32
	MappedBlkAddr uint32

	bdev *os.File
	blob *os.File
}

// ID returns the device's stable table identifier. Identifiers start at
// 1; 0 always means the primary device.
func (d *Device) ID() int {
	return d.id
}

// ReadAt reads from the device's backing handle at a local byte offset.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if d.bdev != nil {
		return d.bdev.ReadAt(p, off)
	}
	if d.blob != nil {
		return d.blob.ReadAt(p, off)
	}
	return 0, fmt.Errorf("device %d (%s): no open handle", d.id, d.Path)
}

func (d *Device) close() {
	if d.bdev != nil {
		d.bdev.Close()
		d.bdev = nil
	}
	if d.blob != nil {
		d.blob.Close()
		d.blob = nil
	}
}

// openBlob opens a backing store as an ordinary read-only file. Used for
// blob files and for every device of a file-backed session.
func openBlob(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|largeFileFlag, 0)
}

// openBlockDevice opens an extra device exclusively and read-only. The
// path must name a block device node; a session backed by plain files
// never takes this path.
func openBlockDevice(path string) (*os.File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotBlockDevice, path)
	}
	return os.OpenFile(path, os.O_RDONLY|unix.O_EXCL, 0)
}
