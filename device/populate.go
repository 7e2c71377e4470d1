package device

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/corofs/corofs-fuse/disk"
)

// PopulateConfig selects how PopulateFromSuperblock opens backing stores.
type PopulateConfig struct {
	// FileBacked means the session's metadata comes from an ordinary
	// file rather than a block device; every device is then opened as a
	// plain read-only file, even ones that would nominally be block
	// devices.
	FileBacked bool

	// BlobDir, when non-empty, is a directory of content-addressed blob
	// files. Device slots are then resolved by opening the slot's tag as
	// a filename under this directory instead of requiring pre-declared
	// device paths.
	BlobDir string
}

// PopulateFromSuperblock reads the on-disk device-slot table from src and
// turns the declared entries into open, ranged devices. It owns the
// consistency check between the mount command's device list and the
// image's self-description: without a blob directory, the counts must
// agree exactly.
//
// Runs under the writer lock. On failure the table is left as-is with
// whatever handles were already opened; Close releases them, so callers
// unwind by closing the table.
func (t *Table) PopulateFromSuperblock(sb *disk.SuperBlock, src io.ReaderAt, cfg PopulateConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.primaryBlocks = sb.Blocks
	t.totalBlocks = uint64(sb.Blocks)
	t.idMask = 0

	ondisk := 0
	if sb.HasDeviceTable() {
		ondisk = int(sb.ExtraDevices)
	}
	if ondisk != len(t.order) && cfg.BlobDir == "" {
		return fmt.Errorf("%w (ondisk %d, given %d)", ErrCountMismatch, ondisk, len(t.order))
	}
	if ondisk == 0 {
		return nil
	}
	t.idMask = idMaskFor(ondisk)

	slot := 0
	// Attach geometry and handles to the devices declared via options,
	// one slot each, in registration order.
	for _, d := range t.order {
		ds, err := readSlot(sb, src, slot)
		if err != nil {
			return err
		}
		if cfg.FileBacked {
			d.blob, err = openBlob(d.Path)
		} else {
			d.bdev, err = openBlockDevice(d.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to open device %s: %w", d.Path, err)
		}
		d.Blocks = ds.Blocks
		d.MappedBlkAddr = ds.MappedBlkAddr
		t.totalBlocks += uint64(ds.Blocks)
		slot++
	}
	// Remaining slots are resolved through the blob directory by their
	// embedded identifier.
	for len(t.order) < ondisk {
		ds, err := readSlot(sb, src, slot)
		if err != nil {
			return err
		}
		if ds.Tag == "" {
			return fmt.Errorf("%w: slot %d has no blob identifier", disk.ErrCorrupted, slot)
		}
		d, err := t.declareLocked(filepath.Join(cfg.BlobDir, ds.Tag))
		if err != nil {
			return err
		}
		d.blob, err = openBlob(d.Path)
		if err != nil {
			return fmt.Errorf("failed to open blob file %s: %w", ds.Tag, err)
		}
		d.Blocks = ds.Blocks
		d.MappedBlkAddr = ds.MappedBlkAddr
		t.totalBlocks += uint64(ds.Blocks)
		slot++
	}
	return nil
}

func readSlot(sb *disk.SuperBlock, src io.ReaderAt, i int) (disk.DeviceSlot, error) {
	raw := make([]byte, disk.DeviceSlotSize)
	if _, err := src.ReadAt(raw, sb.DevtSlotPos(i)); err != nil {
		return disk.DeviceSlot{}, fmt.Errorf("cannot read device slot %d: %w", i, err)
	}
	return disk.ParseDeviceSlot(raw)
}
