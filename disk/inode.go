package disk

import (
	"encoding/binary"
	"fmt"
)

// Unix mode format bits, as stored in the inode mode field.
const (
	modeFmtMask = 0xF000
	modeFmtDir  = 0x4000
)

// InodeCompact is the 32-byte inode record. The mount pipeline decodes
// exactly one of these: the root nid, to verify it names a directory
// before the filesystem goes live. Everything past that check belongs to
// the namespace layer.
type InodeCompact struct {
	Format     uint16
	XattrCount uint16
	Mode       uint16
	Nlink      uint16
	Size       uint32
	Union      uint32
	Ino        uint32
	UID        uint16
	GID        uint16
}

// IsDir reports whether the inode's mode names a directory.
func (ic *InodeCompact) IsDir() bool {
	return ic.Mode&modeFmtMask == modeFmtDir
}

// InodePos returns the absolute byte offset of nid given the metadata
// region's starting block.
func InodePos(metaBlkAddr uint32, nid uint16) int64 {
	return int64(metaBlkAddr)*BlockSize + int64(nid)*InodeCompactSize
}

// ParseInodeCompact decodes a compact inode record. raw must hold at
// least InodeCompactSize bytes.
func ParseInodeCompact(raw []byte) (*InodeCompact, error) {
	if len(raw) < InodeCompactSize {
		return nil, fmt.Errorf("%w: inode record truncated to %d bytes", ErrCorrupted, len(raw))
	}
	return &InodeCompact{
		Format:     binary.LittleEndian.Uint16(raw[0:2]),
		XattrCount: binary.LittleEndian.Uint16(raw[2:4]),
		Mode:       binary.LittleEndian.Uint16(raw[4:6]),
		Nlink:      binary.LittleEndian.Uint16(raw[6:8]),
		Size:       binary.LittleEndian.Uint32(raw[8:12]),
		Union:      binary.LittleEndian.Uint32(raw[16:20]),
		Ino:        binary.LittleEndian.Uint32(raw[20:24]),
		UID:        binary.LittleEndian.Uint16(raw[24:26]),
		GID:        binary.LittleEndian.Uint16(raw[26:28]),
	}, nil
}

// EncodeInodeCompact writes ic into raw, which must hold at least
// InodeCompactSize bytes. Image building support for tooling and tests.
func EncodeInodeCompact(raw []byte, ic *InodeCompact) {
	binary.LittleEndian.PutUint16(raw[0:2], ic.Format)
	binary.LittleEndian.PutUint16(raw[2:4], ic.XattrCount)
	binary.LittleEndian.PutUint16(raw[4:6], ic.Mode)
	binary.LittleEndian.PutUint16(raw[6:8], ic.Nlink)
	binary.LittleEndian.PutUint32(raw[8:12], ic.Size)
	binary.LittleEndian.PutUint32(raw[16:20], ic.Union)
	binary.LittleEndian.PutUint32(raw[20:24], ic.Ino)
	binary.LittleEndian.PutUint16(raw[24:26], ic.UID)
	binary.LittleEndian.PutUint16(raw[26:28], ic.GID)
}
