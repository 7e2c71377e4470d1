package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// SuperBlock is the decoded form of the on-disk superblock. It is read
// once at mount and immutable afterwards; the filesystem is read-only by
// construction, so nothing ever writes it back.
type SuperBlock struct {
	Checksum        uint32
	FeatureCompat   uint32
	FeatureIncompat uint32
	BlkSizeBits     uint8
	RootNid         uint16
	Inos            uint64
	BuildTime       uint64
	BuildTimeNsec   uint32
	Blocks          uint32 // primary device block count
	MetaBlkAddr     uint32
	XattrBlkAddr    uint32
	UUID            [16]byte
	VolumeName      string
	ComprAlgs       uint16
	ExtraDevices    uint16
	DevtSlotOff     uint16 // in DeviceSlotSize units from image start
}

// HasChecksum reports whether the superblock checksum feature is enabled.
func (sb *SuperBlock) HasChecksum() bool {
	return sb.FeatureCompat&FeatureCompatChecksum != 0
}

// HasDeviceTable reports whether the image declares a device-slot table.
// ExtraDevices is honored only when this is set.
func (sb *SuperBlock) HasDeviceTable() bool {
	return sb.FeatureIncompat&FeatureIncompatDeviceTable != 0
}

// DevtSlotPos returns the absolute byte offset of extra-device slot i.
func (sb *SuperBlock) DevtSlotPos(i int) int64 {
	return (int64(sb.DevtSlotOff) + int64(i)) * DeviceSlotSize
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// blockChecksum computes the superblock CRC over bytes
// [SuperOffset, BlockSize) of block 0 with the stored checksum field
// zeroed. The on-disk convention seeds the CRC register with all ones and
// skips the final inversion, so the Go checksum is complemented.
func blockChecksum(block []byte) uint32 {
	dup := make([]byte, BlockSize-SuperOffset)
	copy(dup, block[SuperOffset:BlockSize])
	binary.LittleEndian.PutUint32(dup[4:8], 0)
	return ^crc32.Checksum(dup, castagnoli)
}

// ParseSuperBlock decodes and validates the superblock found inside the
// raw first block of a backing store. block must hold at least BlockSize
// bytes. It performs no I/O and has no side effects beyond the returned
// structure.
//
// Checks run in a fixed order: magic, checksum (when the feature bit is
// set), block-size shift, incompatible-feature gate, field decode,
// volume-name termination. The first failure wins and is returned wrapped
// around one of this package's sentinel errors.
func ParseSuperBlock(block []byte) (*SuperBlock, error) {
	if len(block) < BlockSize {
		return nil, fmt.Errorf("%w: first block truncated to %d bytes", ErrCorrupted, len(block))
	}
	raw := block[SuperOffset : SuperOffset+SuperBlockSize]

	if magic := binary.LittleEndian.Uint32(raw[0:4]); magic != Magic {
		return nil, fmt.Errorf("%w (magic 0x%08x)", ErrBadMagic, magic)
	}

	sb := &SuperBlock{
		Checksum:      binary.LittleEndian.Uint32(raw[4:8]),
		FeatureCompat: binary.LittleEndian.Uint32(raw[8:12]),
	}
	if sb.HasChecksum() {
		if crc := blockChecksum(block); crc != sb.Checksum {
			return nil, fmt.Errorf("%w: invalid checksum 0x%08x, 0x%08x expected", ErrCorrupted, crc, sb.Checksum)
		}
	}

	sb.BlkSizeBits = raw[12]
	if sb.BlkSizeBits != BlockSizeBits {
		return nil, fmt.Errorf("%w: blkszbits %d, only %d is supported", ErrBlockSize, sb.BlkSizeBits, BlockSizeBits)
	}

	sb.FeatureIncompat = binary.LittleEndian.Uint32(raw[80:84])
	if unknown := sb.FeatureIncompat &^ FeatureIncompatAll; unknown != 0 {
		return nil, fmt.Errorf("%w: unidentified bits 0x%x", ErrUnsupported, unknown)
	}

	sb.RootNid = binary.LittleEndian.Uint16(raw[14:16])
	sb.Inos = binary.LittleEndian.Uint64(raw[16:24])
	sb.BuildTime = binary.LittleEndian.Uint64(raw[24:32])
	sb.BuildTimeNsec = binary.LittleEndian.Uint32(raw[32:36])
	sb.Blocks = binary.LittleEndian.Uint32(raw[36:40])
	sb.MetaBlkAddr = binary.LittleEndian.Uint32(raw[40:44])
	sb.XattrBlkAddr = binary.LittleEndian.Uint32(raw[44:48])
	copy(sb.UUID[:], raw[48:64])
	sb.ComprAlgs = binary.LittleEndian.Uint16(raw[84:86])
	sb.ExtraDevices = binary.LittleEndian.Uint16(raw[86:88])
	sb.DevtSlotOff = binary.LittleEndian.Uint16(raw[88:90])

	name := raw[64 : 64+VolumeNameLen]
	end := bytes.IndexByte(name, 0)
	if end < 0 {
		return nil, fmt.Errorf("%w: bad volume name without NUL terminator", ErrCorrupted)
	}
	sb.VolumeName = string(name[:end])

	return sb, nil
}

// EncodeSuperBlock writes sb into the superblock region of block, which
// must hold at least BlockSize bytes. The checksum field is written as
// stored in sb; call SealChecksum afterwards to compute it. This is image
// building support for tooling and tests, not write support: a mounted
// filesystem never encodes anything.
func EncodeSuperBlock(block []byte, sb *SuperBlock) {
	raw := block[SuperOffset : SuperOffset+SuperBlockSize]
	binary.LittleEndian.PutUint32(raw[0:4], Magic)
	binary.LittleEndian.PutUint32(raw[4:8], sb.Checksum)
	binary.LittleEndian.PutUint32(raw[8:12], sb.FeatureCompat)
	raw[12] = sb.BlkSizeBits
	binary.LittleEndian.PutUint16(raw[14:16], sb.RootNid)
	binary.LittleEndian.PutUint64(raw[16:24], sb.Inos)
	binary.LittleEndian.PutUint64(raw[24:32], sb.BuildTime)
	binary.LittleEndian.PutUint32(raw[32:36], sb.BuildTimeNsec)
	binary.LittleEndian.PutUint32(raw[36:40], sb.Blocks)
	binary.LittleEndian.PutUint32(raw[40:44], sb.MetaBlkAddr)
	binary.LittleEndian.PutUint32(raw[44:48], sb.XattrBlkAddr)
	copy(raw[48:64], sb.UUID[:])
	copy(raw[64:64+VolumeNameLen], make([]byte, VolumeNameLen))
	copy(raw[64:64+VolumeNameLen-1], sb.VolumeName)
	binary.LittleEndian.PutUint32(raw[80:84], sb.FeatureIncompat)
	binary.LittleEndian.PutUint16(raw[84:86], sb.ComprAlgs)
	binary.LittleEndian.PutUint16(raw[86:88], sb.ExtraDevices)
	binary.LittleEndian.PutUint16(raw[88:90], sb.DevtSlotOff)
}

// SealChecksum computes the superblock checksum over block and stores it
// in the checksum field. Call after all superblock fields are encoded.
func SealChecksum(block []byte) uint32 {
	crc := blockChecksum(block)
	binary.LittleEndian.PutUint32(block[SuperOffset+4:SuperOffset+8], crc)
	return crc
}
