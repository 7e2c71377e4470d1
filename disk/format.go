package disk

// On-disk layout constants. The format is fixed: one block size, one
// superblock location, one slot size. None of these are tunable at mount
// time.
const (
	// Magic identifies a corofs image. Stored little-endian at the start
	// of the superblock.
	Magic = 0xE0F5E1E2

	// BlockSizeBits is the only supported block-size shift.
	BlockSizeBits = 12
	// BlockSize is the fixed block size in bytes.
	BlockSize = 1 << BlockSizeBits

	// SuperOffset is the byte offset of the superblock inside block 0,
	// leaving room for boot sectors and other oddities below it.
	SuperOffset = 1024

	// SuperBlockSize is the size of the on-disk superblock record.
	SuperBlockSize = 128

	// DeviceSlotSize is the size of one device-slot record. The
	// superblock's slot-table offset is expressed in units of this size.
	DeviceSlotSize = 128

	// DeviceTagLen is the length of a device slot's identifier field,
	// used as a blob filename when resolving through a blob directory.
	DeviceTagLen = 64

	// VolumeNameLen is the fixed length of the superblock volume-name
	// field, NUL terminator included.
	VolumeNameLen = 16

	// InodeCompactSize is the size of a compact inode record; nid N
	// lives at byte offset meta_blkaddr*BlockSize + N*InodeCompactSize.
	InodeCompactSize = 32

	// MaxNameLen is the longest supported directory entry name.
	MaxNameLen = 255
)

// Compatible feature bits. These never gate a mount.
const (
	FeatureCompatChecksum = 0x00000001 // superblock checksum present
	FeatureCompatMTime    = 0x00000002 // inodes carry modification times
)

// Incompatible feature bits. A superblock declaring any bit outside
// FeatureIncompatAll must be rejected, not warned about.
const (
	FeatureIncompatZeroPadding = 0x00000001
	FeatureIncompatComprCfgs   = 0x00000002
	FeatureIncompatChunkedFile = 0x00000004
	FeatureIncompatDeviceTable = 0x00000008

	FeatureIncompatAll = FeatureIncompatZeroPadding |
		FeatureIncompatComprCfgs |
		FeatureIncompatChunkedFile |
		FeatureIncompatDeviceTable
)

// Compression algorithm bits in the superblock's algorithm bitmask.
const (
	AlgLZ4     = 1 << 0
	AlgLZMA    = 1 << 1
	AlgDeflate = 1 << 2
	AlgZstd    = 1 << 3
)

// BlockNr returns the block containing absolute byte offset pos.
func BlockNr(pos int64) uint32 {
	return uint32(pos >> BlockSizeBits)
}

// BlockOff returns the offset of pos within its block.
func BlockOff(pos int64) int {
	return int(pos & (BlockSize - 1))
}
