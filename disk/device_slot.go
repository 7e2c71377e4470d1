package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DeviceSlot is one record of the on-disk device-slot table. Each extra
// backing device gets one slot describing the block range it is mapped
// into and, optionally, an identifier used to locate its blob file.
type DeviceSlot struct {
	Tag           string // blob identifier, may be empty
	Blocks        uint32
	MappedBlkAddr uint32
}

// ParseDeviceSlot decodes a single device-slot record. raw must hold at
// least DeviceSlotSize bytes. The tag must terminate within its field
// when present; a full 64-byte tag with no NUL is corruption, the same
// policy as the volume name.
func ParseDeviceSlot(raw []byte) (DeviceSlot, error) {
	var ds DeviceSlot
	if len(raw) < DeviceSlotSize {
		return ds, fmt.Errorf("%w: device slot truncated to %d bytes", ErrCorrupted, len(raw))
	}
	tag := raw[0:DeviceTagLen]
	end := bytes.IndexByte(tag, 0)
	if end < 0 {
		return ds, fmt.Errorf("%w: device tag without NUL terminator", ErrCorrupted)
	}
	ds.Tag = string(tag[:end])
	ds.Blocks = binary.LittleEndian.Uint32(raw[64:68])
	ds.MappedBlkAddr = binary.LittleEndian.Uint32(raw[68:72])
	return ds, nil
}

// EncodeDeviceSlot writes ds into raw, which must hold at least
// DeviceSlotSize bytes. Image building support for tooling and tests.
func EncodeDeviceSlot(raw []byte, ds DeviceSlot) {
	copy(raw[0:DeviceTagLen], make([]byte, DeviceTagLen))
	copy(raw[0:DeviceTagLen-1], ds.Tag)
	binary.LittleEndian.PutUint32(raw[64:68], ds.Blocks)
	binary.LittleEndian.PutUint32(raw[68:72], ds.MappedBlkAddr)
}
