package disk

import (
	"errors"
	"testing"
)

func TestDeviceSlotRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		slot DeviceSlot
	}{
		{
			name: "tagged blob slot",
			slot: DeviceSlot{Tag: "sha256-0a1b2c", Blocks: 512, MappedBlkAddr: 2048},
		},
		{
			name: "plain device slot",
			slot: DeviceSlot{Blocks: 64, MappedBlkAddr: 4096},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, DeviceSlotSize)
			EncodeDeviceSlot(raw, tt.slot)
			got, err := ParseDeviceSlot(raw)
			if err != nil {
				t.Fatalf("ParseDeviceSlot failed: %v", err)
			}
			if got != tt.slot {
				t.Errorf("got %+v, want %+v", got, tt.slot)
			}
		})
	}
}

func TestDeviceSlotRejections(t *testing.T) {
	if _, err := ParseDeviceSlot(make([]byte, 72)); !errors.Is(err, ErrCorrupted) {
		t.Errorf("short slot: error = %v, want ErrCorrupted", err)
	}

	raw := make([]byte, DeviceSlotSize)
	for i := 0; i < DeviceTagLen; i++ {
		raw[i] = 'a'
	}
	if _, err := ParseDeviceSlot(raw); !errors.Is(err, ErrCorrupted) {
		t.Errorf("unterminated tag: error = %v, want ErrCorrupted", err)
	}
}

func TestInodeCompactRoundTrip(t *testing.T) {
	ic := &InodeCompact{Mode: 0x41ED, Nlink: 2, Size: 4096, Ino: 1}
	raw := make([]byte, InodeCompactSize)
	EncodeInodeCompact(raw, ic)
	got, err := ParseInodeCompact(raw)
	if err != nil {
		t.Fatalf("ParseInodeCompact failed: %v", err)
	}
	if !got.IsDir() {
		t.Error("mode 0x41ED should decode as a directory")
	}
	if got.Nlink != 2 || got.Size != 4096 || got.Ino != 1 {
		t.Errorf("got %+v", got)
	}

	got.Mode = 0x81A4
	if got.IsDir() {
		t.Error("regular file mode reported as directory")
	}

	if _, err := ParseInodeCompact(raw[:16]); !errors.Is(err, ErrCorrupted) {
		t.Errorf("short inode: error = %v, want ErrCorrupted", err)
	}
}

func TestInodePos(t *testing.T) {
	if pos := InodePos(2, 36); pos != 2*BlockSize+36*InodeCompactSize {
		t.Errorf("InodePos(2, 36) = %d", pos)
	}
}
