package device

import (
	"fmt"
	"math/bits"
	"sync"
)

// MaxDevices bounds the identifier space. Identifiers are 1-based so that
// 0 can keep meaning "the primary device" in resolved mappings.
const MaxDevices = 1 << 16

// Table is the device context of one mount session: an arena of Device
// entries plus the resolved geometry of the unified block address space.
//
// Lock discipline: Declare, Remove, PopulateFromSuperblock and Close take
// the writer side; Resolve and ResolveID take the reader side and are
// lock-free with respect to each other. Nothing upgrades mid-operation.
type Table struct {
	mu    sync.RWMutex
	arena []*Device // identifier-1 indexed; nil entries are free
	free  []int     // free-list of arena indexes for identifier reuse
	order []*Device // registration order, walked by Resolve

	primaryBlocks uint32
	totalBlocks   uint64
	idMask        uint32
}

// NewTable returns an empty device table.
func NewTable() *Table {
	return &Table{}
}

// Declare registers a backing store path as the next extra device and
// returns its identifier. The handle stays unopened until population;
// options are parsed before the superblock is even read.
func (t *Table) Declare(path string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, err := t.declareLocked(path)
	if err != nil {
		return 0, err
	}
	return d.id, nil
}

func (t *Table) declareLocked(path string) (*Device, error) {
	var idx int
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.arena) >= MaxDevices {
			return nil, fmt.Errorf("%w (%d entries)", ErrExhausted, MaxDevices)
		}
		t.arena = append(t.arena, nil)
		idx = len(t.arena) - 1
	}
	d := &Device{id: idx + 1, Path: path}
	t.arena[idx] = d
	t.order = append(t.order, d)
	return d, nil
}

// Remove releases one entry and recycles its identifier. It exists for
// rollback of a failed declare sequence; normal teardown goes through
// Close.
func (t *Table) Remove(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := id - 1
	if idx < 0 || idx >= len(t.arena) || t.arena[idx] == nil {
		return fmt.Errorf("%w: %d", ErrUnknownDevice, id)
	}
	d := t.arena[idx]
	d.close()
	t.arena[idx] = nil
	t.free = append(t.free, idx)
	for i, o := range t.order {
		if o == d {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Extras returns the number of registered extra devices.
func (t *Table) Extras() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// TotalBlocks returns the unified block count, primary plus all extras.
// Zero until the table has been populated from a superblock.
func (t *Table) TotalBlocks() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalBlocks
}

// IDMask returns the identifier mask sized to the next power of two at or
// above extras+1, used to strip ownership bits off packed block mappings.
func (t *Table) IDMask() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.idMask
}

// Resolve maps a global block number to its owning device and the local
// block number on it. A nil Device means the primary device, which
// implicitly covers [0, primaryBlocks); extras are walked in registration
// order. Resolve is total over [0, TotalBlocks()) and fails, never wraps,
// at or past the upper bound.
func (t *Table) Resolve(blk uint32) (*Device, uint32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if uint64(blk) >= t.totalBlocks {
		return nil, 0, fmt.Errorf("%w: block %d, total %d", ErrOutOfRange, blk, t.totalBlocks)
	}
	if blk < t.primaryBlocks {
		return nil, blk, nil
	}
	for _, d := range t.order {
		if blk >= d.MappedBlkAddr && blk-d.MappedBlkAddr < d.Blocks {
			return d, blk - d.MappedBlkAddr, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: block %d", ErrUnmapped, blk)
}

// ResolveID looks up a device by the identifier embedded in a packed
// block mapping, masked by IDMask. Identifier 0 is the primary device,
// reported as a nil Device.
func (t *Table) ResolveID(id uint32) (*Device, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id &= t.idMask
	if id == 0 {
		return nil, nil
	}
	idx := int(id) - 1
	if idx >= len(t.arena) || t.arena[idx] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDevice, id)
	}
	return t.arena[idx], nil
}

// Close releases every registered device handle and the table's own
// storage. It is idempotent and safe against a partially populated table:
// entries that never got a handle are simply freed.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, d := range t.arena {
		if d == nil {
			continue
		}
		d.close()
		t.arena[i] = nil
	}
	t.arena = nil
	t.free = nil
	t.order = nil
	t.totalBlocks = 0
	t.primaryBlocks = 0
}

func idMaskFor(extras int) uint32 {
	// next power of two >= extras+1, minus one
	return uint32(1<<bits.Len(uint(extras))) - 1
}
