package mcache

import (
	"testing"
	"time"
)

func TestGetCreatesOnDemand(t *testing.T) {
	c := New()
	p := c.Get(7)
	if p == nil || p.Addr() != 7 {
		t.Fatalf("Get(7) = %+v", p)
	}
	if again := c.Get(7); again != p {
		t.Error("second Get returned a different page")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInvalidatePartialPanics(t *testing.T) {
	c := New()
	c.Get(1)
	defer func() {
		if recover() == nil {
			t.Error("partial invalidation did not panic")
		}
	}()
	c.Invalidate(1, 512, 1024)
}

// A full-page invalidation against a locked page must retry until the
// lock is released, and must not delay eviction of unrelated pages.
func TestInvalidateWaitsForBusyPage(t *testing.T) {
	c := New()
	busy := c.Get(1)
	busy.Lock()
	busy.SetData(make([]byte, PageSize))
	other := c.Get(2)
	other.Lock()
	other.SetData(make([]byte, PageSize))
	other.Unlock()

	// Unrelated page evicts immediately.
	c.Invalidate(2, 0, PageSize)
	if c.Len() != 1 {
		t.Fatalf("Len = %d after unrelated eviction, want 1", c.Len())
	}

	done := make(chan struct{})
	go func() {
		c.Invalidate(1, 0, PageSize)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("invalidation completed while the page was locked")
	case <-time.After(50 * time.Millisecond):
	}

	busy.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation never completed after unlock")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after both evictions, want 0", c.Len())
	}
}

func TestReclaimSkipsBusyPages(t *testing.T) {
	c := New()
	for addr := uint32(0); addr < 4; addr++ {
		p := c.Get(addr)
		p.Lock()
		p.SetData(make([]byte, PageSize))
		p.Unlock()
	}
	pinned := c.Get(0)
	pinned.Lock()
	defer pinned.Unlock()

	if got := c.ReclaimableBytes(); got != 3*PageSize {
		t.Errorf("ReclaimableBytes = %d, want %d", got, 3*PageSize)
	}
	if freed := c.Reclaim(10); freed != 3 {
		t.Errorf("Reclaim freed %d pages, want 3", freed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want the pinned page only", c.Len())
	}
}

func TestReclaimHonorsMax(t *testing.T) {
	c := New()
	for addr := uint32(0); addr < 8; addr++ {
		p := c.Get(addr)
		p.Lock()
		p.SetData(make([]byte, 16))
		p.Unlock()
	}
	if freed := c.Reclaim(3); freed != 3 {
		t.Errorf("Reclaim(3) freed %d", freed)
	}
	if c.Len() != 5 {
		t.Errorf("Len = %d, want 5", c.Len())
	}
}

// blockingCodec holds a decompression in flight until released.
type blockingCodec struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCodec) Decompress(dst, src []byte) ([]byte, error) {
	close(b.entered)
	<-b.release
	return append(dst, src...), nil
}

func (b *blockingCodec) Name() string { return "blocking" }

func TestDecompressPinsPage(t *testing.T) {
	c := New()
	p := c.Get(9)
	p.Lock()
	p.SetData([]byte("compressed"))
	p.Unlock()

	bc := &blockingCodec{entered: make(chan struct{}), release: make(chan struct{})}
	out := make(chan []byte, 1)
	go func() {
		data, err := p.Decompress(bc, nil)
		if err != nil {
			t.Errorf("Decompress failed: %v", err)
		}
		out <- data
	}()

	<-bc.entered
	if freed := c.Reclaim(10); freed != 0 {
		t.Errorf("Reclaim freed %d pages during in-flight decompression", freed)
	}
	close(bc.release)
	if data := <-out; string(data) != "compressed" {
		t.Errorf("Decompress output = %q", data)
	}
	if freed := c.Reclaim(10); freed != 1 {
		t.Errorf("Reclaim freed %d pages after decompression, want 1", freed)
	}
}

func TestPressureGroup(t *testing.T) {
	g := NewPressureGroup()
	a, b := New(), New()
	a.Register(g)
	b.Register(g)
	for addr := uint32(0); addr < 2; addr++ {
		for _, c := range []*Cache{a, b} {
			p := c.Get(addr)
			p.Lock()
			p.SetData(make([]byte, 8))
			p.Unlock()
		}
	}

	if got := g.ReclaimableBytes(); got != 4*8 {
		t.Errorf("ReclaimableBytes = %d, want 32", got)
	}
	if freed := g.Shrink(100); freed != 4 {
		t.Errorf("Shrink freed %d, want 4", freed)
	}

	a.Unregister()
	a.Unregister() // idempotent
	b.Unregister()
	if got := g.ReclaimableBytes(); got != 0 {
		t.Errorf("ReclaimableBytes after unregister = %d", got)
	}
}
