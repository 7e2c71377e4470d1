package mcache

import (
	"runtime"
	"sync"

	"github.com/corofs/corofs-fuse/codec"
	"github.com/corofs/corofs-fuse/disk"
)

// PageSize is the unit of caching and of invalidation. Partial-page
// operations are a contract violation, not a supported path.
const PageSize = disk.BlockSize

// Page is one cached compressed block range. Its lock doubles as the
// decompression pin: whoever holds it may attach in-flight state, and
// eviction only happens under it.
type Page struct {
	addr uint32

	mu      sync.Mutex
	data    []byte
	private bool // in-flight decompression state attached; guarded by mu
}

// Addr returns the logical block address the page is keyed by.
func (p *Page) Addr() uint32 {
	return p.addr
}

// Lock takes the page's exclusive lock.
func (p *Page) Lock() { p.mu.Lock() }

// Unlock releases the page's exclusive lock.
func (p *Page) Unlock() { p.mu.Unlock() }

// SetData stores the compressed content. Caller must hold the lock.
func (p *Page) SetData(data []byte) {
	p.data = data
}

// Data returns the compressed content. Caller must hold the lock.
func (p *Page) Data() []byte {
	return p.data
}

// Decompress pins the page for the duration of one codec call. The
// private marker makes the page unreclaimable until the call returns.
func (p *Page) Decompress(d codec.Decompressor, dst []byte) ([]byte, error) {
	p.mu.Lock()
	p.private = true
	defer func() {
		p.private = false
		p.mu.Unlock()
	}()
	return d.Decompress(dst, p.data)
}

// Cache is a managed page cache for one mount session.
type Cache struct {
	mu    sync.RWMutex
	pages map[uint32]*Page

	unregister func()
}

// New returns an empty managed cache.
func New() *Cache {
	return &Cache{pages: make(map[uint32]*Page)}
}

// Register attaches the cache to the given reclaim capability for the
// lifetime of the mount. Unregister releases the registration and is safe
// to call more than once.
func (c *Cache) Register(s Shrinker) {
	c.unregister = s.Register(c)
}

// Unregister detaches the cache from its reclaim capability.
func (c *Cache) Unregister() {
	if c.unregister != nil {
		c.unregister()
		c.unregister = nil
	}
}

// Get returns the page for addr, creating it on first use.
func (c *Cache) Get(addr uint32) *Page {
	c.mu.RLock()
	p := c.pages[addr]
	c.mu.RUnlock()
	if p != nil {
		return p
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p = c.pages[addr]; p != nil {
		return p
	}
	p = &Page{addr: addr}
	c.pages[addr] = p
	return p
}

// Len returns the number of resident pages.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// tryRelease drops p from the cache if it is reclaimable. The caller
// must hold p's lock; the release action itself only ever runs under it.
func (c *Cache) tryRelease(p *Page) bool {
	if p.private {
		return false
	}
	c.mu.Lock()
	if c.pages[p.addr] == p {
		delete(c.pages, p.addr)
	}
	c.mu.Unlock()
	p.data = nil
	return true
}

// Invalidate drops the page covering addr. Only whole-page requests are
// supported; the calling layer guarantees alignment, so a partial range
// is a programming error and panics. A busy page is retried
// cooperatively until it becomes releasable — it is never forcibly
// dropped, and no other page's eviction waits on it.
func (c *Cache) Invalidate(addr uint32, off, length int) {
	if off != 0 || length != PageSize {
		panic("mcache: partial page invalidation")
	}
	for {
		c.mu.RLock()
		p := c.pages[addr]
		c.mu.RUnlock()
		if p == nil {
			return
		}
		if p.mu.TryLock() {
			ok := c.tryRelease(p)
			p.mu.Unlock()
			if ok {
				return
			}
		}
		runtime.Gosched()
	}
}

// ReclaimableBytes implements Target: the total size of pages that could
// be released right now. It is a side-effect-free query.
func (c *Cache) ReclaimableBytes() uint64 {
	c.mu.RLock()
	snapshot := make([]*Page, 0, len(c.pages))
	for _, p := range c.pages {
		snapshot = append(snapshot, p)
	}
	c.mu.RUnlock()

	var total uint64
	for _, p := range snapshot {
		if p.mu.TryLock() {
			if !p.private {
				total += uint64(len(p.data))
			}
			p.mu.Unlock()
		}
	}
	return total
}

// Reclaim implements Target: release up to max clean, unreferenced pages
// and report how many went. Busy pages are skipped, never waited on.
func (c *Cache) Reclaim(max int) int {
	c.mu.RLock()
	snapshot := make([]*Page, 0, len(c.pages))
	for _, p := range c.pages {
		snapshot = append(snapshot, p)
	}
	c.mu.RUnlock()

	freed := 0
	for _, p := range snapshot {
		if freed >= max {
			break
		}
		if p.mu.TryLock() {
			if c.tryRelease(p) {
				freed++
			}
			p.mu.Unlock()
		}
	}
	return freed
}
