package mcache

import "sync"

// Target is what a reclaimable cache exposes to the memory-pressure
// subsystem: how much it could give back, and a way to ask for it.
type Target interface {
	ReclaimableBytes() uint64
	Reclaim(max int) int
}

// Shrinker is the reclaim capability handed to a cache at initialization.
// Registration returns the matching unregister function; both are safe
// for concurrent use.
type Shrinker interface {
	Register(t Target) (unregister func())
}

// PressureGroup is the default Shrinker: a plain registry of targets with
// a manual trigger. Hosts with a real memory-pressure signal drive
// Shrink from it; tests drive it directly.
type PressureGroup struct {
	mu      sync.Mutex
	nextID  int
	targets map[int]Target
}

// NewPressureGroup returns an empty reclaim registry.
func NewPressureGroup() *PressureGroup {
	return &PressureGroup{targets: make(map[int]Target)}
}

// Register implements Shrinker.
func (g *PressureGroup) Register(t Target) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.targets[id] = t
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.targets, id)
	}
}

// ReclaimableBytes sums the reclaimable size over all registered targets.
func (g *PressureGroup) ReclaimableBytes() uint64 {
	var total uint64
	for _, t := range g.snapshot() {
		total += t.ReclaimableBytes()
	}
	return total
}

// Shrink asks every registered target to release pages, up to max in
// total, and returns the number actually freed.
func (g *PressureGroup) Shrink(max int) int {
	freed := 0
	for _, t := range g.snapshot() {
		if freed >= max {
			break
		}
		freed += t.Reclaim(max - freed)
	}
	return freed
}

func (g *PressureGroup) snapshot() []Target {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Target, 0, len(g.targets))
	for _, t := range g.targets {
		out = append(out, t)
	}
	return out
}
