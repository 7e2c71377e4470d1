// Package mcache is the managed cache for compressed data blocks: pages
// keyed by logical block address, created on demand, always clean (their
// content is re-derivable from disk, nothing is ever written back), and
// reclaimable whenever they are not pinned by in-flight decompression.
//
// Reclaim is cooperative. The cache does not reach into any global
// registry; instead it is registered with a Shrinker capability handed in
// at mount time, reports its reclaimable size through the Target
// interface, and accepts eviction requests from it. A page that is busy
// simply stays; correctness wins over timeliness.
package mcache
