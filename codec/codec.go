// Package codec is the boundary to the decompression algorithms, which
// live outside the metadata core. The core only needs to hand a
// compressed cluster to something that can expand it; which algorithms an
// image may use is declared in its superblock bitmask.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/corofs/corofs-fuse/disk"
)

// Decompressor expands one compressed cluster. Implementations must be
// safe for concurrent use; the read path calls them from many goroutines.
type Decompressor interface {
	// Decompress appends the expanded form of src to dst and returns
	// the resulting slice.
	Decompress(dst, src []byte) ([]byte, error)
	// Name identifies the algorithm in logs.
	Name() string
}

// Identity passes data through untouched, for uncompressed clusters.
type Identity struct{}

func (Identity) Decompress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (Identity) Name() string { return "plain" }

// Zstd decompresses zstd frames.
type Zstd struct {
	dec *zstd.Decoder
}

// NewZstd returns a shared, concurrency-safe zstd decompressor.
func NewZstd() (*Zstd, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Zstd{dec: dec}, nil
}

func (z *Zstd) Decompress(dst, src []byte) ([]byte, error) {
	return z.dec.DecodeAll(src, dst)
}

func (z *Zstd) Name() string { return "zstd" }

// For selects a decompressor for the superblock's algorithm bitmask. An
// image that declares no algorithms stores everything uncompressed.
func For(algs uint16) (Decompressor, error) {
	switch {
	case algs == 0:
		return Identity{}, nil
	case algs&disk.AlgZstd != 0:
		return NewZstd()
	default:
		return nil, fmt.Errorf("no decompressor for algorithm mask %#x", algs)
	}
}
