package codec

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/corofs/corofs-fuse/disk"
)

func TestIdentity(t *testing.T) {
	src := []byte("uncompressed cluster")
	out, err := Identity{}.Decompress(nil, src)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("got %q, want %q", out, src)
	}
}

func TestZstdRoundTrip(t *testing.T) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	plain := bytes.Repeat([]byte("corofs block data "), 512)
	compressed := enc.EncodeAll(plain, nil)
	enc.Close()

	z, err := NewZstd()
	if err != nil {
		t.Fatalf("NewZstd failed: %v", err)
	}
	out, err := z.Decompress(nil, compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Error("round trip mismatch")
	}
}

func TestFor(t *testing.T) {
	tests := []struct {
		name     string
		algs     uint16
		wantName string
		wantErr  bool
	}{
		{name: "no algorithms means plain", algs: 0, wantName: "plain"},
		{name: "zstd bit", algs: disk.AlgZstd, wantName: "zstd"},
		{name: "unknown algorithm", algs: disk.AlgLZMA, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := For(tt.algs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("For(%#x) failed: %v", tt.algs, err)
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name = %q, want %q", d.Name(), tt.wantName)
			}
		})
	}
}
