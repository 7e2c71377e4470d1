package corofs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"bazil.org/fuse"

	"github.com/corofs/corofs-fuse/disk"
	"github.com/corofs/corofs-fuse/mount"
)

func testSession(t *testing.T) *mount.Session {
	t.Helper()
	img := make([]byte, 3*disk.BlockSize)
	sb := &disk.SuperBlock{
		FeatureCompat: disk.FeatureCompatChecksum,
		BlkSizeBits:   disk.BlockSizeBits,
		RootNid:       1,
		Inos:          3,
		BuildTime:     1700000000,
		BuildTimeNsec: 250,
		Blocks:        3,
		MetaBlkAddr:   2,
		VolumeName:    "fusetest",
	}
	disk.EncodeSuperBlock(img, sb)
	disk.SealChecksum(img)
	pos := disk.InodePos(sb.MetaBlkAddr, sb.RootNid)
	disk.EncodeInodeCompact(img[pos:pos+disk.InodeCompactSize], &disk.InodeCompact{
		Mode:  0x41ED,
		Nlink: 2,
		Ino:   1,
	})

	path := filepath.Join(t.TempDir(), "fuse.img")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	s, err := mount.Mount("", "bootstrap_path="+path, nil)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStatfs(t *testing.T) {
	f := NewFS(testSession(t))
	var resp fuse.StatfsResponse
	if err := f.Statfs(context.Background(), &fuse.StatfsRequest{}, &resp); err != nil {
		t.Fatalf("Statfs failed: %v", err)
	}
	if resp.Blocks != 3 || resp.Bfree != 0 || resp.Bavail != 0 {
		t.Errorf("blocks = %d free %d avail %d", resp.Blocks, resp.Bfree, resp.Bavail)
	}
	if resp.Bsize != disk.BlockSize {
		t.Errorf("Bsize = %d", resp.Bsize)
	}
	if resp.Namelen != disk.MaxNameLen {
		t.Errorf("Namelen = %d", resp.Namelen)
	}
	if resp.Ffree != ^uint64(0)-3 {
		t.Errorf("Ffree = %d", resp.Ffree)
	}
}

func TestRootAttr(t *testing.T) {
	f := NewFS(testSession(t))
	node, err := f.Root()
	if err != nil {
		t.Fatalf("Root failed: %v", err)
	}
	dir, ok := node.(*Dir)
	if !ok {
		t.Fatalf("root node is %T", node)
	}

	var a fuse.Attr
	if err := dir.Attr(context.Background(), &a); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if a.Inode != 1 {
		t.Errorf("Inode = %d, want root nid 1", a.Inode)
	}
	if !a.Mode.IsDir() || a.Mode.Perm() != 0o555 {
		t.Errorf("Mode = %v", a.Mode)
	}
	if a.Nlink != 2 {
		t.Errorf("Nlink = %d", a.Nlink)
	}
	want := time.Unix(1700000000, 250)
	if !a.Mtime.Equal(want) {
		t.Errorf("Mtime = %v, want build time %v", a.Mtime, want)
	}
}

func TestRootLookupEmpty(t *testing.T) {
	f := NewFS(testSession(t))
	dir := &Dir{fs: f}

	if _, err := dir.Lookup(context.Background(), "anything"); !errors.Is(err, syscall.ENOENT) {
		t.Errorf("Lookup error = %v, want ENOENT", err)
	}
	ents, err := dir.ReadDirAll(context.Background())
	if err != nil {
		t.Fatalf("ReadDirAll failed: %v", err)
	}
	if len(ents) != 0 {
		t.Errorf("ReadDirAll returned %d entries", len(ents))
	}
}
