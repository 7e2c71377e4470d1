package corofs

import (
	"context"
	"os"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/corofs/corofs-fuse/mount"
)

// FS implements the corofs FUSE filesystem over one mounted session.
type FS struct {
	Session *mount.Session
}

// NewFS wraps a ready session in a servable filesystem.
func NewFS(s *mount.Session) *FS {
	return &FS{Session: s}
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// Statfs answers the statistics query: total blocks across all devices,
// fixed block size, zero free space (the filesystem is read-only).
func (f *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	st := f.Session.Stats()
	resp.Blocks = st.Blocks
	resp.Bfree = st.BFree
	resp.Bavail = st.BAvail
	resp.Files = st.Files
	resp.Ffree = st.FFree
	resp.Bsize = st.BlockSize
	resp.Namelen = st.NameLen
	resp.Frsize = st.BlockSize
	return nil
}

// Dir is the root directory node, backed by the root nid's inode.
type Dir struct {
	fs *FS
}

// Attr returns the root directory attributes from the on-disk inode and
// the image build time.
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	sb := d.fs.Session.Super()
	root := d.fs.Session.Root()

	a.Inode = uint64(sb.RootNid)
	a.Mode = os.ModeDir | 0o555
	a.Nlink = uint32(root.Nlink)
	built := time.Unix(int64(sb.BuildTime), int64(sb.BuildTimeNsec))
	a.Mtime = built
	a.Ctime = built
	a.Atime = built
	return nil
}

// Lookup resolves names under the root. Name resolution is owned by the
// namespace layer; without one attached, everything is absent.
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	return nil, syscall.ENOENT
}

// ReadDirAll lists the root directory.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	return nil, nil
}
