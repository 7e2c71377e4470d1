package mount

import (
	"fmt"
	"log"
	"math"
	"os"

	"golang.org/x/sys/unix"

	"github.com/corofs/corofs-fuse/codec"
	"github.com/corofs/corofs-fuse/device"
	"github.com/corofs/corofs-fuse/disk"
	"github.com/corofs/corofs-fuse/mcache"
)

// Session is the state of one mounted filesystem: the validated
// superblock, the device table, the backing metadata source and the
// managed cache. Superblock-derived fields are written exactly once
// during Mount and are read-only afterwards.
type Session struct {
	opts Options
	sb   *disk.SuperBlock
	root *disk.InodeCompact

	devs    *device.Table
	backing *os.File // primary metadata source: device node or bootstrap file
	cache   *mcache.Cache
	dec     codec.Decompressor
	fsid    uint64
	source  string
}

// Stats is the filesystem statistics query result.
type Stats struct {
	Type      uint32
	BlockSize uint32
	Blocks    uint64
	BFree     uint64
	BAvail    uint64
	Files     uint64
	FFree     uint64
	NameLen   uint32
	FSID      uint64
}

// Mount runs the full pipeline against devicePath with the given option
// string and reclaim capability (nil for none). On any failure the
// partially built session is torn down and only the error escapes.
//
// devicePath may be empty or "none" when the options carry a
// bootstrap_path; having neither is rejected before anything is opened.
func Mount(devicePath, optstr string, shr mcache.Shrinker) (*Session, error) {
	opts, err := ParseOptions(optstr)
	if err != nil {
		log.Printf("corofs: (%s): %v", devicePath, err)
		return nil, err
	}
	if devicePath == "none" {
		devicePath = ""
	}
	if devicePath == "" && opts.BootstrapPath == "" {
		log.Printf("corofs: %v", ErrNoSource)
		return nil, ErrNoSource
	}

	s := &Session{opts: opts, devs: device.NewTable(), source: devicePath}
	fail := func(err error) (*Session, error) {
		log.Printf("corofs: (%s): %v", s.name(), err)
		s.Close()
		return nil, err
	}

	for _, p := range opts.Devices {
		if _, err := s.devs.Declare(p); err != nil {
			return fail(err)
		}
	}

	src := devicePath
	if opts.FileBacked() {
		src = opts.BootstrapPath
		s.source = src
	}
	if opts.BlobDirPath != "" {
		fi, err := os.Stat(opts.BlobDirPath)
		if err != nil {
			return fail(err)
		}
		if !fi.IsDir() {
			return fail(fmt.Errorf("%w: blob_dir_path %s", ErrNotDirectory, opts.BlobDirPath))
		}
	}
	if s.backing, err = os.Open(src); err != nil {
		return fail(err)
	}
	if !opts.FileBacked() {
		s.fsid = backingID(devicePath)
	}

	block := make([]byte, disk.BlockSize)
	if _, err := s.backing.ReadAt(block, 0); err != nil {
		return fail(fmt.Errorf("cannot read superblock: %w", err))
	}
	if s.sb, err = disk.ParseSuperBlock(block); err != nil {
		return fail(err)
	}

	err = s.devs.PopulateFromSuperblock(s.sb, s.backing, device.PopulateConfig{
		FileBacked: opts.FileBacked(),
		BlobDir:    opts.BlobDirPath,
	})
	if err != nil {
		return fail(err)
	}

	if s.root, err = s.readRootInode(); err != nil {
		return fail(err)
	}

	if s.dec, err = codec.For(s.sb.ComprAlgs); err != nil {
		return fail(err)
	}
	s.cache = mcache.New()
	if shr != nil {
		s.cache.Register(shr)
	}

	log.Printf("corofs: (%s): mounted with opts: %q, root inode @ nid %d.",
		s.name(), optstr, s.sb.RootNid)
	return s, nil
}

func (s *Session) name() string {
	if s.source != "" {
		return s.source
	}
	return "none"
}

// readRootInode materializes the root object: the compact inode at the
// root nid must decode and must name a directory.
func (s *Session) readRootInode() (*disk.InodeCompact, error) {
	raw := make([]byte, disk.InodeCompactSize)
	pos := disk.InodePos(s.sb.MetaBlkAddr, s.sb.RootNid)
	if _, err := s.backing.ReadAt(raw, pos); err != nil {
		return nil, fmt.Errorf("cannot read root inode: %w", err)
	}
	ic, err := disk.ParseInodeCompact(raw)
	if err != nil {
		return nil, err
	}
	if !ic.IsDir() {
		return nil, fmt.Errorf("%w: root inode (nid %d, mode %o)",
			ErrNotDirectory, s.sb.RootNid, ic.Mode)
	}
	return ic, nil
}

// Super returns the validated superblock. Nil after Close.
func (s *Session) Super() *disk.SuperBlock {
	return s.sb
}

// Root returns the root directory's compact inode.
func (s *Session) Root() *disk.InodeCompact {
	return s.root
}

// Options returns the session's parsed mount configuration.
func (s *Session) Options() Options {
	return s.opts
}

// Decompressor returns the codec selected by the image's algorithm mask.
func (s *Session) Decompressor() codec.Decompressor {
	return s.dec
}

// Devices returns the session's device table.
func (s *Session) Devices() *device.Table {
	return s.devs
}

// Cache returns the session's managed cache.
func (s *Session) Cache() *mcache.Cache {
	return s.cache
}

// ReadBlock returns the content of global block blk, resolving it to its
// backing device and caching the result unless caching is disabled.
func (s *Session) ReadBlock(blk uint32) ([]byte, error) {
	if s.devs == nil {
		return nil, ErrClosed
	}
	d, local, err := s.devs.Resolve(blk)
	if err != nil {
		return nil, err
	}
	if s.opts.CacheStrategy == CacheDisabled {
		return s.readRaw(d, local)
	}
	p := s.cache.Get(blk)
	p.Lock()
	defer p.Unlock()
	if data := p.Data(); data != nil {
		return data, nil
	}
	data, err := s.readRaw(d, local)
	if err != nil {
		return nil, err
	}
	p.SetData(data)
	return data, nil
}

func (s *Session) readRaw(d *device.Device, local uint32) ([]byte, error) {
	buf := make([]byte, disk.BlockSize)
	off := int64(local) * disk.BlockSize
	var err error
	if d == nil {
		_, err = s.backing.ReadAt(buf, off)
	} else {
		_, err = d.ReadAt(buf, off)
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Stats answers the filesystem statistics query. Free blocks are fixed
// at zero: the filesystem is read-only. The identifier derives from the
// backing device number, or zero when backed by an alternate file source.
func (s *Session) Stats() Stats {
	return Stats{
		Type:      disk.Magic,
		BlockSize: disk.BlockSize,
		Blocks:    s.devs.TotalBlocks(),
		Files:     math.MaxUint64,
		FFree:     math.MaxUint64 - s.sb.Inos,
		NameLen:   disk.MaxNameLen,
		FSID:      s.fsid,
	}
}

// Remount re-parses the option string and applies the flag options.
// Devices and metadata sources are fixed for the life of the session;
// changing them is rejected and nothing is applied.
func (s *Session) Remount(optstr string) error {
	opts, err := ParseOptions(optstr)
	if err != nil {
		return err
	}
	if len(opts.Devices) != len(s.opts.Devices) ||
		opts.BootstrapPath != s.opts.BootstrapPath ||
		opts.BlobDirPath != s.opts.BlobDirPath {
		return ErrRemountChange
	}
	s.opts.UserXattr = opts.UserXattr
	s.opts.PosixACL = opts.PosixACL
	s.opts.CacheStrategy = opts.CacheStrategy
	return nil
}

// Close tears the session down: unregister reclaim, drop the cache,
// release every device handle, close the backing source. Safe to invoke
// on a partially mounted session and idempotent; a second Close is a
// no-op.
func (s *Session) Close() {
	if s.cache != nil {
		s.cache.Unregister()
		s.cache = nil
	}
	if s.devs != nil {
		s.devs.Close()
		s.devs = nil
	}
	if s.backing != nil {
		s.backing.Close()
		s.backing = nil
	}
	s.sb = nil
	s.root = nil
}

// backingID returns the device number of a block-device node, or zero
// for anything else.
func backingID(path string) uint64 {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0
	}
	return uint64(st.Rdev)
}
