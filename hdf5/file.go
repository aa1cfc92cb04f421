package hdf5

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/tgolubev/cgio/internal/alloc"
	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/object"
	"github.com/tgolubev/cgio/internal/superblock"
)

// File is an open HDF5 file. A File is not safe for concurrent use.
type File struct {
	path       string
	file       *os.File
	data       *baseFile // addresses are relative to the base address
	reader     *binary.Reader
	superblock *superblock.Superblock
	root       *Group
	closed     bool

	writable  bool
	writer    *binary.Writer
	allocator *alloc.Allocator
	sbDirty   bool
}

// baseFile shifts every access by the superblock base address.
type baseFile struct {
	f    *os.File
	base int64
}

func (b *baseFile) ReadAt(p []byte, off int64) (int, error)  { return b.f.ReadAt(p, off+b.base) }
func (b *baseFile) WriteAt(p []byte, off int64) (int, error) { return b.f.WriteAt(p, off+b.base) }

// Open opens an HDF5 file for reading.
func Open(name string) (*File, error) {
	osFile, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := open(name, osFile, false)
	if err != nil {
		osFile.Close()
		return nil, err
	}
	return f, nil
}

// OpenReadWrite opens an existing HDF5 file so its datasets can be
// overwritten and new objects added. New space is appended at the end of
// the file; Close records the new end of file in the superblock.
func OpenReadWrite(name string) (*File, error) {
	osFile, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := open(name, osFile, true)
	if err != nil {
		osFile.Close()
		return nil, err
	}
	return f, nil
}

func open(name string, osFile *os.File, writable bool) (*File, error) {
	sb, err := superblock.Read(osFile)
	if err != nil {
		if errors.Is(err, superblock.ErrNotHDF5) {
			return nil, fmt.Errorf("%w: %s", ErrNotHDF5, name)
		}
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	cfg := sb.Config()
	data := &baseFile{f: osFile, base: int64(sb.BaseAddress)}

	f := &File{
		path:       name,
		file:       osFile,
		data:       data,
		reader:     binary.NewReader(data, cfg),
		superblock: sb,
		writable:   writable,
	}
	if writable {
		f.writer = binary.NewWriter(data, cfg)
		eof := sb.EOFAddress
		if info, err := osFile.Stat(); err == nil && uint64(info.Size())-sb.BaseAddress > eof {
			eof = uint64(info.Size()) - sb.BaseAddress
		}
		f.allocator = alloc.New(eof)
	}

	root, err := f.openGroupAt(sb.RootGroupAddress, "/", nil)
	if err != nil {
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	f.root = root
	return f, nil
}

// Create creates a new file holding an empty root group, truncating any
// existing file. It writes a version 3 superblock and version 2 object
// headers.
func Create(name string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	osFile, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	sb := superblock.New()
	sb.OffsetSize = uint8(options.offsetSize)
	sb.LengthSize = uint8(options.lengthSize)
	cfg := sb.Config()
	sb.ExtensionAddress = cfg.Undefined()

	data := &baseFile{f: osFile}
	w := binary.NewWriter(data, cfg)

	rootAddr := uint64(sb.Size())
	messages := object.NewGroupHeader(nil)
	if _, err := object.WriteHeader(w.At(int64(rootAddr)), messages, object.MinGroupChunkSize); err != nil {
		osFile.Close()
		os.Remove(name)
		return nil, fmt.Errorf("writing root group: %w", err)
	}
	sb.RootGroupAddress = rootAddr
	sb.EOFAddress = rootAddr + uint64(object.HeaderSize(cfg, messages, object.MinGroupChunkSize))
	if err := sb.Write(w.At(0)); err != nil {
		osFile.Close()
		os.Remove(name)
		return nil, fmt.Errorf("writing superblock: %w", err)
	}

	f := &File{
		path:       name,
		file:       osFile,
		data:       data,
		reader:     binary.NewReader(data, cfg),
		superblock: sb,
		writable:   true,
		writer:     w,
		allocator:  alloc.New(sb.EOFAddress),
	}
	root, err := f.openGroupAt(rootAddr, "/", nil)
	if err != nil {
		osFile.Close()
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	f.root = root
	return f, nil
}

// Flush records allocations and root group moves in the superblock and
// syncs the file.
func (f *File) Flush() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return nil
	}
	if f.allocator.Grew() || f.sbDirty {
		eof := f.allocator.EOF()
		if eof < f.superblock.EOFAddress {
			eof = f.superblock.EOFAddress
		}
		// superblock positions are absolute, not base-relative. Version 2/3
		// superblocks are rewritten whole, which also records a moved root.
		sw := binary.NewWriter(f.file, f.superblock.Config())
		if err := f.superblock.UpdateEOF(sw, eof); err != nil {
			return fmt.Errorf("updating superblock: %w", err)
		}
		f.sbDirty = false
	}
	return f.file.Sync()
}

// Close flushes a writable file and closes it. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	var flushErr error
	if f.writable {
		flushErr = f.Flush()
	}
	f.closed = true
	if err := f.file.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// Path returns the name the file was opened with.
func (f *File) Path() string { return f.path }

// Version returns the superblock version.
func (f *File) Version() int { return int(f.superblock.Version) }

// IsWritable reports whether the file was opened for writing.
func (f *File) IsWritable() bool { return f.writable }

// Appended returns the bytes allocated at the end of the file since it was
// opened.
func (f *File) Appended() uint64 {
	if f.allocator == nil {
		return 0
	}
	return f.allocator.Allocated()
}

// OpenGroup opens a group by absolute or root-relative path.
func (f *File) OpenGroup(p string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(p)
}

// OpenDataset opens a dataset by absolute or root-relative path.
func (f *File) OpenDataset(p string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(p)
}

func (f *File) openGroupAt(addr uint64, p string, parent *Group) (*Group, error) {
	h, err := object.Read(f.reader, addr)
	if err != nil {
		return nil, err
	}
	return &Group{file: f, path: p, header: h, addr: addr, parent: parent}, nil
}

// openObject opens whatever the header at addr describes.
func (f *File) openObject(addr uint64, p string, parent *Group) (any, error) {
	h, err := object.Read(f.reader, addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	switch {
	case h.IsDataset():
		return newDataset(f, p, h)
	case h.IsGroup():
		return &Group{file: f, path: p, header: h, addr: addr, parent: parent}, nil
	}
	return nil, fmt.Errorf("%w: %s is neither a group nor a dataset", ErrUnsupported, p)
}

func (f *File) allocate(size uint64, tag string) uint64 {
	return f.allocator.Alloc(size, tag)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func joinPath(dir, name string) string {
	return path.Join(dir, name)
}
