// Package alloc hands out file space for new HDF5 objects. Space is only
// ever appended at the end of the file; nothing is freed or reused.
package alloc

// Alignment applied to every block so object headers and raw data start on
// 8-byte boundaries.
const Alignment = 8

// Block is one allocation.
type Block struct {
	Addr uint64
	Size uint64
	Tag  string
}

// Allocator tracks the end-of-file address of a writable file.
type Allocator struct {
	start  uint64
	eof    uint64
	blocks []Block
}

// New returns an allocator whose first block starts at eof, rounded up to
// the alignment.
func New(eof uint64) *Allocator {
	return &Allocator{start: eof, eof: eof}
}

// Alloc reserves size bytes and returns their address. tag names the block
// for logging.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	addr := align(a.eof)
	a.eof = addr + size
	a.blocks = append(a.blocks, Block{Addr: addr, Size: size, Tag: tag})
	return addr
}

func align(addr uint64) uint64 {
	return (addr + Alignment - 1) &^ (Alignment - 1)
}

// EOF returns the current end-of-file address.
func (a *Allocator) EOF() uint64 { return a.eof }

// Grew reports whether anything was allocated since New.
func (a *Allocator) Grew() bool { return a.eof != a.start }

// Allocated returns the bytes handed out since New, including alignment
// padding.
func (a *Allocator) Allocated() uint64 { return a.eof - a.start }

// Blocks returns the allocations in order.
func (a *Allocator) Blocks() []Block { return a.blocks }
