// Package layout maps a dataset's flat byte range onto its storage.
package layout

import (
	"errors"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

var (
	// ErrUnsupported is returned for chunked and virtual storage.
	ErrUnsupported = errors.New("unsupported storage layout")
	ErrOutOfRange  = errors.New("byte range outside dataset storage")
)

// Layout reads raw element bytes of a dataset.
type Layout interface {
	Class() message.LayoutClass
	// Size is the dataset's storage size in bytes.
	Size() uint64
	// Allocated reports whether storage exists on disk.
	Allocated() bool
	// ReadRange returns n bytes starting at byte offset off.
	ReadRange(off, n uint64) ([]byte, error)
}

// New returns the Layout for a layout message. size is the byte size the
// dataspace and datatype call for; fill is the fill value pattern, or nil
// for zeros.
func New(l *message.DataLayout, size uint64, fill []byte, r *binary.Reader) (Layout, error) {
	if l == nil {
		return nil, errors.New("nil layout message")
	}
	switch l.Class {
	case message.LayoutCompact:
		if uint64(len(l.CompactData)) < size {
			return nil, fmt.Errorf("compact storage holds %d bytes, need %d", len(l.CompactData), size)
		}
		return &Compact{data: l.CompactData[:size]}, nil
	case message.LayoutContiguous:
		c := &Contiguous{
			address: l.Address,
			size:    size,
			fill:    fill,
			r:       r,
		}
		if c.Allocated() && l.Size < size && l.Size != 0 {
			return nil, fmt.Errorf("contiguous storage holds %d bytes, need %d", l.Size, size)
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, l.Class)
}

func checkRange(off, n, size uint64) error {
	if off > size || n > size-off {
		return fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfRange, off, off+n, size)
	}
	return nil
}

// Compact storage lives inside the object header.
type Compact struct {
	data []byte
}

func (c *Compact) Class() message.LayoutClass { return message.LayoutCompact }
func (c *Compact) Size() uint64               { return uint64(len(c.data)) }
func (c *Compact) Allocated() bool            { return true }

func (c *Compact) ReadRange(off, n uint64) ([]byte, error) {
	if err := checkRange(off, n, c.Size()); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.data[off:off+n])
	return out, nil
}

// Contiguous storage is one block in the file. Until it is allocated it
// reads back as the fill value.
type Contiguous struct {
	address uint64
	size    uint64
	fill    []byte
	r       *binary.Reader
}

func (c *Contiguous) Class() message.LayoutClass { return message.LayoutContiguous }
func (c *Contiguous) Size() uint64               { return c.size }
func (c *Contiguous) Address() uint64            { return c.address }

func (c *Contiguous) Allocated() bool {
	return !c.r.Config().IsUndefined(c.address)
}

func (c *Contiguous) ReadRange(off, n uint64) ([]byte, error) {
	if err := checkRange(off, n, c.size); err != nil {
		return nil, err
	}
	if !c.Allocated() {
		return Fill(c.fill, off, n), nil
	}
	out := make([]byte, n)
	if err := c.r.ReadAt(out, int64(c.address+off)); err != nil {
		return nil, fmt.Errorf("reading contiguous data: %w", err)
	}
	return out, nil
}

// Fill returns n bytes of the repeating pattern, phased as if the pattern
// started at byte 0 and the result starts at byte off. A nil pattern gives
// zeros.
func Fill(pattern []byte, off, n uint64) []byte {
	out := make([]byte, n)
	if len(pattern) == 0 {
		return out
	}
	p := uint64(len(pattern))
	for i := range out {
		out[i] = pattern[(off+uint64(i))%p]
	}
	return out
}
