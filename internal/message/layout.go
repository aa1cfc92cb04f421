package message

import (
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

// LayoutClass represents the storage layout class.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	case LayoutVirtual:
		return "virtual"
	}
	return fmt.Sprintf("layout(%d)", uint8(c))
}

// DataLayout represents a data layout message (type 0x0008).
type DataLayout struct {
	Version uint8
	Class   LayoutClass

	CompactData []byte

	// Contiguous storage. Address is undefined until storage is allocated.
	Address uint64
	Size    uint64

	// AddressField and SizeField are the byte offsets of the contiguous
	// address and size inside the message body, so the storage location can
	// be patched in place. SizeField is -1 when the version derives the size
	// from the dimensions instead of storing it.
	AddressField int
	SizeField    int

	// CompactField is the body offset of CompactData.
	CompactField int
}

func (m *DataLayout) Type() Type { return TypeDataLayout }

func parseDataLayout(data []byte, cfg binary.Config) (*DataLayout, error) {
	if len(data) < 2 {
		return nil, ErrTruncated
	}
	l := &DataLayout{Version: data[0], SizeField: -1}
	switch l.Version {
	case 1, 2:
		return parseLayoutV1(data, cfg, l)
	case 3, 4:
		return parseLayoutV3(data, cfg, l)
	}
	return nil, fmt.Errorf("unsupported data layout version %d", l.Version)
}

/*
Versions 1 and 2: version, ndims, class, reserved(5), [address], dims(ndims*4),
[compact size(4) + data]. The last dimension is the element size, so the
contiguous byte size is the product of all of them.
*/
func parseLayoutV1(data []byte, cfg binary.Config, l *DataLayout) (*DataLayout, error) {
	f := fields{data: data}
	f.skip(1)
	ndims := int(f.byte())
	l.Class = LayoutClass(f.byte())
	f.skip(5)
	if l.Class != LayoutCompact {
		l.AddressField = f.pos
		l.Address = f.uint(cfg.OffsetSize)
	}
	size := uint64(1)
	for i := 0; i < ndims; i++ {
		size *= f.uint(4)
	}
	switch l.Class {
	case LayoutContiguous:
		l.Size = size
	case LayoutCompact:
		n := int(f.uint(4))
		l.CompactField = f.pos
		l.CompactData = f.take(n)
	}
	return l, f.err
}

// Versions 3 and 4: version, class, then per class
//
//	compact:    size(2), data
//	contiguous: address(O), size(L)
//	chunked:    index details, not decoded here
func parseLayoutV3(data []byte, cfg binary.Config, l *DataLayout) (*DataLayout, error) {
	f := fields{data: data}
	f.skip(1)
	l.Class = LayoutClass(f.byte())
	switch l.Class {
	case LayoutCompact:
		n := int(f.uint(2))
		l.CompactField = f.pos
		l.CompactData = f.take(n)
	case LayoutContiguous:
		l.AddressField = f.pos
		l.Address = f.uint(cfg.OffsetSize)
		l.SizeField = f.pos
		l.Size = f.uint(cfg.LengthSize)
	}
	return l, f.err
}

// Serialize writes a version 3 layout message. Only compact and contiguous
// layouts can be written.
func (m *DataLayout) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(3); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(m.Class)); err != nil {
		return err
	}
	switch m.Class {
	case LayoutCompact:
		if err := w.WriteUint16(uint16(len(m.CompactData))); err != nil {
			return err
		}
		return w.WriteBytes(m.CompactData)
	case LayoutContiguous:
		if err := w.WriteOffset(m.Address); err != nil {
			return err
		}
		return w.WriteLength(m.Size)
	}
	return fmt.Errorf("cannot write %s layout", m.Class)
}

func (m *DataLayout) SerializedSize(cfg binary.Config) int {
	switch m.Class {
	case LayoutCompact:
		return 4 + len(m.CompactData)
	case LayoutContiguous:
		return 2 + cfg.OffsetSize + cfg.LengthSize
	}
	return 2
}

// NewContiguousLayout creates a version 3 contiguous layout.
func NewContiguousLayout(address, size uint64) *DataLayout {
	return &DataLayout{
		Version:      3,
		Class:        LayoutContiguous,
		Address:      address,
		Size:         size,
		AddressField: 2,
		SizeField:    -1,
	}
}
