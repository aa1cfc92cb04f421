package message

import (
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

// DatatypeClass represents the class of an HDF5 datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

var classNames = [...]string{
	"integer", "float", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "vlen", "array",
}

func (c DatatypeClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ByteOrder represents the byte order of numeric types.
type ByteOrder uint8

const (
	OrderLE ByteOrder = 0
	OrderBE ByteOrder = 1
)

// Datatype represents a datatype message (type 0x0003). Only the numeric
// classes are fully decoded; other classes keep their raw properties.
type Datatype struct {
	Version   uint8
	Class     DatatypeClass
	ClassBits uint32
	Size      uint32
	ByteOrder ByteOrder
	Signed    bool

	// BitOffset and BitPrecision for fixed-point; float properties are kept
	// verbatim in Properties.
	BitOffset    uint16
	BitPrecision uint16
	Properties   []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

// IsNumeric reports whether values of this type convert to and from Go
// numbers.
func (m *Datatype) IsNumeric() bool {
	switch m.Class {
	case ClassFixedPoint:
		return m.Size == 1 || m.Size == 2 || m.Size == 4 || m.Size == 8
	case ClassFloatPoint:
		return m.Size == 4 || m.Size == 8
	}
	return false
}

// String describes the type the way h5dump abbreviates it, e.g. "H5T_IEEE_F64LE".
func (m *Datatype) String() string {
	order := "LE"
	if m.ByteOrder == OrderBE {
		order = "BE"
	}
	switch m.Class {
	case ClassFloatPoint:
		return fmt.Sprintf("H5T_IEEE_F%d%s", m.Size*8, order)
	case ClassFixedPoint:
		sign := "U"
		if m.Signed {
			sign = "I"
		}
		return fmt.Sprintf("H5T_STD_%s%d%s", sign, m.Size*8, order)
	}
	return fmt.Sprintf("%s(%d bytes)", m.Class, m.Size)
}

func parseDatatype(data []byte) (*Datatype, error) {
	f := fields{data: data}
	cv := f.byte()
	bits := uint32(f.uint(3))
	size := uint32(f.uint(4))
	if f.err != nil {
		return nil, f.err
	}

	dt := &Datatype{
		Version:    cv >> 4,
		Class:      DatatypeClass(cv & 0x0F),
		ClassBits:  bits,
		Size:       size,
		Properties: data[8:],
	}
	switch dt.Class {
	case ClassFixedPoint:
		dt.ByteOrder = ByteOrder(bits & 0x01)
		dt.Signed = bits&0x08 != 0
		dt.BitOffset = uint16(f.uint(2))
		dt.BitPrecision = uint16(f.uint(2))
	case ClassFloatPoint:
		// bit 6 together with bit 0 selects VAX order, which is not supported
		if bits&0x40 != 0 {
			return nil, fmt.Errorf("VAX float byte order is not supported")
		}
		dt.ByteOrder = ByteOrder(bits & 0x01)
		f.skip(12)
	}
	return dt, f.err
}

// Serialize writes a version 1 datatype message.
func (m *Datatype) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(uint8(m.Class) | 1<<4); err != nil {
		return err
	}
	if err := w.WriteUintN(uint64(m.ClassBits), 3); err != nil {
		return err
	}
	if err := w.WriteUint32(m.Size); err != nil {
		return err
	}
	switch m.Class {
	case ClassFixedPoint:
		if err := w.WriteUint16(m.BitOffset); err != nil {
			return err
		}
		return w.WriteUint16(m.BitPrecision)
	default:
		return w.WriteBytes(m.Properties)
	}
}

func (m *Datatype) SerializedSize(cfg binary.Config) int {
	if m.Class == ClassFixedPoint {
		return 12
	}
	return 8 + len(m.Properties)
}

// NewFixedPointDatatype creates an integer type of size bytes.
func NewFixedPointDatatype(size uint32, signed bool, order ByteOrder) *Datatype {
	bits := uint32(order)
	if signed {
		bits |= 0x08
	}
	return &Datatype{
		Version:      1,
		Class:        ClassFixedPoint,
		ClassBits:    bits,
		Size:         size,
		ByteOrder:    order,
		Signed:       signed,
		BitPrecision: uint16(size * 8),
	}
}

// NewFloatDatatype creates an IEEE 754 float type of 4 or 8 bytes.
func NewFloatDatatype(size uint32, order ByteOrder) *Datatype {
	// bit offset, precision, exponent location and size, mantissa location
	// and size, exponent bias
	props := []byte{0, 0, 64, 0, 52, 11, 0, 52, 0xff, 0x03, 0, 0}
	// class bits: byte order, mantissa normalization "implied", sign at bit 63
	bits := uint32(order) | 0x20 | 63<<8
	if size == 4 {
		props = []byte{0, 0, 32, 0, 23, 8, 0, 23, 0x7f, 0, 0, 0}
		bits = uint32(order) | 0x20 | 31<<8
	}
	return &Datatype{
		Version:    1,
		Class:      ClassFloatPoint,
		ClassBits:  bits,
		Size:       size,
		ByteOrder:  order,
		Properties: props,
	}
}
