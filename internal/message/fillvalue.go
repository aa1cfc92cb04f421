package message

import (
	"github.com/tgolubev/cgio/internal/binary"
)

// FillValue is decoded from either the old (0x0004) or new (0x0005) fill
// value message. Value is nil when no fill value is defined, in which case
// unwritten storage reads as zeros.
type FillValue struct {
	Version        uint8
	SpaceAllocTime uint8
	FillWriteTime  uint8
	Value          []byte
}

func (m *FillValue) Type() Type { return TypeFillValue }

func parseFillValue(typ Type, data []byte) (*FillValue, error) {
	f := fields{data: data}
	fv := &FillValue{}

	if typ == TypeFillValueOld {
		n := int(f.uint(4))
		fv.Value = f.take(n)
		return fv, f.err
	}

	fv.Version = f.byte()
	switch fv.Version {
	case 1, 2:
		fv.SpaceAllocTime = f.byte()
		fv.FillWriteTime = f.byte()
		defined := f.byte() != 0
		if fv.Version == 1 || defined {
			n := int(f.uint(4))
			fv.Value = f.take(n)
		}
	default:
		flags := f.byte()
		fv.SpaceAllocTime = flags & 0x03
		fv.FillWriteTime = (flags >> 2) & 0x03
		if flags&0x20 != 0 {
			n := int(f.uint(4))
			fv.Value = f.take(n)
		}
	}
	if len(fv.Value) == 0 {
		fv.Value = nil
	}
	return fv, f.err
}

// Space allocation times.
const (
	AllocEarly       uint8 = 1
	AllocLate        uint8 = 2
	AllocIncremental uint8 = 3
)

// NewFillValue returns a version 3 fill value message with no value
// defined. Late allocation leaves contiguous storage unallocated until the
// first write.
func NewFillValue(allocTime uint8) *FillValue {
	return &FillValue{Version: 3, SpaceAllocTime: allocTime, FillWriteTime: 2}
}

// Serialize writes a version 3 fill value message.
func (m *FillValue) Serialize(w *binary.Writer) error {
	flags := m.SpaceAllocTime&0x03 | (m.FillWriteTime&0x03)<<2
	if m.Value != nil {
		flags |= 0x20
	}
	if err := w.WriteUint8(3); err != nil {
		return err
	}
	if err := w.WriteUint8(flags); err != nil {
		return err
	}
	if m.Value == nil {
		return nil
	}
	if err := w.WriteUint32(uint32(len(m.Value))); err != nil {
		return err
	}
	return w.WriteBytes(m.Value)
}

func (m *FillValue) SerializedSize(cfg binary.Config) int {
	if m.Value == nil {
		return 2
	}
	return 6 + len(m.Value)
}
