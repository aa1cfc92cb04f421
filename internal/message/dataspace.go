package message

import (
	"github.com/tgolubev/cgio/internal/binary"
)

// DataspaceType represents the type of dataspace.
type DataspaceType uint8

const (
	DataspaceScalar DataspaceType = 0
	DataspaceSimple DataspaceType = 1
	DataspaceNull   DataspaceType = 2
)

// Dataspace represents a dataspace message (type 0x0001).
type Dataspace struct {
	Version    uint8
	SpaceType  DataspaceType
	Dimensions []uint64
	MaxDims    []uint64 // nil when not stored
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// Rank returns the number of dimensions.
func (m *Dataspace) Rank() int { return len(m.Dimensions) }

// NumElements returns the total number of elements in the dataspace.
func (m *Dataspace) NumElements() uint64 {
	switch m.SpaceType {
	case DataspaceScalar:
		return 1
	case DataspaceSimple:
		n := uint64(1)
		for _, d := range m.Dimensions {
			n *= d
		}
		return n
	default:
		return 0
	}
}

func (m *Dataspace) IsScalar() bool { return m.SpaceType == DataspaceScalar }
func (m *Dataspace) IsNull() bool   { return m.SpaceType == DataspaceNull }

/*
Version 1: version, rank, flags, reserved(5), dims, [maxdims], [permutation]
Version 2: version, rank, flags, type, dims, [maxdims]
*/
func parseDataspace(data []byte, cfg binary.Config) (*Dataspace, error) {
	f := fields{data: data}
	ds := &Dataspace{Version: f.byte()}
	rank := int(f.byte())
	flags := f.byte()

	switch ds.Version {
	case 1:
		f.skip(5)
		ds.SpaceType = DataspaceSimple
		if rank == 0 {
			ds.SpaceType = DataspaceScalar
		}
	default:
		ds.SpaceType = DataspaceType(f.byte())
	}
	if f.err != nil {
		return nil, f.err
	}
	if ds.SpaceType != DataspaceSimple {
		return ds, nil
	}

	ds.Dimensions = make([]uint64, rank)
	for i := range ds.Dimensions {
		ds.Dimensions[i] = f.uint(cfg.LengthSize)
	}
	if flags&0x01 != 0 {
		ds.MaxDims = make([]uint64, rank)
		for i := range ds.MaxDims {
			ds.MaxDims[i] = f.uint(cfg.LengthSize)
		}
	}
	return ds, f.err
}

// Serialize writes a version 2 dataspace message.
func (m *Dataspace) Serialize(w *binary.Writer) error {
	flags := uint8(0)
	if m.MaxDims != nil {
		flags = 0x01
	}
	for _, b := range []uint8{2, uint8(len(m.Dimensions)), flags, uint8(m.SpaceType)} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	for _, list := range [][]uint64{m.Dimensions, m.MaxDims} {
		for _, d := range list {
			if err := w.WriteLength(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Dataspace) SerializedSize(cfg binary.Config) int {
	return 4 + (len(m.Dimensions)+len(m.MaxDims))*cfg.LengthSize
}

// NewDataspace creates a simple dataspace with fixed dimensions.
func NewDataspace(dims ...uint64) *Dataspace {
	return &Dataspace{
		Version:    2,
		SpaceType:  DataspaceSimple,
		Dimensions: dims,
	}
}

// NewScalarDataspace creates a scalar dataspace.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{Version: 2, SpaceType: DataspaceScalar}
}
