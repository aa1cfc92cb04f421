// Package message decodes and encodes the header messages stored in HDF5
// object headers: dataspace, datatype, storage layout, fill value and the
// link/symbol table messages that make up groups.
package message

import (
	"errors"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

// Type represents an HDF5 header message type.
type Type uint16

// Header message types
const (
	TypeNIL                      Type = 0x0000
	TypeDataspace                Type = 0x0001
	TypeLinkInfo                 Type = 0x0002
	TypeDatatype                 Type = 0x0003
	TypeFillValueOld             Type = 0x0004
	TypeFillValue                Type = 0x0005
	TypeLink                     Type = 0x0006
	TypeExternalDataFiles        Type = 0x0007
	TypeDataLayout               Type = 0x0008
	TypeGroupInfo                Type = 0x000A
	TypeFilterPipeline           Type = 0x000B
	TypeAttribute                Type = 0x000C
	TypeObjectModTime            Type = 0x000E
	TypeObjectHeaderContinuation Type = 0x0010
	TypeSymbolTable              Type = 0x0011
)

// ErrTruncated is returned when a message body is shorter than its fields.
var ErrTruncated = errors.New("message truncated")

// Message is the interface implemented by all header messages.
type Message interface {
	Type() Type
}

// Serializable is implemented by messages this package can encode.
type Serializable interface {
	Message
	Serialize(w *binary.Writer) error
	SerializedSize(cfg binary.Config) int
}

// Parse decodes the body of a header message. Types without a decoder come
// back as *Unknown so callers can still count and skip them.
func Parse(typ Type, data []byte, cfg binary.Config) (Message, error) {
	var (
		msg Message
		err error
	)
	switch typ {
	case TypeDataspace:
		msg, err = parseDataspace(data, cfg)
	case TypeDatatype:
		msg, err = parseDatatype(data)
	case TypeDataLayout:
		msg, err = parseDataLayout(data, cfg)
	case TypeFillValue, TypeFillValueOld:
		msg, err = parseFillValue(typ, data)
	case TypeLink:
		msg, err = parseLink(data, cfg)
	case TypeSymbolTable:
		msg, err = parseSymbolTable(data, cfg)
	case TypeObjectHeaderContinuation:
		msg, err = parseContinuation(data, cfg)
	default:
		return &Unknown{typ: typ, data: data}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message type 0x%04x: %w", uint16(typ), err)
	}
	return msg, nil
}

// Unknown represents an unrecognized message type.
type Unknown struct {
	typ  Type
	data []byte
}

// NewUnknown wraps a message body that is kept undecoded.
func NewUnknown(typ Type, data []byte) *Unknown { return &Unknown{typ: typ, data: data} }

func (m *Unknown) Type() Type   { return m.typ }
func (m *Unknown) Data() []byte { return m.data }

// Continuation points at the next block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeObjectHeaderContinuation }

func parseContinuation(data []byte, cfg binary.Config) (*Continuation, error) {
	f := fields{data: data}
	c := &Continuation{
		Offset: f.uint(cfg.OffsetSize),
		Length: f.uint(cfg.LengthSize),
	}
	return c, f.err
}

// fields is a cursor over a message body that records the first overrun
// instead of making every call site check bounds.
type fields struct {
	data []byte
	pos  int
	err  error
}

func (f *fields) take(n int) []byte {
	if f.err != nil {
		return nil
	}
	if n < 0 || f.pos+n > len(f.data) {
		f.err = fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncated, n, f.pos, len(f.data))
		return nil
	}
	b := f.data[f.pos : f.pos+n]
	f.pos += n
	return b
}

func (f *fields) uint(n int) uint64 {
	b := f.take(n)
	if b == nil {
		return 0
	}
	return binary.DecodeUint(b)
}

func (f *fields) byte() uint8 { return uint8(f.uint(1)) }

func (f *fields) skip(n int) { f.take(n) }
