// Package object reads and writes HDF5 object headers, the per-object lists
// of header messages that describe groups and datasets.
//
// Version 1 headers (files with superblock v0/v1) keep their messages 8-byte
// aligned and carry no checksums. Version 2 headers start with "OHDR", spill
// into "OCHK" continuation chunks, and end every chunk with a lookup3
// checksum. Both versions may be split across several chunks; [Read]
// follows the continuation messages and remembers where each message body
// lives on disk so fields can later be patched in place.
package object

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

var (
	SignatureV2           = []byte("OHDR")
	SignatureContinuation = []byte("OCHK")
)

var (
	ErrInvalidHeader      = errors.New("invalid object header")
	ErrUnsupportedVersion = errors.New("unsupported object header version")
	ErrChecksumMismatch   = errors.New("object header checksum mismatch")
)

// maxChunks bounds the continuation chain so a corrupt file cannot loop.
const maxChunks = 1024

// Chunk is one contiguous block of header messages. Size covers the whole
// block on disk, including the prefix or signature and the checksum.
type Chunk struct {
	Address     uint64
	Size        uint64
	Checksummed bool
}

// Location is where a message body is stored.
type Location struct {
	Chunk  int   // index into Header.Chunks
	Offset int64 // file offset of the first body byte
	Size   int
}

// Header is a parsed object header.
type Header struct {
	Version uint8
	Address uint64
	Flags   uint8

	Messages  []message.Message
	Locations []Location // parallel to Messages
	Chunks    []Chunk
}

// Read parses the object header at address.
func Read(r *binary.Reader, address uint64) (*Header, error) {
	peek, err := r.At(int64(address)).Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at %d: %w", address, err)
	}
	switch {
	case bytes.Equal(peek, SignatureV2):
		return readV2(r, address)
	case peek[0] == 1:
		return readV1(r, address)
	}
	return nil, fmt.Errorf("%w: unknown format at address %d", ErrInvalidHeader, address)
}

// GetMessage returns the first message of the given type, or nil.
func (h *Header) GetMessage(typ message.Type) message.Message {
	if i := h.index(typ); i >= 0 {
		return h.Messages[i]
	}
	return nil
}

// GetMessages returns all messages of the given type.
func (h *Header) GetMessages(typ message.Type) []message.Message {
	var result []message.Message
	for _, msg := range h.Messages {
		if msg.Type() == typ {
			result = append(result, msg)
		}
	}
	return result
}

func (h *Header) index(typ message.Type) int {
	for i, msg := range h.Messages {
		if msg.Type() == typ {
			return i
		}
	}
	return -1
}

func (h *Header) Dataspace() *message.Dataspace {
	ds, _ := h.GetMessage(message.TypeDataspace).(*message.Dataspace)
	return ds
}

func (h *Header) Datatype() *message.Datatype {
	dt, _ := h.GetMessage(message.TypeDatatype).(*message.Datatype)
	return dt
}

func (h *Header) DataLayout() *message.DataLayout {
	l, _ := h.GetMessage(message.TypeDataLayout).(*message.DataLayout)
	return l
}

// FillValue returns the fill value message. Old-style messages decode to
// the same type and are found here too.
func (h *Header) FillValue() *message.FillValue {
	fv, _ := h.GetMessage(message.TypeFillValue).(*message.FillValue)
	return fv
}

// Links returns the link messages of a new-style group.
func (h *Header) Links() []*message.Link {
	var links []*message.Link
	for _, msg := range h.Messages {
		if l, ok := msg.(*message.Link); ok {
			links = append(links, l)
		}
	}
	return links
}

func (h *Header) SymbolTable() *message.SymbolTable {
	st, _ := h.GetMessage(message.TypeSymbolTable).(*message.SymbolTable)
	return st
}

// IsGroup reports whether the header describes a group of either style.
func (h *Header) IsGroup() bool {
	return h.index(message.TypeSymbolTable) >= 0 ||
		h.index(message.TypeLinkInfo) >= 0 ||
		h.index(message.TypeLink) >= 0
}

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.index(message.TypeDataLayout) >= 0 && h.index(message.TypeDataspace) >= 0
}
