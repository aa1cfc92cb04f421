package object

import (
	"bytes"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

// Version 1 prefix:
//
//	0   1   version (1)
//	1   1   reserved
//	2   2   number of messages
//	4   4   reference count
//	8   4   size of the first chunk's messages
//	12  4   padding to 8 bytes
//
// Version 1 message: type(2), size(2), flags(1), reserved(3), body padded to 8.
func readV1(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	prefix, err := hr.ReadBytes(16)
	if err != nil {
		return nil, fmt.Errorf("reading object header prefix: %w", err)
	}
	if prefix[0] != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, prefix[0])
	}
	size := binary.DecodeUint(prefix[8:12])

	h := &Header{Version: 1, Address: address}
	pending := []Chunk{{Address: address + 16, Size: size}}
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if len(h.Chunks) >= maxChunks {
			return nil, fmt.Errorf("%w: too many continuation chunks", ErrInvalidHeader)
		}
		data := make([]byte, c.Size)
		if err := r.ReadAt(data, int64(c.Address)); err != nil {
			return nil, fmt.Errorf("reading object header chunk at %d: %w", c.Address, err)
		}
		h.Chunks = append(h.Chunks, c)
		more, err := h.parseV1Messages(data, int64(c.Address), r.Config())
		if err != nil {
			return nil, err
		}
		pending = append(pending, more...)
	}
	return h, nil
}

func (h *Header) parseV1Messages(data []byte, base int64, cfg binary.Config) ([]Chunk, error) {
	var more []Chunk
	chunk := len(h.Chunks) - 1
	for pos := 0; pos+8 <= len(data); {
		typ := message.Type(binary.DecodeUint(data[pos : pos+2]))
		size := int(binary.DecodeUint(data[pos+2 : pos+4]))
		flags := data[pos+4]
		body := pos + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("%w: message 0x%04x overruns its chunk", ErrInvalidHeader, uint16(typ))
		}
		c, err := h.add(typ, flags, data[body:body+size], Location{Chunk: chunk, Offset: base + int64(body), Size: size}, cfg)
		if err != nil {
			return nil, err
		}
		if c != nil {
			more = append(more, Chunk{Address: c.Offset, Size: c.Length})
		}
		pos = (body + size + 7) &^ 7
	}
	return more, nil
}

// Version 2 prefix:
//
//	0   4   "OHDR"
//	4   1   version (2)
//	5   1   flags: bits 0-1 chunk size width, bit 2 creation order tracked,
//	        bit 4 attribute phase change values stored, bit 5 times stored
//	6   var times (16), phase change values (4), chunk #0 size (1, 2, 4, 8)
//
// Then the messages of chunk #0 and a 4-byte checksum over everything before
// it. Continuation chunks are "OCHK", messages, checksum.
//
// Version 2 message: type(1), size(2), flags(1), [creation order(2)], body.
func readV2(r *binary.Reader, address uint64) (*Header, error) {
	hr := r.At(int64(address))
	fixed, err := hr.ReadBytes(6)
	if err != nil {
		return nil, fmt.Errorf("reading object header prefix: %w", err)
	}
	if fixed[4] != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, fixed[4])
	}
	flags := fixed[5]
	if flags&0x20 != 0 {
		hr.Skip(16)
	}
	if flags&0x10 != 0 {
		hr.Skip(4)
	}
	size, err := hr.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, fmt.Errorf("reading object header prefix: %w", err)
	}
	prefixLen := uint64(hr.Pos()) - address

	h := &Header{Version: 2, Address: address, Flags: flags}
	pending := []Chunk{{Address: address, Size: prefixLen + size + 4, Checksummed: true}}
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if len(h.Chunks) >= maxChunks {
			return nil, fmt.Errorf("%w: too many continuation chunks", ErrInvalidHeader)
		}
		if c.Size < 8 {
			return nil, fmt.Errorf("%w: chunk at %d is %d bytes", ErrInvalidHeader, c.Address, c.Size)
		}
		data := make([]byte, c.Size)
		if err := r.ReadAt(data, int64(c.Address)); err != nil {
			return nil, fmt.Errorf("reading object header chunk at %d: %w", c.Address, err)
		}
		start := uint64(4)
		if len(h.Chunks) == 0 {
			start = prefixLen
		} else if !bytes.Equal(data[:4], SignatureContinuation) {
			return nil, fmt.Errorf("%w: bad continuation signature at %d", ErrInvalidHeader, c.Address)
		}
		end := len(data) - 4
		if !binary.VerifyLookup3(data[:end], uint32(binary.DecodeUint(data[end:]))) {
			return nil, fmt.Errorf("%w at %d", ErrChecksumMismatch, c.Address)
		}
		h.Chunks = append(h.Chunks, c)
		more, err := h.parseV2Messages(data[start:end], int64(c.Address+start), r.Config())
		if err != nil {
			return nil, err
		}
		pending = append(pending, more...)
	}
	return h, nil
}

func (h *Header) parseV2Messages(data []byte, base int64, cfg binary.Config) ([]Chunk, error) {
	var more []Chunk
	chunk := len(h.Chunks) - 1
	hdrLen := 4
	if h.Flags&0x04 != 0 {
		hdrLen = 6
	}
	// A trailing gap smaller than a message header is allowed.
	for pos := 0; pos+hdrLen <= len(data); {
		typ := message.Type(data[pos])
		size := int(binary.DecodeUint(data[pos+1 : pos+3]))
		flags := data[pos+3]
		body := pos + hdrLen
		if body+size > len(data) {
			return nil, fmt.Errorf("%w: message 0x%04x overruns its chunk", ErrInvalidHeader, uint16(typ))
		}
		c, err := h.add(typ, flags, data[body:body+size], Location{Chunk: chunk, Offset: base + int64(body), Size: size}, cfg)
		if err != nil {
			return nil, err
		}
		if c != nil {
			more = append(more, Chunk{Address: c.Offset, Size: c.Length, Checksummed: true})
		}
		pos = body + size
	}
	return more, nil
}

// add records one message. Continuations are returned instead of stored.
func (h *Header) add(typ message.Type, flags uint8, body []byte, loc Location, cfg binary.Config) (*message.Continuation, error) {
	if typ == message.TypeNIL {
		return nil, nil
	}
	var (
		msg message.Message
		err error
	)
	if flags&0x02 != 0 {
		// shared message: the body is only a reference to another object
		msg = message.NewUnknown(typ, body)
	} else if msg, err = message.Parse(typ, body, cfg); err != nil {
		return nil, fmt.Errorf("object header at %d: %w", h.Address, err)
	}
	if c, ok := msg.(*message.Continuation); ok {
		return c, nil
	}
	h.Messages = append(h.Messages, msg)
	h.Locations = append(h.Locations, loc)
	return nil, nil
}
