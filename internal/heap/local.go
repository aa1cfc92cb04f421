// Package heap reads the local heaps that hold member names of old-style
// (symbol table) groups.
package heap

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

var signature = []byte("HEAP")

// ErrInvalidHeap is returned for a bad signature, version or offset.
var ErrInvalidHeap = errors.New("invalid local heap")

// LocalHeap is a local heap with its data segment loaded.
type LocalHeap struct {
	DataAddress uint64
	data        []byte
}

/*
Layout: "HEAP", version(1)=0, reserved(3), data segment size(L),
free list head offset(L), data segment address(O).
*/

// ReadLocalHeap reads the heap header at address and its data segment.
func ReadLocalHeap(r *binary.Reader, address uint64) (*LocalHeap, error) {
	hr := r.At(int64(address))
	head, err := hr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("reading local heap at %d: %w", address, err)
	}
	if !bytes.Equal(head[:4], signature) {
		return nil, fmt.Errorf("%w: signature %q at %d", ErrInvalidHeap, head[:4], address)
	}
	if head[4] != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidHeap, head[4])
	}
	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	hr.Skip(int64(r.LengthSize()))
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}

	h := &LocalHeap{DataAddress: dataAddr, data: make([]byte, size)}
	if err := r.ReadAt(h.data, int64(dataAddr)); err != nil {
		return nil, fmt.Errorf("reading local heap data: %w", err)
	}
	return h, nil
}

// String returns the NUL-terminated string at offset.
func (h *LocalHeap) String(offset uint64) (string, error) {
	if offset >= uint64(len(h.data)) {
		return "", fmt.Errorf("%w: offset %d beyond %d-byte segment", ErrInvalidHeap, offset, len(h.data))
	}
	s := h.data[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s), nil
}
