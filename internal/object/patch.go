package object

import (
	"fmt"
	"io"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/message"
)

// ReadWriterAt is the file access PatchLayout needs.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// PatchLayout points a contiguous layout message at newly allocated storage.
// The address field (and the size field, for versions that store one) is
// overwritten in place; a checksummed chunk gets its checksum recomputed.
func (h *Header) PatchLayout(f ReadWriterAt, cfg binary.Config, addr, size uint64) error {
	i := h.index(message.TypeDataLayout)
	if i < 0 {
		return fmt.Errorf("%w: no layout message", ErrInvalidHeader)
	}
	layout := h.Messages[i].(*message.DataLayout)
	if layout.Class != message.LayoutContiguous {
		return fmt.Errorf("cannot patch %s layout", layout.Class)
	}
	loc := h.Locations[i]

	w := binary.NewWriter(f, cfg)
	if err := w.At(loc.Offset + int64(layout.AddressField)).WriteOffset(addr); err != nil {
		return fmt.Errorf("patching layout address: %w", err)
	}
	if layout.SizeField >= 0 {
		if err := w.At(loc.Offset + int64(layout.SizeField)).WriteLength(size); err != nil {
			return fmt.Errorf("patching layout size: %w", err)
		}
	}
	layout.Address = addr
	layout.Size = size

	if c := h.Chunks[loc.Chunk]; c.Checksummed {
		if err := rechecksum(f, c); err != nil {
			return fmt.Errorf("updating header checksum: %w", err)
		}
	}
	return nil
}

// PatchCompact overwrites the data of a compact layout in place. data must
// be exactly as long as the stored data.
func (h *Header) PatchCompact(f ReadWriterAt, data []byte) error {
	i := h.index(message.TypeDataLayout)
	if i < 0 {
		return fmt.Errorf("%w: no layout message", ErrInvalidHeader)
	}
	layout := h.Messages[i].(*message.DataLayout)
	if layout.Class != message.LayoutCompact {
		return fmt.Errorf("cannot patch %s layout as compact", layout.Class)
	}
	if len(data) != len(layout.CompactData) {
		return fmt.Errorf("compact data is %d bytes, got %d", len(layout.CompactData), len(data))
	}
	loc := h.Locations[i]
	if _, err := f.WriteAt(data, loc.Offset+int64(layout.CompactField)); err != nil {
		return fmt.Errorf("patching compact data: %w", err)
	}
	layout.CompactData = append([]byte(nil), data...)

	if c := h.Chunks[loc.Chunk]; c.Checksummed {
		if err := rechecksum(f, c); err != nil {
			return fmt.Errorf("updating header checksum: %w", err)
		}
	}
	return nil
}

func rechecksum(f ReadWriterAt, c Chunk) error {
	data := make([]byte, c.Size-4)
	if _, err := f.ReadAt(data, int64(c.Address)); err != nil {
		return err
	}
	sum := make([]byte, 4)
	binary.EncodeUint(sum, uint64(binary.Lookup3Checksum(data)))
	_, err := f.WriteAt(sum, int64(c.Address+c.Size-4))
	return err
}
