package superblock

import (
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

// New returns a version 3 superblock with 8-byte offsets and lengths and no
// extension.
func New() *Superblock {
	return &Superblock{
		Version:          3,
		OffsetSize:       8,
		LengthSize:       8,
		ExtensionAddress: binary.DefaultConfig().Undefined(),
	}
}

// Size returns the encoded size of a version 2/3 superblock.
func (sb *Superblock) Size() int {
	return 12 + 4*int(sb.OffsetSize) + 4
}

// Write encodes a version 2/3 superblock at the writer position.
func (sb *Superblock) Write(w *binary.Writer) error {
	if sb.Version < 2 {
		return fmt.Errorf("%w: cannot write version %d", ErrUnsupportedVersion, sb.Version)
	}
	buf := binary.NewBuffer(sb.Size())
	bw := binary.NewWriter(buf, sb.Config())

	steps := []func() error{
		func() error { return bw.WriteBytes(Signature) },
		func() error { return bw.WriteUint8(sb.Version) },
		func() error { return bw.WriteUint8(sb.OffsetSize) },
		func() error { return bw.WriteUint8(sb.LengthSize) },
		func() error { return bw.WriteUint8(uint8(sb.Flags)) },
		func() error { return bw.WriteOffset(sb.BaseAddress) },
		func() error { return bw.WriteOffset(sb.ExtensionAddress) },
		func() error { return bw.WriteOffset(sb.EOFAddress) },
		func() error { return bw.WriteOffset(sb.RootGroupAddress) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	if err := bw.WriteUint32(binary.Lookup3Checksum(buf.Bytes())); err != nil {
		return err
	}
	return w.WriteBytes(buf.Bytes())
}

// UpdateEOF records a new end-of-file address on disk. Version 0/1
// superblocks have no checksum, so only the EOF field is rewritten; version
// 2/3 superblocks are rewritten whole to refresh the checksum.
func (sb *Superblock) UpdateEOF(w *binary.Writer, eof uint64) error {
	sb.EOFAddress = eof
	if sb.Version >= 2 {
		return sb.Write(w.At(sb.FileOffset))
	}
	return w.At(sb.eofFieldPos()).WriteOffset(eof)
}
