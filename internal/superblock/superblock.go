// Package superblock reads and writes the HDF5 superblock, the entry point of
// every file: format version, field widths, end-of-file address and the
// location of the root group.
package superblock

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tgolubev/cgio/internal/binary"
)

// Signature is the 8-byte HDF5 format signature.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// searchOffsets lists where a superblock may start. HDF5 also allows larger
// powers of two for files with user blocks; these cover every user block
// size MATLAB and h5py produce.
var searchOffsets = []int64{0, 512, 1024, 2048, 4096}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock structure")
	ErrChecksum           = errors.New("superblock checksum mismatch")
)

// Superblock contains the file-level metadata this package understands.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8

	// Flags is the file consistency flags field.
	Flags uint32

	BaseAddress      uint64
	ExtensionAddress uint64
	EOFAddress       uint64

	// RootGroupAddress is the object header address of the root group.
	RootGroupAddress uint64

	// Version 0/1 only: the scratch pad of the root symbol table entry
	// caches the root group's B-tree and local heap. Zero when not cached.
	RootBTreeAddress uint64
	RootHeapAddress  uint64

	// FileOffset is where the signature was found.
	FileOffset int64
}

// Read locates and parses the superblock.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature)+1)
	for _, off := range searchOffsets {
		n, err := r.ReadAt(sig, off)
		if n < len(sig) {
			if err == io.EOF || err == nil {
				break
			}
			return nil, err
		}
		if !bytes.Equal(sig[:8], Signature) {
			continue
		}

		var sb *Superblock
		switch version := sig[8]; version {
		case 0, 1:
			sb, err = readV0(r, off, version)
		case 2, 3:
			sb, err = readV2(r, off, version)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = off
		return sb, nil
	}
	return nil, ErrNotHDF5
}

// Config returns the field widths declared by the superblock.
func (sb *Superblock) Config() binary.Config {
	return binary.Config{
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

// eofFieldPos returns the absolute file position of the EOF address field.
func (sb *Superblock) eofFieldPos() int64 {
	o := int64(sb.OffsetSize)
	switch sb.Version {
	case 0:
		return sb.FileOffset + 24 + 2*o
	case 1:
		return sb.FileOffset + 28 + 2*o
	default:
		return sb.FileOffset + 12 + 2*o
	}
}
