package superblock

import (
	"fmt"
	"io"

	"github.com/tgolubev/cgio/internal/binary"
)

/*
Version 2 and 3 layout:

	0     8  signature
	8     1  version
	9     1  size of offsets
	10    1  size of lengths
	11    1  file consistency flags
	12    O  base address
	..    O  superblock extension address
	..    O  end of file address
	..    O  root group object header address
	..    4  lookup3 checksum of everything above
*/

func readV2(r io.ReaderAt, base int64, version uint8) (*Superblock, error) {
	head := make([]byte, 12)
	if _, err := r.ReadAt(head, base); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: head[9],
		LengthSize: head[10],
		Flags:      uint32(head[11]),
	}
	if err := sb.Config().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	raw := make([]byte, sb.Size())
	if _, err := r.ReadAt(raw, base); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	body := raw[:len(raw)-4]
	if stored := uint32(binary.DecodeUint(raw[len(body):])); !binary.VerifyLookup3(body, stored) {
		return nil, ErrChecksum
	}

	o := int(sb.OffsetSize)
	field := func(i int) uint64 {
		return binary.DecodeUint(body[12+i*o : 12+(i+1)*o])
	}
	sb.BaseAddress = field(0)
	sb.ExtensionAddress = field(1)
	sb.EOFAddress = field(2)
	sb.RootGroupAddress = field(3)
	return sb, nil
}
