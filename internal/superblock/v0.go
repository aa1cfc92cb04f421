package superblock

import (
	"fmt"
	"io"

	"github.com/tgolubev/cgio/internal/binary"
)

/*
Version 0 and 1 layout:

	0     8  signature
	8     1  version
	9     1  free-space storage version
	10    1  root group symbol table entry version
	11    1  reserved
	12    1  shared header message format version
	13    1  size of offsets
	14    1  size of lengths
	15    1  reserved
	16    2  group leaf node K
	18    2  group internal node K
	20    4  file consistency flags
	24    4  (v1 only) indexed storage K + reserved
	..    O  base address
	..    O  free-space info address
	..    O  end of file address
	..    O  driver information block address
	..       root group symbol table entry:
	         O link name offset, O object header address,
	         4 cache type, 4 reserved, 16 scratch pad
*/

const cacheTypeSymbolTable = 1

func readV0(r io.ReaderAt, base int64, version uint8) (*Superblock, error) {
	fixed := make([]byte, 16)
	if _, err := r.ReadAt(fixed, base+8); err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	sb := &Superblock{
		Version:    version,
		OffsetSize: fixed[5],
		LengthSize: fixed[6],
		Flags:      uint32(binary.DecodeUint(fixed[12:16])),
	}
	if err := sb.Config().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuperblock, err)
	}

	pos := base + 24
	if version == 1 {
		pos += 4
	}
	br := binary.NewReader(r, sb.Config()).At(pos)

	var addrs [4]uint64
	for i := range addrs {
		v, err := br.ReadOffset()
		if err != nil {
			return nil, fmt.Errorf("reading superblock addresses: %w", err)
		}
		addrs[i] = v
	}
	sb.BaseAddress = addrs[0]
	sb.EOFAddress = addrs[2]

	// root group symbol table entry
	br.Skip(int64(sb.OffsetSize))
	rootAddr, err := br.ReadOffset()
	if err != nil {
		return nil, fmt.Errorf("reading root symbol table entry: %w", err)
	}
	sb.RootGroupAddress = rootAddr

	cacheType, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	br.Skip(4)
	if cacheType == cacheTypeSymbolTable {
		if sb.RootBTreeAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootHeapAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
	}
	return sb, nil
}
