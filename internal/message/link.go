package message

import (
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
)

// LinkType represents the type of link.
type LinkType uint8

const (
	LinkTypeHard     LinkType = 0
	LinkTypeSoft     LinkType = 1
	LinkTypeExternal LinkType = 64
)

// Link represents a link message (type 0x0006) in a compact group.
type Link struct {
	Version  uint8
	LinkType LinkType
	Name     string

	ObjectAddress uint64 // hard
	Target        string // soft
}

func (m *Link) Type() Type { return TypeLink }

func (m *Link) IsHard() bool { return m.LinkType == LinkTypeHard }
func (m *Link) IsSoft() bool { return m.LinkType == LinkTypeSoft }

/*
Layout: version(1), flags(1), [type(1) if bit 3], [creation order(8) if bit 2],
[charset(1) if bit 4], name length (1<<(flags&3) bytes), name, link info.
*/
func parseLink(data []byte, cfg binary.Config) (*Link, error) {
	f := fields{data: data}
	l := &Link{Version: f.byte()}
	flags := f.byte()
	if flags&0x08 != 0 {
		l.LinkType = LinkType(f.byte())
	}
	if flags&0x04 != 0 {
		f.skip(8)
	}
	if flags&0x10 != 0 {
		f.skip(1)
	}
	nameLen := int(f.uint(1 << (flags & 0x03)))
	l.Name = string(f.take(nameLen))

	switch l.LinkType {
	case LinkTypeHard:
		l.ObjectAddress = f.uint(cfg.OffsetSize)
	case LinkTypeSoft:
		n := int(f.uint(2))
		l.Target = string(f.take(n))
	case LinkTypeExternal:
		// Kept so the group still lists the member; resolving it fails later.
		n := int(f.uint(2))
		f.skip(n)
	default:
		return nil, fmt.Errorf("unknown link type %d", l.LinkType)
	}
	return l, f.err
}

func nameLenBits(n int) (bits uint8, size int) {
	switch {
	case n <= 0xFF:
		return 0, 1
	case n <= 0xFFFF:
		return 1, 2
	default:
		return 2, 4
	}
}

// Serialize writes a version 1 link message. External links are not written.
func (m *Link) Serialize(w *binary.Writer) error {
	bits, size := nameLenBits(len(m.Name))
	flags := bits
	if m.LinkType != LinkTypeHard {
		flags |= 0x08
	}
	if err := w.WriteUint8(1); err != nil {
		return err
	}
	if err := w.WriteUint8(flags); err != nil {
		return err
	}
	if m.LinkType != LinkTypeHard {
		if err := w.WriteUint8(uint8(m.LinkType)); err != nil {
			return err
		}
	}
	if err := w.WriteUintN(uint64(len(m.Name)), size); err != nil {
		return err
	}
	if err := w.WriteBytes([]byte(m.Name)); err != nil {
		return err
	}
	switch m.LinkType {
	case LinkTypeHard:
		return w.WriteOffset(m.ObjectAddress)
	case LinkTypeSoft:
		if err := w.WriteUint16(uint16(len(m.Target))); err != nil {
			return err
		}
		return w.WriteBytes([]byte(m.Target))
	}
	return fmt.Errorf("cannot write link type %d", m.LinkType)
}

func (m *Link) SerializedSize(cfg binary.Config) int {
	_, size := nameLenBits(len(m.Name))
	n := 2 + size + len(m.Name)
	switch m.LinkType {
	case LinkTypeHard:
		n += cfg.OffsetSize
	case LinkTypeSoft:
		n += 1 + 2 + len(m.Target)
	}
	return n
}

// NewHardLink creates a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	return &Link{Version: 1, LinkType: LinkTypeHard, Name: name, ObjectAddress: addr}
}

// NewSoftLink creates a soft link to an absolute or relative path.
func NewSoftLink(name, target string) *Link {
	return &Link{Version: 1, LinkType: LinkTypeSoft, Name: name, Target: target}
}

// LinkInfo is the link info message (type 0x0002) every new-style group
// carries. Groups written here keep all links compact, so the dense storage
// addresses are always undefined.
type LinkInfo struct{}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

func (m *LinkInfo) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	if err := w.WriteUndefinedOffset(); err != nil {
		return err
	}
	return w.WriteUndefinedOffset()
}

func (m *LinkInfo) SerializedSize(cfg binary.Config) int { return 2 + 2*cfg.OffsetSize }

// GroupInfo is the group info message (type 0x000A) with default phase
// change values.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(0); err != nil {
		return err
	}
	return w.WriteUint8(0)
}

func (m *GroupInfo) SerializedSize(cfg binary.Config) int { return 2 }
