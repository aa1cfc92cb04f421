package message

import (
	"github.com/tgolubev/cgio/internal/binary"
)

// SymbolTable represents a symbol table message (type 0x0011). It marks an
// old-style group and points at the B-tree and local heap holding its
// members.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(data []byte, cfg binary.Config) (*SymbolTable, error) {
	f := fields{data: data}
	st := &SymbolTable{
		BTreeAddress:     f.uint(cfg.OffsetSize),
		LocalHeapAddress: f.uint(cfg.OffsetSize),
	}
	return st, f.err
}

func (m *SymbolTable) Serialize(w *binary.Writer) error {
	if err := w.WriteOffset(m.BTreeAddress); err != nil {
		return err
	}
	return w.WriteOffset(m.LocalHeapAddress)
}

func (m *SymbolTable) SerializedSize(cfg binary.Config) int { return 2 * cfg.OffsetSize }
