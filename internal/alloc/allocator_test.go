package alloc

import (
	"testing"
)

func TestAllocatorAppends(t *testing.T) {
	a := New(1024)
	if a.Grew() {
		t.Fatal("fresh allocator reports growth")
	}

	if addr := a.Alloc(100, "header"); addr != 1024 {
		t.Errorf("first allocation at %d, want 1024", addr)
	}
	// 1124 rounds up to 1128
	if addr := a.Alloc(200, "data"); addr != 1128 {
		t.Errorf("second allocation at %d, want 1128", addr)
	}
	if a.EOF() != 1328 {
		t.Errorf("EOF = %d, want 1328", a.EOF())
	}
	if a.Allocated() != 304 || !a.Grew() {
		t.Errorf("Allocated = %d, Grew = %v", a.Allocated(), a.Grew())
	}
	if b := a.Blocks(); len(b) != 2 || b[1].Tag != "data" || b[1].Size != 200 {
		t.Errorf("blocks = %+v", b)
	}
}

func TestAllocatorAlignsStart(t *testing.T) {
	a := New(13)
	if addr := a.Alloc(8, ""); addr != 16 {
		t.Errorf("allocation at %d, want 16", addr)
	}
}

func TestAllocatorZeroSize(t *testing.T) {
	a := New(64)
	if addr := a.Alloc(0, "empty"); addr != 64 || a.EOF() != 64 {
		t.Errorf("addr %d eof %d", addr, a.EOF())
	}
}
