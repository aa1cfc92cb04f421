package btree

import (
	"errors"
	"testing"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/heap"
)

type image []byte

func (m image) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, m[off:]), nil
}

func put(b []byte, off int, v uint64, n int) { binary.EncodeUint(b[off:off+n], v) }

// buildGroup lays out a local heap at 0 (data at 32), a leaf B-tree node at
// 128 and one symbol table node at 256 holding the given members.
func buildGroup(members []Entry) image {
	img := make([]byte, 1024)
	copy(img, "HEAP")
	put(img, 8, 64, 8)  // data size
	put(img, 24, 32, 8) // data address

	heapData := img[32:96]
	next := 1 // offset 0 is the empty string
	offset := func(s string) uint64 {
		o := next
		copy(heapData[o:], s)
		next += len(s) + 1
		return uint64(o)
	}

	copy(img[128:], "TREE")
	img[133] = 0 // leaf
	put(img, 134, 1, 2)
	put(img, 136, ^uint64(0), 8)
	put(img, 144, ^uint64(0), 8)
	put(img, 152, 0, 8)   // key 0
	put(img, 160, 256, 8) // child 0

	copy(img[256:], "SNOD")
	img[260] = 1
	put(img, 262, uint64(len(members)), 2)
	pos := 264
	for _, m := range members {
		put(img, pos, offset(m.Name), 8)
		if m.Soft {
			put(img, pos+16, cacheSoftLink, 4)
			put(img, pos+24, offset(m.Target), 4)
		} else {
			put(img, pos+8, m.Address, 8)
		}
		pos += 40
	}
	return img
}

func TestReadGroupEntries(t *testing.T) {
	want := []Entry{
		{Name: "A", Address: 800},
		{Name: "b", Address: 900},
		{Name: "rhs", Soft: true, Target: "/b"},
	}
	r := binary.NewReader(buildGroup(want), binary.DefaultConfig())
	names, err := heap.ReadLocalHeap(r, 0)
	if err != nil {
		t.Fatalf("ReadLocalHeap: %v", err)
	}
	got, err := ReadGroupEntries(r, 128, names)
	if err != nil {
		t.Fatalf("ReadGroupEntries: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadGroupEntriesBadSignature(t *testing.T) {
	img := buildGroup(nil)
	copy(img[128:], "XXXX")
	r := binary.NewReader(img, binary.DefaultConfig())
	names, err := heap.ReadLocalHeap(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadGroupEntries(r, 128, names); !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("err = %v, want ErrInvalidNode", err)
	}
}
