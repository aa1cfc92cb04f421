// Package btree walks the version 1 B-trees that index the members of
// old-style groups. Every leaf points at a symbol table node ("SNOD") whose
// entries name a member through the group's local heap.
package btree

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tgolubev/cgio/internal/binary"
	"github.com/tgolubev/cgio/internal/heap"
)

var (
	treeSignature = []byte("TREE")
	snodSignature = []byte("SNOD")
)

// ErrInvalidNode is returned for malformed B-tree or symbol table nodes.
var ErrInvalidNode = errors.New("invalid group B-tree node")

// maxDepth bounds recursion through internal nodes.
const maxDepth = 64

// cacheSoftLink marks a symbol table entry whose scratch pad holds the heap
// offset of a soft link value.
const cacheSoftLink = 2

// Entry is one member of an old-style group.
type Entry struct {
	Name    string
	Address uint64 // object header; zero for soft links
	Soft    bool
	Target  string // soft link value
}

// ReadGroupEntries returns the members reachable from the B-tree at
// address, in B-tree (name) order.
func ReadGroupEntries(r *binary.Reader, address uint64, names *heap.LocalHeap) ([]Entry, error) {
	return readNode(r, address, names, 0)
}

/*
Node layout: "TREE", type(1)=0 for groups, level(1), entries used(2),
left sibling(O), right sibling(O), then keys and children interleaved:
key0, child0, key1, ... childN-1, keyN. Group keys are heap offsets (L).
*/
func readNode(r *binary.Reader, address uint64, names *heap.LocalHeap, depth int) ([]Entry, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: tree deeper than %d", ErrInvalidNode, maxDepth)
	}
	nr := r.At(int64(address))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree node at %d: %w", address, err)
	}
	if !bytes.Equal(head[:4], treeSignature) {
		return nil, fmt.Errorf("%w: signature %q at %d", ErrInvalidNode, head[:4], address)
	}
	if head[4] != 0 {
		return nil, fmt.Errorf("%w: node type %d is not a group node", ErrInvalidNode, head[4])
	}
	level := head[5]
	used := int(binary.DecodeUint(head[6:8]))
	nr.Skip(int64(2 * r.OffsetSize()))

	var entries []Entry
	for i := 0; i < used; i++ {
		nr.Skip(int64(r.LengthSize()))
		child, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		var more []Entry
		if level == 0 {
			more, err = readSymbolNode(r, child, names)
		} else {
			more, err = readNode(r, child, names, depth+1)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, more...)
	}
	return entries, nil
}

/*
SNOD layout: "SNOD", version(1)=1, reserved(1), symbol count(2), entries.
Entry: name offset(O), header address(O), cache type(4), reserved(4),
scratch pad(16).
*/
func readSymbolNode(r *binary.Reader, address uint64, names *heap.LocalHeap) ([]Entry, error) {
	nr := r.At(int64(address))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table node at %d: %w", address, err)
	}
	if !bytes.Equal(head[:4], snodSignature) || head[4] != 1 {
		return nil, fmt.Errorf("%w: bad symbol table node at %d", ErrInvalidNode, address)
	}
	count := int(binary.DecodeUint(head[6:8]))

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		nameOff, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		addr, err := nr.ReadOffset()
		if err != nil {
			return nil, err
		}
		cache, err := nr.ReadUint32()
		if err != nil {
			return nil, err
		}
		nr.Skip(4)
		scratch, err := nr.ReadBytes(16)
		if err != nil {
			return nil, err
		}

		name, err := names.String(nameOff)
		if err != nil {
			return nil, err
		}
		e := Entry{Name: name, Address: addr}
		if cache == cacheSoftLink {
			target, err := names.String(binary.DecodeUint(scratch[:4]))
			if err != nil {
				return nil, err
			}
			e = Entry{Name: name, Soft: true, Target: target}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
