package hdf5

import (
	"fmt"
	"path"
	"strings"

	"github.com/tgolubev/cgio/internal/btree"
	"github.com/tgolubev/cgio/internal/heap"
	"github.com/tgolubev/cgio/internal/message"
	"github.com/tgolubev/cgio/internal/object"
)

// Group is an HDF5 group.
type Group struct {
	file   *File
	path   string
	header *object.Header
	addr   uint64
	parent *Group // nil for the root and for groups reached by soft link
}

// member is one link in a group, from either storage style.
type member struct {
	name   string
	addr   uint64
	soft   bool
	target string
}

// Name returns the last path component, or "/" for the root.
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the path the group was opened by.
func (g *Group) Path() string { return g.path }

// Members returns the names of the group's links in storage order.
func (g *Group) Members() ([]string, error) {
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return names, nil
}

func (g *Group) members() ([]member, error) {
	if st := g.symbolTable(); st != nil {
		return g.symbolTableMembers(st)
	}
	var members []member
	for _, l := range g.header.Links() {
		switch l.LinkType {
		case message.LinkTypeHard:
			members = append(members, member{name: l.Name, addr: l.ObjectAddress})
		case message.LinkTypeSoft:
			members = append(members, member{name: l.Name, soft: true, target: l.Target})
		default:
			// external links are listed but cannot be opened
			members = append(members, member{name: l.Name, addr: g.file.superblock.Config().Undefined()})
		}
	}
	return members, nil
}

// symbolTable returns the group's symbol table message. The root group of a
// version 0/1 file can also be found through the superblock's cached
// addresses.
func (g *Group) symbolTable() *message.SymbolTable {
	if st := g.header.SymbolTable(); st != nil {
		return st
	}
	sb := g.file.superblock
	if g.parent == nil && g.addr == sb.RootGroupAddress && sb.RootBTreeAddress != 0 {
		return &message.SymbolTable{BTreeAddress: sb.RootBTreeAddress, LocalHeapAddress: sb.RootHeapAddress}
	}
	return nil
}

func (g *Group) symbolTableMembers(st *message.SymbolTable) ([]member, error) {
	names, err := heap.ReadLocalHeap(g.file.reader, st.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	entries, err := btree.ReadGroupEntries(g.file.reader, st.BTreeAddress, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	members := make([]member, len(entries))
	for i, e := range entries {
		members[i] = member{name: e.Name, addr: e.Address, soft: e.Soft, target: e.Target}
	}
	return members, nil
}

func (g *Group) lookup(name string) (member, error) {
	members, err := g.members()
	if err != nil {
		return member{}, err
	}
	for _, m := range members {
		if m.name == name {
			return m, nil
		}
	}
	return member{}, fmt.Errorf("%w: %s", ErrNotFound, joinPath(g.path, name))
}

// OpenGroup opens a group by path. Absolute paths start at the root.
func (g *Group) OpenGroup(p string) (*Group, error) {
	obj, err := g.open(p, 0)
	if err != nil {
		return nil, err
	}
	group, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotGroup, p)
	}
	return group, nil
}

// OpenDataset opens a dataset by path. Absolute paths start at the root.
func (g *Group) OpenDataset(p string) (*Dataset, error) {
	obj, err := g.open(p, 0)
	if err != nil {
		return nil, err
	}
	ds, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDataset, p)
	}
	return ds, nil
}

func (g *Group) open(p string, depth int) (any, error) {
	if depth > MaxLinkDepth {
		return nil, fmt.Errorf("%w: resolving %s", ErrLinkDepth, p)
	}
	cur := g
	if strings.HasPrefix(p, "/") {
		cur = g.file.root
	}
	parts := splitPath(p)
	if len(parts) == 0 {
		return cur, nil
	}
	for i, name := range parts {
		if name == "." || name == ".." {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
		obj, err := cur.child(name, depth)
		if err != nil {
			return nil, err
		}
		if i == len(parts)-1 {
			return obj, nil
		}
		next, ok := obj.(*Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotGroup, joinPath(cur.path, name))
		}
		cur = next
	}
	return cur, nil
}

func (g *Group) child(name string, depth int) (any, error) {
	m, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	if m.soft {
		return g.open(m.target, depth+1)
	}
	if g.file.superblock.Config().IsUndefined(m.addr) {
		return nil, fmt.Errorf("%w: external link %s", ErrUnsupported, joinPath(g.path, name))
	}
	return g.file.openObject(m.addr, joinPath(g.path, name), g)
}
