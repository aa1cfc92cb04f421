package hdf5

import (
	"fmt"
	"strings"

	"github.com/tgolubev/cgio/internal/message"
	"github.com/tgolubev/cgio/internal/object"
)

// CreateGroup creates an empty subgroup.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkNewName(name); err != nil {
		return nil, err
	}
	messages := object.NewGroupHeader(nil)
	addr := g.file.allocate(uint64(object.HeaderSize(g.file.writer.Config(), messages, object.MinGroupChunkSize)), "group "+name)
	if _, err := object.WriteHeader(g.file.writer.At(int64(addr)), messages, object.MinGroupChunkSize); err != nil {
		return nil, fmt.Errorf("writing group header: %w", err)
	}
	if err := g.addLink(message.NewHardLink(name, addr)); err != nil {
		return nil, err
	}
	return g.file.openGroupAt(addr, joinPath(g.path, name), g)
}

// CreateSoftLink adds a soft link named name pointing at target.
func (g *Group) CreateSoftLink(name, target string) error {
	if err := g.checkNewName(name); err != nil {
		return err
	}
	return g.addLink(message.NewSoftLink(name, target))
}

func (g *Group) checkNewName(name string) error {
	if !g.file.writable {
		return ErrReadOnly
	}
	if g.file.closed {
		return ErrClosed
	}
	if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
		return fmt.Errorf("%w: member name %q", ErrInvalidPath, name)
	}
	if _, err := g.lookup(name); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, joinPath(g.path, name))
	}
	return nil
}

// addLink rewrites the group header with one more link. Headers are never
// grown in place: the new header goes to the end of the file and the
// parent's link (or the superblock, for the root) is updated to point at it.
func (g *Group) addLink(link *message.Link) error {
	if g.symbolTable() != nil {
		return fmt.Errorf("%w: adding members to symbol table group %s", ErrUnsupported, g.path)
	}
	links := append(g.header.Links(), link)
	return g.rewrite(links)
}

func (g *Group) rewrite(links []*message.Link) error {
	messages := object.NewGroupHeader(links)
	size := object.HeaderSize(g.file.writer.Config(), messages, object.MinGroupChunkSize)
	addr := g.file.allocate(uint64(size), "group "+g.path)
	if _, err := object.WriteHeader(g.file.writer.At(int64(addr)), messages, object.MinGroupChunkSize); err != nil {
		return fmt.Errorf("writing group header: %w", err)
	}
	h, err := object.Read(g.file.reader, addr)
	if err != nil {
		return err
	}
	g.addr, g.header = addr, h

	switch {
	case g == g.file.root:
		if g.file.superblock.Version < 2 {
			return fmt.Errorf("%w: moving the root group of a version %d file", ErrUnsupported, g.file.superblock.Version)
		}
		g.file.superblock.RootGroupAddress = addr
		g.file.sbDirty = true
		return nil
	case g.parent != nil:
		return g.parent.relink(g.Name(), addr)
	}
	return fmt.Errorf("%w: group %s was opened through a soft link", ErrUnsupported, g.path)
}

// relink points the hard link called name at addr.
func (g *Group) relink(name string, addr uint64) error {
	links := g.header.Links()
	for _, l := range links {
		if l.Name == name {
			l.ObjectAddress = addr
			return g.rewrite(links)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, joinPath(g.path, name))
}
