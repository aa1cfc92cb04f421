package hdf5

// WalkFunc is called for each object during traversal. obj is a *Group, a
// *Dataset or a SoftLink; err is the error opening the object, if any.
// Returning an error stops the walk.
type WalkFunc func(path string, obj any, err error) error

// SoftLink is a symbolic link met while walking. Walk does not follow soft
// links, so cycles cannot trap it.
type SoftLink struct {
	Target string
}

// Walk visits g and everything reachable from it through hard links,
// parents before children, members in storage order.
//
//	hdf5.Walk(f.Root(), func(path string, obj any, err error) error {
//	    if ds, ok := obj.(*hdf5.Dataset); ok {
//	        fmt.Println(path, ds.Shape())
//	    }
//	    return err
//	})
func Walk(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}
	members, err := g.members()
	if err != nil {
		return err
	}
	for _, m := range members {
		childPath := joinPath(g.Path(), m.name)
		if m.soft {
			if err := fn(childPath, SoftLink{Target: m.target}, nil); err != nil {
				return err
			}
			continue
		}
		obj, err := g.child(m.name, 0)
		if err != nil {
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}
		if child, ok := obj.(*Group); ok {
			if err := Walk(child, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(childPath, obj, nil); err != nil {
			return err
		}
	}
	return nil
}
