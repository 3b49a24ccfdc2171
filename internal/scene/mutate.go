package scene

import (
	"fmt"
	"slices"
)

// undoFunc reverses one primitive mutation. Undo functions assume strict
// LIFO order: the graph must be in the state the mutation left it in.
type undoFunc func() error

type undoStack []undoFunc

func (u *undoStack) push(f undoFunc) {
	*u = append(*u, f)
}

func (u undoStack) run() error {
	for i := len(u) - 1; i >= 0; i-- {
		if err := u[i](); err != nil {
			return err
		}
	}
	return nil
}

func noop() error { return nil }

func (g *Graph) addNode(h Handle, typ string, parent Handle) (undoFunc, error) {
	if _, ok := g.nodes[h]; ok {
		return nil, fmt.Errorf("#%d: %w", h, ErrNodeExists)
	}
	if parent != NoHandle && !g.Exists(parent) {
		return nil, fmt.Errorf("parent #%d: %w", parent, ErrNodeNotFound)
	}
	g.nodes[h] = &Node{
		Handle: h,
		Type:   typ,
		Name:   fmt.Sprintf("%s%d", typ, h),
		Values: map[string]Value{},
	}
	unlink, err := g.link(parent, h)
	if err != nil {
		delete(g.nodes, h)
		return nil, err
	}
	return func() error {
		if err := unlink(); err != nil {
			return err
		}
		delete(g.nodes, h)
		return nil
	}, nil
}

func (g *Graph) link(parent, child Handle) (undoFunc, error) {
	cn, err := g.node(child)
	if err != nil {
		return nil, err
	}
	list, err := g.childList(parent)
	if err != nil {
		return nil, err
	}
	if slices.Contains(cn.Parents, parent) {
		return nil, fmt.Errorf("#%d under #%d: %w", child, parent, ErrEdgeExists)
	}
	if parent != NoHandle && g.isAncestor(child, parent) {
		return nil, fmt.Errorf("#%d under #%d: %w", child, parent, ErrCycle)
	}
	*list = append(*list, child)
	cn.Parents = append(cn.Parents, parent)
	return func() error {
		_, err := g.unlink(parent, child)
		return err
	}, nil
}

func (g *Graph) unlink(parent, child Handle) (undoFunc, error) {
	cn, err := g.node(child)
	if err != nil {
		return nil, err
	}
	list, err := g.childList(parent)
	if err != nil {
		return nil, err
	}
	ci := slices.Index(cn.Parents, parent)
	pi := slices.Index(*list, child)
	if ci < 0 || pi < 0 {
		return nil, fmt.Errorf("#%d under #%d: %w", child, parent, ErrEdgeMissing)
	}
	cn.Parents = slices.Delete(cn.Parents, ci, ci+1)
	*list = slices.Delete(*list, pi, pi+1)
	return func() error {
		cn, err := g.node(child)
		if err != nil {
			return err
		}
		list, err := g.childList(parent)
		if err != nil {
			return err
		}
		cn.Parents = slices.Insert(cn.Parents, ci, parent)
		*list = slices.Insert(*list, pi, child)
		return nil
	}, nil
}

// reparent moves child from its first parent to parent.
func (g *Graph) reparent(child, parent Handle) (undoFunc, error) {
	cn, err := g.node(child)
	if err != nil {
		return nil, err
	}
	if len(cn.Parents) == 0 {
		return nil, fmt.Errorf("#%d: %w", child, ErrEdgeMissing)
	}
	undoUnlink, err := g.unlink(cn.Parents[0], child)
	if err != nil {
		return nil, err
	}
	undoLink, err := g.link(parent, child)
	if err != nil {
		_ = undoUnlink()
		return nil, err
	}
	return undoStack{undoUnlink, undoLink}.run, nil
}

func (g *Graph) rename(h Handle, name string) (undoFunc, error) {
	n, err := g.node(h)
	if err != nil {
		return nil, err
	}
	old := n.Name
	n.Name = name
	return func() error {
		n, err := g.node(h)
		if err != nil {
			return err
		}
		n.Name = old
		return nil
	}, nil
}

func (g *Graph) setValue(p Plug, v Value) (undoFunc, error) {
	n, err := g.node(p.Node)
	if err != nil {
		return nil, err
	}
	old, had := n.Values[p.Attr]
	n.Values[p.Attr] = v
	return func() error {
		n, err := g.node(p.Node)
		if err != nil {
			return err
		}
		if had {
			n.Values[p.Attr] = old
		} else {
			delete(n.Values, p.Attr)
		}
		return nil
	}, nil
}

func (g *Graph) connect(c Connection) (undoFunc, error) {
	if _, err := g.node(c.Src.Node); err != nil {
		return nil, fmt.Errorf("source %s: %w", c.Src, err)
	}
	if _, err := g.node(c.Dst.Node); err != nil {
		return nil, fmt.Errorf("destination %s: %w", c.Dst, err)
	}
	if src, ok := g.Source(c.Dst); ok {
		return nil, fmt.Errorf("%s <- %s: %w", g.PlugName(c.Dst), g.PlugName(src), ErrAlreadyConnected)
	}
	g.conns = append(g.conns, c)
	return func() error {
		_, err := g.disconnect(c)
		return err
	}, nil
}

func (g *Graph) disconnect(c Connection) (undoFunc, error) {
	idx := slices.Index(g.conns, c)
	if idx < 0 {
		return nil, fmt.Errorf("%s -> %s: %w", c.Src, c.Dst, ErrNotConnected)
	}
	return g.disconnectAt(idx), nil
}

func (g *Graph) disconnectAt(idx int) undoFunc {
	c := g.conns[idx]
	g.conns = slices.Delete(g.conns, idx, idx+1)
	return func() error {
		g.conns = slices.Insert(g.conns, idx, c)
		return nil
	}
}

func (g *Graph) addMember(set Handle, m Member) (undoFunc, error) {
	sn, err := g.node(set)
	if err != nil {
		return nil, err
	}
	if !IsSetType(sn.Type) {
		return nil, fmt.Errorf("%s (%s): %w", sn.Name, sn.Type, ErrNotASet)
	}
	if _, err := g.node(m.Node); err != nil {
		return nil, fmt.Errorf("member: %w", err)
	}
	idx := len(sn.Members)
	sn.Members = append(sn.Members, m)
	return func() error {
		sn, err := g.node(set)
		if err != nil {
			return err
		}
		if idx >= len(sn.Members) {
			return fmt.Errorf("%s: member %d: %w", sn.Name, idx, ErrNodeNotFound)
		}
		sn.Members = slices.Delete(sn.Members, idx, idx+1)
		return nil
	}, nil
}

func (g *Graph) removeMemberAt(set Handle, idx int) undoFunc {
	sn := g.nodes[set]
	m := sn.Members[idx]
	sn.Members = slices.Delete(sn.Members, idx, idx+1)
	return func() error {
		sn, err := g.node(set)
		if err != nil {
			return err
		}
		sn.Members = slices.Insert(sn.Members, idx, m)
		return nil
	}
}

func (g *Graph) addAttr(h Handle, spec *AttrSpec) (undoFunc, error) {
	n, err := g.node(h)
	if err != nil {
		return nil, err
	}
	for _, a := range n.Attrs {
		if a.Name == spec.Name {
			return nil, fmt.Errorf("%s.%s: %w", n.Name, spec.Name, ErrAttributeExists)
		}
	}
	n.Attrs = append(n.Attrs, spec)
	return func() error {
		_, err := g.removeAttr(h, spec.Name)
		return err
	}, nil
}

// removeAttr removes a root attribute together with the values and
// connections of every plug in its tree.
func (g *Graph) removeAttr(h Handle, name string) (undoFunc, error) {
	n, err := g.node(h)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(n.Attrs, func(a *AttrSpec) bool { return a.Name == name })
	if idx < 0 {
		return nil, fmt.Errorf("%s.%s: %w", n.Name, name, ErrAttributeMissing)
	}
	spec := n.Attrs[idx]
	names := spec.Names()

	var undo undoStack
	for i := len(g.conns) - 1; i >= 0; i-- {
		c := g.conns[i]
		if (c.Src.Node == h && slices.Contains(names, c.Src.Attr)) || (c.Dst.Node == h && slices.Contains(names, c.Dst.Attr)) {
			undo.push(g.disconnectAt(i))
		}
	}
	saved := map[string]Value{}
	for _, attr := range names {
		if v, ok := n.Values[attr]; ok {
			saved[attr] = v
			delete(n.Values, attr)
		}
	}
	n.Attrs = slices.Delete(n.Attrs, idx, idx+1)
	undo.push(func() error {
		n, err := g.node(h)
		if err != nil {
			return err
		}
		n.Attrs = slices.Insert(n.Attrs, idx, spec)
		for k, v := range saved {
			n.Values[k] = v
		}
		return nil
	})
	return undo.run, nil
}

// deleteNode removes h and every descendant left without a parent. Deleting
// an absent node is a no-op.
func (g *Graph) deleteNode(h Handle) (undoFunc, error) {
	if !g.Exists(h) {
		return noop, nil
	}
	var undo undoStack
	if err := g.deleteRec(h, &undo); err != nil {
		_ = undo.run()
		return nil, err
	}
	return undo.run, nil
}

func (g *Graph) deleteRec(h Handle, undo *undoStack) error {
	n := g.nodes[h]
	for _, c := range slices.Clone(n.children) {
		u, err := g.unlink(h, c)
		if err != nil {
			return err
		}
		undo.push(u)
		if len(g.nodes[c].Parents) == 0 {
			if err := g.deleteRec(c, undo); err != nil {
				return err
			}
		}
	}
	for i := len(g.conns) - 1; i >= 0; i-- {
		if g.conns[i].Src.Node == h || g.conns[i].Dst.Node == h {
			undo.push(g.disconnectAt(i))
		}
	}
	for _, set := range g.Handles() {
		sn := g.nodes[set]
		for i := len(sn.Members) - 1; i >= 0; i-- {
			if sn.Members[i].Node == h {
				undo.push(g.removeMemberAt(set, i))
			}
		}
	}
	for _, p := range slices.Clone(n.Parents) {
		u, err := g.unlink(p, h)
		if err != nil {
			return err
		}
		undo.push(u)
	}
	delete(g.nodes, h)
	undo.push(func() error {
		g.nodes[h] = n
		return nil
	})
	return nil
}
