package scene

import (
	"errors"
	"fmt"
	"slices"
)

// Graph errors.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrNodeExists       = errors.New("node already exists")
	ErrAlreadyConnected = errors.New("destination plug already connected")
	ErrNotConnected     = errors.New("plugs not connected")
	ErrNotASet          = errors.New("node is not a set")
	ErrAttributeExists  = errors.New("attribute already exists")
	ErrAttributeMissing = errors.New("attribute not found")
	ErrEdgeExists       = errors.New("parent edge already exists")
	ErrEdgeMissing      = errors.New("parent edge not found")
	ErrCycle            = errors.New("edge would create a cycle")
)

// Graph is the host scene graph.
//
// Every live node has at least one parent; top-level nodes are parented to
// NoHandle. Child order is insertion order and is part of the graph's
// observable state (dumps, depth-first search).
type Graph struct {
	nodes map[Handle]*Node
	roots []Handle
	conns []Connection
	clock *Clock
}

// NewGraph returns a graph holding the built-in nodes every host scene has:
// the time node, the default shader and the default shading group.
func NewGraph() *Graph {
	g := newGraph(0)
	g.builtin(TypeTime, DefaultTime)
	shader := g.builtin(TypeLambert, DefaultShader)
	sg := g.builtin(TypeShadingEngine, DefaultShadingGroup)
	g.conns = append(g.conns, Connection{Src: P(shader, "outColor"), Dst: P(sg, "surfaceShader")})
	return g
}

func newGraph(clockStart int64) *Graph {
	return &Graph{
		nodes: make(map[Handle]*Node),
		roots: []Handle{},
		conns: []Connection{},
		clock: NewClockAt(clockStart),
	}
}

func (g *Graph) builtin(typ, name string) Handle {
	h := Handle(g.clock.Next())
	g.nodes[h] = &Node{Handle: h, Type: typ, Name: name, Parents: []Handle{NoHandle}, Values: map[string]Value{}}
	g.roots = append(g.roots, h)
	return h
}

// Clock returns the handle allocator.
func (g *Graph) Clock() *Clock {
	return g.clock
}

// Count returns the number of live nodes.
func (g *Graph) Count() int {
	return len(g.nodes)
}

// Node returns the node for h. The returned node must be treated as
// read-only; mutate through a Modifier.
func (g *Graph) Node(h Handle) (*Node, bool) {
	n, ok := g.nodes[h]
	return n, ok
}

// Exists reports whether h is a live node.
func (g *Graph) Exists(h Handle) bool {
	_, ok := g.nodes[h]
	return ok
}

// Name returns the node's name, or "" when it does not exist.
func (g *Graph) Name(h Handle) string {
	if n, ok := g.nodes[h]; ok {
		return n.Name
	}
	return ""
}

// Handles returns every live handle in ascending order.
func (g *Graph) Handles() []Handle {
	out := make([]Handle, 0, len(g.nodes))
	for h := range g.nodes {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Names returns every node name, sorted.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.Name)
	}
	slices.Sort(out)
	return out
}

// Children returns the ordered children of h. Children(NoHandle) returns
// the top-level nodes. Never nil.
func (g *Graph) Children(h Handle) []Handle {
	if h == NoHandle {
		return append([]Handle{}, g.roots...)
	}
	n, ok := g.nodes[h]
	if !ok {
		return []Handle{}
	}
	return append([]Handle{}, n.children...)
}

// Parents returns the ordered parents of h. Never nil.
func (g *Graph) Parents(h Handle) []Handle {
	n, ok := g.nodes[h]
	if !ok {
		return []Handle{}
	}
	return append([]Handle{}, n.Parents...)
}

// FindByName returns the lowest-handle node with the given name.
func (g *Graph) FindByName(name string) (Handle, bool) {
	for _, h := range g.Handles() {
		if g.nodes[h].Name == name {
			return h, true
		}
	}
	return NoHandle, false
}

// FindByNameAndType returns the lowest-handle node with the given name and
// type.
func (g *Graph) FindByNameAndType(name, typ string) (Handle, bool) {
	for _, h := range g.Handles() {
		n := g.nodes[h]
		if n.Name == name && n.Type == typ {
			return h, true
		}
	}
	return NoHandle, false
}

// FindChild returns the first direct child of parent with the given name.
func (g *Graph) FindChild(parent Handle, name string) (Handle, bool) {
	for _, c := range g.Children(parent) {
		if g.nodes[c].Name == name {
			return c, true
		}
	}
	return NoHandle, false
}

// Descendants returns every node below root in depth-first pre-order,
// excluding root. A node with several parents under root appears once per
// path.
func (g *Graph) Descendants(root Handle) []Handle {
	out := []Handle{}
	var walk func(h Handle)
	walk = func(h Handle) {
		for _, c := range g.Children(h) {
			out = append(out, c)
			walk(c)
		}
	}
	walk(root)
	return out
}

// Value returns the value stored on a plug.
func (g *Graph) Value(p Plug) (Value, bool) {
	n, ok := g.nodes[p.Node]
	if !ok {
		return nil, false
	}
	v, ok := n.Values[p.Attr]
	return v, ok
}

// Connections returns every connection in creation order. Never nil.
func (g *Graph) Connections() []Connection {
	return append([]Connection{}, g.conns...)
}

// Source returns the plug feeding dst.
func (g *Graph) Source(dst Plug) (Plug, bool) {
	for _, c := range g.conns {
		if c.Dst == dst {
			return c.Src, true
		}
	}
	return Plug{}, false
}

// Destinations returns every plug fed by src, in creation order. Never nil.
func (g *Graph) Destinations(src Plug) []Plug {
	out := []Plug{}
	for _, c := range g.conns {
		if c.Src == src {
			out = append(out, c.Dst)
		}
	}
	return out
}

// ConnectionsOf returns every connection touching one of the node's plugs.
func (g *Graph) ConnectionsOf(h Handle) []Connection {
	out := []Connection{}
	for _, c := range g.conns {
		if c.Src.Node == h || c.Dst.Node == h {
			out = append(out, c)
		}
	}
	return out
}

// Members returns the members of a set node. Never nil.
func (g *Graph) Members(set Handle) []Member {
	n, ok := g.nodes[set]
	if !ok {
		return []Member{}
	}
	return append([]Member{}, n.Members...)
}

// SetsOf returns every set that has node as a member, in handle order.
func (g *Graph) SetsOf(node Handle) []Handle {
	out := []Handle{}
	for _, h := range g.Handles() {
		for _, m := range g.nodes[h].Members {
			if m.Node == node {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// AttrSpec returns the dynamic attribute (root or nested) with the given
// name.
func (g *Graph) AttrSpec(h Handle, name string) (*AttrSpec, bool) {
	n, ok := g.nodes[h]
	if !ok {
		return nil, false
	}
	for _, a := range n.Attrs {
		if f, ok := a.Find(name); ok {
			return f, true
		}
	}
	return nil, false
}

// PlugName renders a plug as "nodeName.attr".
func (g *Graph) PlugName(p Plug) string {
	return fmt.Sprintf("%s.%s", g.Name(p.Node), p.Attr)
}

func (g *Graph) node(h Handle) (*Node, error) {
	n, ok := g.nodes[h]
	if !ok {
		return nil, fmt.Errorf("#%d: %w", h, ErrNodeNotFound)
	}
	return n, nil
}

// childList returns a pointer to the child slice of h so primitives can edit
// it in place.
func (g *Graph) childList(h Handle) (*[]Handle, error) {
	if h == NoHandle {
		return &g.roots, nil
	}
	n, err := g.node(h)
	if err != nil {
		return nil, err
	}
	return &n.children, nil
}

// isAncestor reports whether a is h or an ancestor of h.
func (g *Graph) isAncestor(a, h Handle) bool {
	if a == h {
		return true
	}
	n, ok := g.nodes[h]
	if !ok {
		return false
	}
	for _, p := range n.Parents {
		if p != NoHandle && g.isAncestor(a, p) {
			return true
		}
	}
	return false
}
