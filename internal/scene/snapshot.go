package scene

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const snapshotVersion = 1

type snapshot struct {
	Version     int            `json:"version"`
	Clock       int64          `json:"clock"`
	Roots       []Handle       `json:"roots"`
	Nodes       []snapshotNode `json:"nodes"`
	Connections []Connection   `json:"connections"`
}

type snapshotNode struct {
	Handle   Handle                   `json:"handle"`
	Type     string                   `json:"type"`
	Name     string                   `json:"name"`
	Parents  []Handle                 `json:"parents"`
	Children []Handle                 `json:"children,omitempty"`
	Values   map[string]snapshotValue `json:"values,omitempty"`
	Attrs    []*AttrSpec              `json:"attrs,omitempty"`
	Members  []Member                 `json:"members,omitempty"`
}

type snapshotValue struct {
	Kind ValueKind       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalSnapshot encodes the graph as deterministic JSON: nodes in handle
// order, map keys sorted. Equal graphs produce equal bytes.
func MarshalSnapshot(g *Graph) ([]byte, error) {
	s := snapshot{
		Version:     snapshotVersion,
		Clock:       g.clock.Current(),
		Roots:       g.roots,
		Nodes:       make([]snapshotNode, 0, len(g.nodes)),
		Connections: g.conns,
	}
	for _, h := range g.Handles() {
		n := g.nodes[h]
		sn := snapshotNode{
			Handle:   n.Handle,
			Type:     n.Type,
			Name:     n.Name,
			Parents:  n.Parents,
			Children: n.children,
			Attrs:    n.Attrs,
			Members:  n.Members,
		}
		if len(n.Values) > 0 {
			sn.Values = make(map[string]snapshotValue, len(n.Values))
			for k, v := range n.Values {
				data, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("node %s value %s: %w", n.Name, k, err)
				}
				sn.Values[k] = snapshotValue{Kind: v.Kind(), Data: data}
			}
		}
		s.Nodes = append(s.Nodes, sn)
	}
	return json.Marshal(s)
}

// UnmarshalSnapshot rebuilds a graph from MarshalSnapshot output. The
// handle clock resumes where the snapshot left it.
func UnmarshalSnapshot(data []byte) (*Graph, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}

	g := newGraph(s.Clock)
	for _, sn := range s.Nodes {
		n := &Node{
			Handle:   sn.Handle,
			Type:     sn.Type,
			Name:     sn.Name,
			Parents:  sn.Parents,
			Attrs:    sn.Attrs,
			Members:  sn.Members,
			children: sn.Children,
			Values:   make(map[string]Value, len(sn.Values)),
		}
		for k, sv := range sn.Values {
			v, err := decodeValue(sv)
			if err != nil {
				return nil, fmt.Errorf("node %s value %s: %w", sn.Name, k, err)
			}
			n.Values[k] = v
		}
		g.nodes[n.Handle] = n
	}
	if s.Roots != nil {
		g.roots = s.Roots
	}
	if s.Connections != nil {
		g.conns = s.Connections
	}

	for _, n := range g.nodes {
		for _, p := range n.Parents {
			if p != NoHandle && !g.Exists(p) {
				return nil, fmt.Errorf("node %s: parent #%d: %w", n.Name, p, ErrNodeNotFound)
			}
		}
		for _, c := range n.children {
			if !g.Exists(c) {
				return nil, fmt.Errorf("node %s: child #%d: %w", n.Name, c, ErrNodeNotFound)
			}
		}
	}
	return g, nil
}

func decodeValue(sv snapshotValue) (Value, error) {
	var err error
	switch sv.Kind {
	case KindBool:
		var v bool
		err = json.Unmarshal(sv.Data, &v)
		return Bool(v), err
	case KindInt:
		var v int64
		err = json.Unmarshal(sv.Data, &v)
		return Int(v), err
	case KindFloat:
		var v float64
		err = json.Unmarshal(sv.Data, &v)
		return Float(v), err
	case KindString:
		var v string
		err = json.Unmarshal(sv.Data, &v)
		return String(v), err
	case KindVector:
		var v mgl32.Vec3
		err = json.Unmarshal(sv.Data, &v)
		return Vector(v), err
	case KindMatrix:
		var v mgl32.Mat4
		err = json.Unmarshal(sv.Data, &v)
		return Matrix(v), err
	case KindIntArray:
		var v []int
		err = json.Unmarshal(sv.Data, &v)
		return IntArray(v), err
	case KindFloatArray:
		var v []float64
		err = json.Unmarshal(sv.Data, &v)
		return FloatArray(v), err
	case KindStringArray:
		var v []string
		err = json.Unmarshal(sv.Data, &v)
		return StringArray(v), err
	}
	return nil, fmt.Errorf("unknown value kind %q", sv.Kind)
}
