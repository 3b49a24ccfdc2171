package scene

import "fmt"

// Handle addresses a node. NoHandle is the world root.
type Handle int64

// NoHandle is the implicit world root every top-level node is parented to.
const NoHandle Handle = 0

// Node types the sync engine creates or relies on.
const (
	TypeAsset         = "houdiniAsset"
	TypeTransform     = "transform"
	TypeMesh          = "mesh"
	TypeNurbsCurve    = "nurbsCurve"
	TypeParticle      = "nParticle"
	TypeInstancer     = "instancer"
	TypeFluidShape    = "fluidShape"
	TypeGridConvert   = "houdiniFluidGridConvert"
	TypePhong         = "phong"
	TypeLambert       = "lambert"
	TypeFile          = "file"
	TypeShadingEngine = "shadingEngine"
	TypeObjectSet     = "objectSet"
	TypeTime          = "time"
)

// Built-in node names present in every graph.
const (
	DefaultShadingGroup = "initialShadingGroup"
	DefaultShader       = "lambert1"
	DefaultTime         = "time1"
)

// IsSetType reports whether nodes of the type hold members.
func IsSetType(typ string) bool {
	return typ == TypeShadingEngine || typ == TypeObjectSet
}

// IsShaderType reports whether nodes of the type are surface shaders.
func IsShaderType(typ string) bool {
	return typ == TypePhong || typ == TypeLambert
}

// Node is one host scene node.
type Node struct {
	Handle   Handle
	Type     string
	Name     string
	Parents  []Handle
	Values   map[string]Value
	Attrs    []*AttrSpec
	Members  []Member
	children []Handle
}

func (n *Node) clone() *Node {
	c := &Node{
		Handle:   n.Handle,
		Type:     n.Type,
		Name:     n.Name,
		Parents:  append([]Handle(nil), n.Parents...),
		Values:   make(map[string]Value, len(n.Values)),
		Attrs:    append([]*AttrSpec(nil), n.Attrs...),
		Members:  append([]Member(nil), n.Members...),
		children: append([]Handle(nil), n.children...),
	}
	for k, v := range n.Values {
		c.Values[k] = v
	}
	return c
}

// Plug addresses one attribute of one node.
type Plug struct {
	Node Handle `json:"node"`
	Attr string `json:"attr"`
}

// P builds a plug.
func P(node Handle, attr string) Plug {
	return Plug{Node: node, Attr: attr}
}

func (p Plug) String() string {
	return fmt.Sprintf("#%d.%s", p.Node, p.Attr)
}

// Connection is a directed plug-to-plug link.
type Connection struct {
	Src Plug `json:"src"`
	Dst Plug `json:"dst"`
}

// ComponentKind is the kind of a set member component.
type ComponentKind string

const (
	ComponentWhole ComponentKind = "whole"
	ComponentFace  ComponentKind = "face"
	ComponentPoint ComponentKind = "point"
)

// Component selects a whole node or a list of its faces or points.
type Component struct {
	Kind    ComponentKind `json:"kind"`
	Indices []int         `json:"indices,omitempty"`
}

// Whole selects the entire node.
func Whole() Component {
	return Component{Kind: ComponentWhole}
}

// Faces selects the given face indices.
func Faces(indices []int) Component {
	return Component{Kind: ComponentFace, Indices: indices}
}

// Points selects the given point indices.
func Points(indices []int) Component {
	return Component{Kind: ComponentPoint, Indices: indices}
}

// Member is one entry of a set.
type Member struct {
	Node      Handle    `json:"node"`
	Component Component `json:"component"`
}

// AttrKind is the type of a dynamic attribute.
type AttrKind string

const (
	AttrCompound AttrKind = "compound"
	AttrBool     AttrKind = "bool"
	AttrInt      AttrKind = "int"
	AttrFloat    AttrKind = "float"
	AttrColor    AttrKind = "color"
	AttrString   AttrKind = "string"
	AttrEnum     AttrKind = "enum"
	AttrGeneric  AttrKind = "generic"
	AttrRamp     AttrKind = "ramp"
)

// AttrSpec describes a dynamic attribute and, for compounds, its children.
type AttrSpec struct {
	Name       string      `json:"name"`
	Kind       AttrKind    `json:"kind"`
	Label      string      `json:"label,omitempty"`
	Hidden     bool        `json:"hidden,omitempty"`
	Fields     []string    `json:"fields,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Children   []*AttrSpec `json:"children,omitempty"`
}

// Names returns the attribute's own name followed by every descendant's
// name, depth first.
func (a *AttrSpec) Names() []string {
	out := []string{a.Name}
	for _, c := range a.Children {
		out = append(out, c.Names()...)
	}
	return out
}

// Leaves returns the descendants that hold values, depth first.
func (a *AttrSpec) Leaves() []*AttrSpec {
	if len(a.Children) == 0 {
		if a.Kind == AttrCompound {
			return nil
		}
		return []*AttrSpec{a}
	}
	var out []*AttrSpec
	for _, c := range a.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Find returns the descendant (or self) with the given name.
func (a *AttrSpec) Find(name string) (*AttrSpec, bool) {
	if a.Name == name {
		return a, true
	}
	for _, c := range a.Children {
		if f, ok := c.Find(name); ok {
			return f, true
		}
	}
	return nil, false
}
