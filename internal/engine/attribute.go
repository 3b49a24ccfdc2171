package engine

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// ParmRoot is the root compound attribute holding the asset's parameters.
const ParmRoot = "houdiniAssetParm"

// Attribute name suffixes.
const (
	multiSizeSuffix = "__multiSize"
	tupleSuffix     = "__tuple"
)

// path parameters are tagged so the host shows a file browser.
const fileCategory = "hapiParmFile"

// ParmAttrName returns the attribute name of a parameter.
func ParmAttrName(parmName string) string {
	return ParmRoot + "_" + cook.SanitizeNodeName(parmName, "parm")
}

// parmDefault is the initial value of one leaf attribute.
type parmDefault struct {
	attr  string
	value scene.Value
}

// parmTree turns the flat parameter list into an attribute tree.
//
// Folders and multiparms become compounds and are dropped when empty;
// folder lists are transparent. Invisible parameters hide their whole
// subtree. Only the first instance of a multiparm's children is built.
// Labels have no attribute.
type parmTree struct {
	byParent map[int][]*cook.Parm
	defaults []parmDefault
}

func buildParmTree(parms []cook.Parm) (*scene.AttrSpec, []parmDefault) {
	t := &parmTree{byParent: map[int][]*cook.Parm{}}
	for i := range parms {
		p := &parms[i]
		t.byParent[p.Parent] = append(t.byParent[p.Parent], p)
	}
	root := &scene.AttrSpec{Name: ParmRoot, Kind: scene.AttrCompound}
	root.Children = t.children(0)
	return root, t.defaults
}

func (t *parmTree) children(parent int) []*scene.AttrSpec {
	var out []*scene.AttrSpec
	for _, p := range t.byParent[parent] {
		if p.Invisible || p.Instance > 1 {
			continue
		}
		out = append(out, t.attrs(p)...)
	}
	return out
}

func (t *parmTree) attrs(p *cook.Parm) []*scene.AttrSpec {
	name := ParmAttrName(p.Name)
	switch p.Type {
	case cook.ParmFolderList:
		return t.children(p.ID)

	case cook.ParmFolder:
		c := &scene.AttrSpec{Name: name, Kind: scene.AttrCompound, Label: p.Label, Children: t.children(p.ID)}
		if len(c.Children) == 0 {
			return nil
		}
		return []*scene.AttrSpec{c}

	case cook.ParmRamp:
		return []*scene.AttrSpec{{Name: name, Kind: scene.AttrRamp, Label: p.Label}}

	case cook.ParmMulti:
		size := &scene.AttrSpec{Name: name + multiSizeSuffix, Kind: scene.AttrInt, Label: p.Label}
		t.addDefault(size.Name, scene.Int(firstInt(p.Default, 0)))
		out := []*scene.AttrSpec{size}
		if children := t.children(p.ID); len(children) > 0 {
			out = append(out, &scene.AttrSpec{Name: name, Kind: scene.AttrCompound, Label: p.Label, Children: children})
		}
		return out

	case cook.ParmSeparator:
		return []*scene.AttrSpec{{Name: name, Kind: scene.AttrGeneric, Label: "Separator", Hidden: true}}

	case cook.ParmLabel:
		return nil
	}

	if len(p.Choices) > 0 && enumCapable(p.Type) {
		return []*scene.AttrSpec{t.enum(p, name)}
	}

	kind, ok := leafKind(p.Type)
	if !ok {
		return nil
	}
	var categories []string
	if p.Type == cook.ParmPath {
		categories = []string{fileCategory}
	}

	if p.Type == cook.ParmColor && p.TupleSize() == 3 {
		t.addDefault(name, scene.Vector(vecDefault(p.Default)))
		return []*scene.AttrSpec{{Name: name, Kind: scene.AttrColor, Label: p.Label}}
	}

	if p.TupleSize() > 1 {
		c := &scene.AttrSpec{Name: name, Kind: scene.AttrCompound, Label: p.Label}
		for i := 0; i < p.TupleSize(); i++ {
			child := fmt.Sprintf("%s%s%d", name, tupleSuffix, i)
			c.Children = append(c.Children, &scene.AttrSpec{
				Name:       child,
				Kind:       kind,
				Label:      fmt.Sprintf("%s %d", p.Label, i),
				Categories: categories,
			})
			t.addLeafDefault(child, p, i)
		}
		return []*scene.AttrSpec{c}
	}

	t.addLeafDefault(name, p, 0)
	return []*scene.AttrSpec{{Name: name, Kind: kind, Label: p.Label, Categories: categories}}
}

// enum builds an enum attribute. Button menus get a leading dummy field
// so no item starts selected.
func (t *parmTree) enum(p *cook.Parm, name string) *scene.AttrSpec {
	var fields []string
	if p.Type == cook.ParmButton {
		fields = append(fields, p.Label)
	}
	fields = append(fields, p.Choices...)

	idx := firstInt(p.Default, 0)
	if p.Type == cook.ParmString || p.Type == cook.ParmPath {
		idx = max(slices.Index(p.Choices, p.DefaultString), 0)
	}
	t.addDefault(name, scene.Int(idx))
	return &scene.AttrSpec{Name: name, Kind: scene.AttrEnum, Label: p.Label, Fields: fields}
}

func (t *parmTree) addDefault(attr string, v scene.Value) {
	t.defaults = append(t.defaults, parmDefault{attr: attr, value: v})
}

func (t *parmTree) addLeafDefault(attr string, p *cook.Parm, i int) {
	switch p.Type {
	case cook.ParmToggle:
		t.addDefault(attr, scene.Bool(component(p.Default, i, 0) != 0))
	case cook.ParmInt, cook.ParmButton:
		t.addDefault(attr, scene.Int(int64(component(p.Default, i, 0))))
	case cook.ParmNode:
		t.addDefault(attr, scene.Int(int64(component(p.Default, i, -1))))
	case cook.ParmFloat, cook.ParmColor:
		t.addDefault(attr, scene.Float(component(p.Default, i, 0)))
	case cook.ParmString, cook.ParmPath:
		t.addDefault(attr, scene.String(p.DefaultString))
	}
}

func enumCapable(typ cook.ParmType) bool {
	switch typ {
	case cook.ParmInt, cook.ParmButton, cook.ParmString, cook.ParmPath:
		return true
	}
	return false
}

func leafKind(typ cook.ParmType) (scene.AttrKind, bool) {
	switch typ {
	case cook.ParmToggle:
		return scene.AttrBool, true
	case cook.ParmInt, cook.ParmButton, cook.ParmNode:
		return scene.AttrInt, true
	case cook.ParmFloat, cook.ParmColor:
		return scene.AttrFloat, true
	case cook.ParmString, cook.ParmPath:
		return scene.AttrString, true
	}
	return "", false
}

func component(values []float64, i int, def float64) float64 {
	if i < len(values) {
		return values[i]
	}
	return def
}

func firstInt(values []float64, def int) int {
	if len(values) > 0 {
		return int(values[0])
	}
	return def
}

func vecDefault(values []float64) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < 3 && i < len(values); i++ {
		v[i] = float32(values[i])
	}
	return v
}

// AttributeSync rebuilds the asset's parameter attributes. Values and
// connections of leaves that survive the rebuild are carried over;
// connections to leaves that no longer exist are dropped with a warning.
type AttributeSync struct {
	s   *session
	mod *scene.Modifier
}

func newAttributeSync(s *session) *AttributeSync {
	return &AttributeSync{s: s, mod: scene.NewModifier(s.g)}
}

// Name implements Unit.
func (a *AttributeSync) Name() string {
	return "attributes"
}

// Apply implements Unit.
func (a *AttributeSync) Apply() error {
	g, asset := a.s.g, a.s.asset

	saved := map[string]scene.Value{}
	var conns []scene.Connection
	if old, ok := g.AttrSpec(asset, ParmRoot); ok {
		names := old.Names()
		for _, leaf := range old.Leaves() {
			if v, ok := g.Value(scene.P(asset, leaf.Name)); ok {
				saved[leaf.Name] = v
			}
		}
		for _, c := range g.ConnectionsOf(asset) {
			if (c.Src.Node == asset && slices.Contains(names, c.Src.Attr)) ||
				(c.Dst.Node == asset && slices.Contains(names, c.Dst.Attr)) {
				conns = append(conns, c)
			}
		}
		a.mod.RemoveAttribute(asset, ParmRoot)
	}

	root, defaults := buildParmTree(a.s.cook.Parms())
	if len(root.Children) > 0 {
		a.mod.AddAttribute(asset, root)
		for _, d := range defaults {
			if _, ok := root.Find(d.attr); ok {
				a.mod.SetValue(scene.P(asset, d.attr), d.value)
			}
		}
		for _, leaf := range root.Leaves() {
			if v, ok := saved[leaf.Name]; ok {
				a.mod.SetValue(scene.P(asset, leaf.Name), v)
			}
		}
	}

	for _, c := range conns {
		p := c.Src
		if c.Dst.Node == asset {
			p = c.Dst
		}
		if _, ok := root.Find(p.Attr); !ok || len(root.Children) == 0 {
			a.s.log.Warn("dropping parameter connection",
				"attribute", p.Attr,
				"src", g.PlugName(c.Src),
				"dst", g.PlugName(c.Dst),
			)
			continue
		}
		a.mod.RunCommand(fmt.Sprintf("connectAttr %s %s", scene.PlugRef(c.Src), scene.PlugRef(c.Dst)))
	}

	if err := a.mod.Apply(); err != nil {
		return NewApplyFailedError(a.Name(), err)
	}
	return nil
}

// Unapply implements Unit.
func (a *AttributeSync) Unapply() error {
	return a.mod.Undo()
}

// Reapply implements Unit.
func (a *AttributeSync) Reapply() error {
	return a.mod.Redo()
}
