package engine

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// reservedShapeAttrs are shape attributes an extra attribute must not
// shadow.
var reservedShapeAttrs = []string{
	"visibility", "intermediateObject", "inMesh", "outMesh", "color",
	"displayColors", "currentColorSet", "currentUVSet", "faceCounts",
	"faceVertices", "count", "cacheArrayData", "currentTime",
}

// particleBuiltins are per-particle attributes every particle shape has.
var particleBuiltins = []string{
	"position", "velocity", "acceleration", "rgbPP", "opacityPP",
	"radiusPP", "finalLifespanPP",
}

// queueGroups puts each group's components in a selection set of the same
// name, creating the set unless one exists. A group whose name belongs to a
// shading group is left to material assignment.
func (p *GeometryPartSync) queueGroups() {
	// Sets created in this part are not in the graph until Apply.
	queued := map[string]scene.Handle{}
	for _, grp := range p.part.Groups {
		if len(grp.Members) == 0 {
			continue
		}
		var target scene.Handle
		var c scene.Component
		switch {
		case grp.Type == cook.GroupFace && p.mesh != scene.NoHandle:
			target, c = p.mesh, scene.Faces(grp.Members)
		case grp.Type == cook.GroupPoint && p.mesh != scene.NoHandle:
			target, c = p.mesh, scene.Points(grp.Members)
		case grp.Type == cook.GroupPoint && p.particle != scene.NoHandle:
			target, c = p.particle, scene.Points(grp.Members)
		default:
			p.s.log.Debug("skipping group",
				"part", p.Name(),
				"group", grp.Name,
				"type", grp.Type,
			)
			continue
		}

		name := cook.SanitizeNodeName(grp.Name, "group")
		if _, ok := p.s.g.FindByNameAndType(name, scene.TypeShadingEngine); ok {
			continue
		}
		set, ok := queued[name]
		if !ok {
			set, ok = p.s.g.FindByNameAndType(name, scene.TypeObjectSet)
		}
		if !ok {
			set = p.mod.CreateNode(scene.TypeObjectSet, scene.NoHandle)
			p.mod.RenameNode(set, name)
		}
		queued[name] = set
		p.mod.AddMember(set, target, c)
	}
}

// extraAttrName returns the host name for an extra attribute. "v" outside
// the detail domain becomes "velocity"; other non-detail names colliding
// with a shape attribute or an earlier extra attribute get the owner as a
// prefix.
func extraAttrName(a *cook.Attribute, particle bool, taken []string) string {
	name := a.Name
	if particle && a.Owner == cook.OwnerPoint {
		name = cook.ToHost(name)
	}
	if a.Owner == cook.OwnerDetail {
		return name
	}
	if name == "v" {
		return "velocity"
	}
	if slices.Contains(reservedShapeAttrs, name) || slices.Contains(taken, name) {
		return fmt.Sprintf("%s_%s", a.Owner, name)
	}
	return name
}

// particleSupported reports whether a particle shape can hold the
// attribute.
func particleSupported(a *cook.Attribute) bool {
	size := max(a.TupleSize, 1)
	switch a.Owner {
	case cook.OwnerDetail:
		switch a.Storage {
		case cook.StorageFloat, cook.StorageInt:
			return size <= 3
		case cook.StorageString:
			return size == 1
		}
	case cook.OwnerPoint:
		return a.Storage == cook.StorageFloat && (size == 1 || size == 3)
	}
	return false
}

// queueExtraAttributes adds the part's extra attributes to target.
// Unsupported combinations are dropped with a warning.
func (p *GeometryPartSync) queueExtraAttributes(target scene.Handle, particle bool) {
	// Detail attributes keep their names, so they are claimed first.
	var taken []string
	for i := range p.part.Attributes {
		if a := &p.part.Attributes[i]; a.Owner == cook.OwnerDetail {
			taken = append(taken, a.Name)
		}
	}
	var added []string
	for i := range p.part.Attributes {
		a := &p.part.Attributes[i]
		if a.Name == cook.ShadingGroupAttribute {
			continue
		}
		if particle && !particleSupported(a) {
			p.s.log.Warn("particle attribute not supported",
				"part", p.Name(),
				"attribute", a.Name,
				"owner", a.Owner,
				"storage", a.Storage,
				"tuple_size", a.TupleSize,
			)
			continue
		}

		name := extraAttrName(a, particle, taken)
		taken = append(taken, name)
		value, kind := attributeValue(a)
		builtin := particle && a.Owner == cook.OwnerPoint && slices.Contains(particleBuiltins, name)
		switch {
		case builtin:
		case slices.Contains(added, name):
			p.s.log.Debug("reusing extra attribute",
				"part", p.Name(),
				"attribute", name,
			)
		default:
			p.mod.AddAttribute(target, &scene.AttrSpec{Name: name, Kind: kind})
			added = append(added, name)
		}
		p.mod.SetValue(scene.P(target, name), value)
	}
}

// attributeValue converts attribute data to a plug value. A single detail
// tuple becomes a scalar or vector; everything else becomes an array.
func attributeValue(a *cook.Attribute) (scene.Value, scene.AttrKind) {
	size := max(a.TupleSize, 1)
	single := a.Owner == cook.OwnerDetail && a.Count() == 1
	switch a.Storage {
	case cook.StorageFloat:
		if single && size == 1 {
			return scene.Float(a.Floats[0]), scene.AttrFloat
		}
		if single && size == 3 {
			return scene.Vector(mgl32.Vec3{float32(a.Floats[0]), float32(a.Floats[1]), float32(a.Floats[2])}), scene.AttrColor
		}
		return scene.FloatArray(slices.Clone(a.Floats)), scene.AttrGeneric
	case cook.StorageInt:
		if single && size == 1 {
			return scene.Int(a.Ints[0]), scene.AttrInt
		}
		return scene.IntArray(slices.Clone(a.Ints)), scene.AttrGeneric
	default:
		if single && size == 1 {
			return scene.String(a.Strings[0]), scene.AttrString
		}
		return scene.StringArray(slices.Clone(a.Strings)), scene.AttrGeneric
	}
}
