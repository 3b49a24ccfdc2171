package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// curveTypeChoices are the type choices of the cook engine's curve
// parameter. Synced curves always select "nurbs".
var curveTypeChoices = []string{"polygon", "nurbs", "bezier"}

// GeometryPartSync builds one part under its object's (or geo's)
// transform: a part transform, one shape per payload kind, material
// assignment, groups and extra attributes.
//
// Materials the part had to create are separate units owned by the part:
// they are applied before the part's own buffer and reversed after it.
type GeometryPartSync struct {
	s      *session
	obj    *cook.Object
	key    cook.PartKey
	part   *cook.Part
	parent scene.Handle
	mod    *scene.Modifier
	// post holds the instancer second-pass mutations.
	post *scene.Modifier

	materials unitList

	transform scene.Handle
	mesh      scene.Handle
	particle  scene.Handle
	curves    []scene.Handle

	hasInstancer   bool
	instancer      scene.Handle
	instanceXforms []scene.Handle
}

func newGeometryPartSync(s *session, obj *cook.Object, key cook.PartKey, part *cook.Part, parent scene.Handle) *GeometryPartSync {
	return &GeometryPartSync{
		s:      s,
		obj:    obj,
		key:    key,
		part:   part,
		parent: parent,
		mod:    scene.NewModifier(s.g),
		post:   scene.NewModifier(s.g),
	}
}

// Name implements Unit.
func (p *GeometryPartSync) Name() string {
	return "part " + partLabel(p.obj, p.key, p.part)
}

// Key returns the part's position in the cook.
func (p *GeometryPartSync) Key() cook.PartKey {
	return p.key
}

// Transform returns the part transform node.
func (p *GeometryPartSync) Transform() scene.Handle {
	return p.transform
}

// Mesh returns the mesh shape, or NoHandle when the part has no mesh.
func (p *GeometryPartSync) Mesh() scene.Handle {
	return p.mesh
}

// InstanceTransforms returns the per-instance transforms created under the
// explicit-transform policy.
func (p *GeometryPartSync) InstanceTransforms() []scene.Handle {
	return slices.Clone(p.instanceXforms)
}

// Apply implements Unit.
func (p *GeometryPartSync) Apply() error {
	name := cook.SanitizeNodeName(p.part.Name, cook.FallbackPart)
	p.transform = p.mod.CreateNode(scene.TypeTransform, p.parent)
	p.mod.RenameNode(p.transform, name)

	if err := p.queuePayloads(name); err != nil {
		return p.fail(err)
	}
	p.queueGroups()
	if target := p.attributeTarget(); target != scene.NoHandle {
		p.queueExtraAttributes(target, target == p.particle)
	}

	if err := p.mod.Apply(); err != nil {
		return p.fail(NewApplyFailedError(p.Name(), err))
	}
	return nil
}

// fail reverses the materials this part created before returning err.
func (p *GeometryPartSync) fail(err error) error {
	if uerr := p.materials.unapply(); uerr != nil {
		err = errors.Join(err, uerr)
	}
	p.materials = nil
	return err
}

// queuePayloads dispatches on payload kind. Volumes are built by the
// object's fluid unit.
func (p *GeometryPartSync) queuePayloads(name string) error {
	for _, pl := range p.part.Payloads() {
		var err error
		switch v := pl.(type) {
		case cook.MeshPayload:
			err = p.queueMesh(v.Mesh, name)
		case cook.CurvePayload:
			err = p.queueCurves(v.Curves)
		case cook.ParticlePayload:
			err = p.queueParticle(v.Particle, name)
		case cook.InstancerPayload:
			err = p.queueInstancer(v.Instancer, name)
		case cook.VolumePayload:
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GeometryPartSync) outPlug(attr string) scene.Plug {
	return scene.P(p.s.asset, partPlug(p.key, attr))
}

// queueMesh creates the mesh shape. Display settings are copied as values;
// the mesh data stays a live connection. Winding is reversed to the host's
// front-face convention.
func (p *GeometryPartSync) queueMesh(m *cook.Mesh, name string) error {
	if err := m.Validate(); err != nil {
		return NewMalformedPayloadError(p.Name(), err)
	}

	p.mesh = p.mod.CreateNode(scene.TypeMesh, p.transform)
	p.mod.RenameNode(p.mesh, name+"Shape")
	if len(m.Colors) > 0 {
		p.mod.SetValue(scene.P(p.mesh, "displayColors"), scene.Bool(true))
		p.mod.SetValue(scene.P(p.mesh, "currentColorSet"), scene.String("Cd"))
	}
	if len(m.UVs) > 0 {
		uvSet := m.UVSet
		if uvSet == "" {
			uvSet = "map1"
		}
		p.mod.SetValue(scene.P(p.mesh, "currentUVSet"), scene.String(uvSet))
	}
	p.mod.SetValue(scene.P(p.mesh, "faceCounts"), scene.IntArray(m.FaceCounts))
	p.mod.SetValue(scene.P(p.mesh, "faceVertices"), scene.IntArray(cook.ReverseWinding(m.FaceCounts, m.Vertices)))
	p.mod.Connect(p.outPlug("outputPartMeshData"), scene.P(p.mesh, "inMesh"))

	return p.queueMaterials(m.FaceCount())
}

// queueCurves creates one curve transform and shape per curve.
func (p *GeometryPartSync) queueCurves(curves []cook.Curve) error {
	nurbs := slices.Index(curveTypeChoices, "nurbs")
	for i := range curves {
		c := &curves[i]
		if len(c.Points) == 0 || len(c.Points)%3 != 0 {
			return NewMalformedPayloadError(p.Name(),
				fmt.Errorf("curve %d: %d coordinates is not a list of xyz points", i, len(c.Points)))
		}
		if c.Degree < 1 {
			return NewMalformedPayloadError(p.Name(), fmt.Errorf("curve %d: degree %d", i, c.Degree))
		}

		xf := p.mod.CreateNode(scene.TypeTransform, p.transform)
		p.mod.RenameNode(xf, fmt.Sprintf("curve%d", i+1))
		shape := p.mod.CreateNode(scene.TypeNurbsCurve, xf)
		p.mod.RenameNode(shape, fmt.Sprintf("curveShape%d", i+1))
		p.mod.SetValue(scene.P(shape, "curveType"), scene.Int(nurbs))
		p.mod.SetValue(scene.P(shape, "order"), scene.Int(c.Order()))
		p.mod.SetValue(scene.P(shape, "periodic"), scene.Bool(c.Periodic))
		p.mod.SetValue(scene.P(shape, "coords"), scene.String(c.CVString()))
		p.mod.Connect(p.outPlug(indexedPlug("outputPartCurves", i)), scene.P(shape, "create"))
		p.curves = append(p.curves, shape)
	}
	return nil
}

// queueParticle creates the particle shape and wires it to the cache
// stream. Per-particle attributes are added by queueExtraAttributes.
func (p *GeometryPartSync) queueParticle(pt *cook.Particle, name string) error {
	if _, ok := p.part.Attribute("P", cook.OwnerPoint); !ok {
		return NewMissingPayloadError(p.Name(), "particle position attribute P")
	}

	p.particle = p.mod.CreateNode(scene.TypeParticle, p.transform)
	p.mod.RenameNode(p.particle, name+"Shape")
	p.mod.SetValue(scene.P(p.particle, "count"), scene.Int(pt.Count))
	p.mod.SetValue(scene.P(p.particle, "playFromCache"), scene.Bool(true))
	p.mod.Connect(p.outPlug("outputPartParticle"), scene.P(p.particle, "cacheArrayData"))
	if t, ok := p.s.g.FindByNameAndType(scene.DefaultTime, scene.TypeTime); ok {
		p.mod.Connect(scene.P(t, "outTime"), scene.P(p.particle, "currentTime"))
	}
	return nil
}

// attributeTarget is the shape extra attributes are added to.
func (p *GeometryPartSync) attributeTarget() scene.Handle {
	if p.mesh != scene.NoHandle {
		return p.mesh
	}
	return p.particle
}

// Unapply implements Unit.
func (p *GeometryPartSync) Unapply() error {
	if err := p.mod.Undo(); err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	return p.materials.unapply()
}

// Reapply implements Unit.
func (p *GeometryPartSync) Reapply() error {
	if err := p.materials.reapply(); err != nil {
		return err
	}
	if err := p.mod.Redo(); err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	return nil
}
