package engine

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// ObjectSync builds one cooked object: its transform, one transform per geo
// when several geos are synced, and a child unit per part.
type ObjectSync struct {
	s     *session
	index int
	obj   *cook.Object
	mod   *scene.Modifier

	transform scene.Handle
	children  unitList
	// geoParts holds the part units of each geo indexed by cook part
	// index; nil where the part was skipped or failed.
	geoParts [][]*GeometryPartSync
	applied  bool
}

func newObjectSync(s *session, index int, obj *cook.Object) *ObjectSync {
	return &ObjectSync{
		s:     s,
		index: index,
		obj:   obj,
		mod:   scene.NewModifier(s.g),
	}
}

// Name implements Unit.
func (o *ObjectSync) Name() string {
	return "object " + cook.SanitizeNodeName(o.obj.Name, cook.FallbackObject)
}

// Transform returns the object's transform node.
func (o *ObjectSync) Transform() scene.Handle {
	return o.transform
}

// Parts returns the applied part units of geo gi, indexed by part.
func (o *ObjectSync) Parts(gi int) []*GeometryPartSync {
	if gi < 0 || gi >= len(o.geoParts) {
		return nil
	}
	return o.geoParts[gi]
}

// syncedGeos returns the indices of the geos this pass includes. Templated
// geos are skipped unless requested or they are the display geo.
func (o *ObjectSync) syncedGeos() []int {
	var out []int
	for i := range o.obj.Geos {
		geo := &o.obj.Geos[i]
		if geo.Templated && !geo.Display && !o.s.modes.TemplatedGeos {
			o.s.log.Debug("skipping templated geo",
				"object", o.obj.Name,
				"geo", geo.Name,
			)
			continue
		}
		out = append(out, i)
	}
	return out
}

// Apply implements Unit.
func (o *ObjectSync) Apply() error {
	o.transform = o.mod.CreateNode(scene.TypeTransform, o.s.asset)
	o.mod.RenameNode(o.transform, cook.SanitizeNodeName(o.obj.Name, cook.FallbackObject))

	for _, c := range []struct {
		attr  string
		value mgl32.Vec3
		rest  mgl32.Vec3
	}{
		{"translate", o.obj.Transform.T(), mgl32.Vec3{}},
		{"rotate", o.obj.Transform.R(), mgl32.Vec3{}},
		{"scale", o.obj.Transform.S(), mgl32.Vec3{1, 1, 1}},
	} {
		src := scene.P(o.s.asset, objectPlug(o.index, c.attr))
		if c.value != c.rest {
			o.mod.SetValue(src, scene.Vector(c.value))
		}
		o.mod.Connect(src, scene.P(o.transform, c.attr))
	}
	if !o.obj.IsVisible() {
		o.mod.SetValue(scene.P(o.transform, "visibility"), scene.Bool(false))
	}

	geos := o.syncedGeos()
	parents := make(map[int]scene.Handle, len(geos))
	for _, gi := range geos {
		parent := o.transform
		if len(geos) > 1 {
			parent = o.mod.CreateNode(scene.TypeTransform, o.transform)
			o.mod.RenameNode(parent, cook.SanitizeNodeName(o.obj.Geos[gi].Name, cook.FallbackGeo))
		}
		parents[gi] = parent
	}

	if err := o.mod.Apply(); err != nil {
		return NewApplyFailedError(o.Name(), err)
	}
	o.applied = true
	o.s.stats.Objects++

	o.geoParts = make([][]*GeometryPartSync, len(o.obj.Geos))
	for _, gi := range geos {
		if err := o.syncGeo(gi, parents[gi]); err != nil {
			if uerr := o.Unapply(); uerr != nil {
				err = errors.Join(err, uerr)
			}
			o.applied = false
			o.s.stats.Objects--
			return err
		}
	}
	return nil
}

func (o *ObjectSync) syncGeo(gi int, parent scene.Handle) error {
	geo := &o.obj.Geos[gi]
	parts := make([]*GeometryPartSync, len(geo.Parts))
	var volumes []volumeRef

	for pi := range geo.Parts {
		part := &geo.Parts[pi]
		key := cook.PartKey{Object: o.index, Geo: gi, Part: pi}
		if part.Volume != nil {
			volumes = append(volumes, volumeRef{key: key, part: part})
		}
		if !hasGeometry(part) {
			if part.Volume == nil {
				o.s.log.Debug("skipping empty part",
					"part", partLabel(o.obj, key, part),
				)
			}
			continue
		}
		p := newGeometryPartSync(o.s, o.obj, key, part, parent)
		ok, err := o.runChild(p)
		if err != nil {
			return err
		}
		if ok {
			parts[pi] = p
			o.s.stats.Parts++
		}
	}
	o.geoParts[gi] = parts

	if len(volumes) > 0 {
		f := newFluidSync(o.s, parent, volumes)
		ok, err := o.runChild(f)
		if err != nil {
			return err
		}
		if ok {
			o.s.stats.Parts += f.parts
		}
	}
	return nil
}

// runChild applies a child unit. Payload failures are logged and the child
// is dropped; host apply failures are returned.
func (o *ObjectSync) runChild(u Unit) (bool, error) {
	err := u.Apply()
	if err == nil {
		o.children = append(o.children, u)
		return true, nil
	}
	if IsApplyFailure(err) {
		return false, err
	}
	o.s.stats.Failures++
	o.s.log.Warn("sync unit failed",
		"unit", u.Name(),
		"error", err,
	)
	return false, nil
}

// Unapply implements Unit.
func (o *ObjectSync) Unapply() error {
	if err := o.children.unapply(); err != nil {
		return err
	}
	if err := o.mod.Undo(); err != nil {
		return fmt.Errorf("%s: %w", o.Name(), err)
	}
	return nil
}

// Reapply implements Unit.
func (o *ObjectSync) Reapply() error {
	if err := o.mod.Redo(); err != nil {
		return fmt.Errorf("%s: %w", o.Name(), err)
	}
	return o.children.reapply()
}

func hasGeometry(p *cook.Part) bool {
	return p.Mesh != nil || len(p.Curves) > 0 || p.Particle != nil || p.Instancer != nil
}
