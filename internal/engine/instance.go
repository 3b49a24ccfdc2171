package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// InstanceSync builds one object-level instancer. It runs after every
// object of the pass exists, so instanced objects can be looked up in the
// scene.
type InstanceSync struct {
	s     *session
	index int
	inst  *cook.Instancer
	mod   *scene.Modifier

	node      scene.Handle
	instances []scene.Handle
}

func newInstanceSync(s *session, index int, inst *cook.Instancer) *InstanceSync {
	return &InstanceSync{
		s:     s,
		index: index,
		inst:  inst,
		mod:   scene.NewModifier(s.g),
	}
}

// Name implements Unit.
func (u *InstanceSync) Name() string {
	return "instancer " + cook.SanitizeNodeName(u.inst.Name, "instancer")
}

// Node returns the instancer node or, under the explicit-transform policy,
// the transform grouping the instances.
func (u *InstanceSync) Node() scene.Handle {
	return u.node
}

// Apply implements Unit.
func (u *InstanceSync) Apply() error {
	name := cook.SanitizeNodeName(u.inst.Name, "instancer")
	if u.s.useInstancerNode {
		u.queueInstancerNode(name)
	} else {
		u.queueTransforms(name)
	}
	if err := u.mod.Apply(); err != nil {
		return NewApplyFailedError(u.Name(), err)
	}
	u.s.stats.Instancers++
	return nil
}

// queueInstancerNode feeds a point instancer from the asset's point stream
// and one hierarchy input per instanced object. Instanced objects are
// hidden; they are only seen through the instancer.
func (u *InstanceSync) queueInstancerNode(name string) {
	u.node = u.mod.CreateNode(scene.TypeInstancer, u.s.asset)
	u.mod.RenameNode(u.node, name)
	u.mod.SetValue(scene.P(u.node, "rotationAngleUnits"), scene.Int(1))
	u.mod.Connect(scene.P(u.s.asset, instancerPlug(u.index, "instancerData")), scene.P(u.node, "inputPoints"))

	k := 0
	for _, objName := range u.inst.Objects {
		target, ok := u.s.g.FindChild(u.s.asset, cook.SanitizeNodeName(objName, cook.FallbackObject))
		if !ok {
			u.s.log.Debug("instanced object not found",
				"instancer", u.inst.Name,
				"object", objName,
			)
			continue
		}
		u.mod.Connect(scene.P(target, "matrix"), scene.P(u.node, indexedPlug("inputHierarchy", k)))
		u.mod.SetValue(scene.P(target, "visibility"), scene.Bool(false))
		k++
	}
}

// queueTransforms creates one transform per point and instances the
// matching node under it. Points without a match are skipped.
func (u *InstanceSync) queueTransforms(name string) {
	u.node = u.mod.CreateNode(scene.TypeTransform, u.s.asset)
	u.mod.RenameNode(u.node, name)

	for i, pt := range u.inst.Points {
		target, ok := u.findTarget(pt)
		if !ok {
			continue
		}
		xf := u.mod.CreateNode(scene.TypeTransform, u.node)
		u.mod.RenameNode(xf, fmt.Sprintf("instance%d", i))
		u.mod.SetValue(scene.P(xf, "offsetParentMatrix"), scene.Matrix(pt.Transform.Matrix()))
		u.mod.AddParent(target, xf)
		u.instances = append(u.instances, xf)
	}
}

// candidates returns the names to search for: the only instanced object,
// the point's instance path basename, the point's name.
func (u *InstanceSync) candidates(pt cook.InstancePoint) []string {
	var out []string
	if len(u.inst.Objects) == 1 {
		out = append(out, u.inst.Objects[0])
	}
	if pt.Instance != "" {
		out = append(out, cook.Basename(pt.Instance))
	}
	if pt.Name != "" {
		out = append(out, pt.Name)
	}
	return out
}

// findTarget returns the first transform in depth-first order under the
// asset whose name starts with any candidate name.
func (u *InstanceSync) findTarget(pt cook.InstancePoint) (scene.Handle, bool) {
	var prefixes []string
	for _, c := range u.candidates(pt) {
		if prefix := cook.SanitizeNodeName(c, ""); prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	if len(prefixes) == 0 {
		return scene.NoHandle, false
	}
	return u.s.finder.FindUnder(u.s.g, u.s.asset, func(n *scene.Node) bool {
		if n.Type != scene.TypeTransform {
			return false
		}
		return slices.ContainsFunc(prefixes, func(p string) bool {
			return strings.HasPrefix(n.Name, p)
		})
	})
}

// Unapply implements Unit.
func (u *InstanceSync) Unapply() error {
	return u.mod.Undo()
}

// Reapply implements Unit.
func (u *InstanceSync) Reapply() error {
	return u.mod.Redo()
}
