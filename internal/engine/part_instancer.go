package engine

import (
	"fmt"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// queueInstancer creates the part's instancer under the first pass. Target
// parts are wired in DoItPost once every sibling exists.
func (p *GeometryPartSync) queueInstancer(pi *cook.PartInstancer, name string) error {
	for i, ref := range pi.Instances {
		if ref.Part < 0 || ref.Transform < 0 || ref.Transform >= len(pi.Transforms) {
			return NewMalformedPayloadError(p.Name(),
				fmt.Errorf("instance %d: part %d at transform %d of %d", i, ref.Part, ref.Transform, len(pi.Transforms)))
		}
	}
	p.hasInstancer = true

	if p.s.useInstancerNode {
		p.instancer = p.mod.CreateNode(scene.TypeInstancer, p.transform)
		p.mod.RenameNode(p.instancer, name+"Instancer")
		p.mod.SetValue(scene.P(p.instancer, "rotationAngleUnits"), scene.Int(1))
		p.mod.Connect(p.outPlug("outputPartInstancer"), scene.P(p.instancer, "inputPoints"))
		return nil
	}

	for k, t := range pi.Transforms {
		xf := p.mod.CreateNode(scene.TypeTransform, p.transform)
		p.mod.RenameNode(xf, fmt.Sprintf("instance%d", k))
		p.mod.SetValue(scene.P(xf, "offsetParentMatrix"), scene.Matrix(t.Matrix()))
		p.instanceXforms = append(p.instanceXforms, xf)
	}
	return nil
}

// DoItPost resolves the part's instance references against its applied
// siblings. With an instancer node, each distinct target's matrix feeds one
// hierarchy input and the target is hidden. With instance transforms, the
// first use of a target anywhere in the pass moves it under its transform
// and every later use adds a parent.
func (p *GeometryPartSync) DoItPost(siblings []*GeometryPartSync, usage *InstanceUsage) error {
	if !p.hasInstancer {
		return nil
	}
	refs := p.part.Instancer.Instances

	if p.instancer != scene.NoHandle {
		inputs := map[int]bool{}
		for _, ref := range refs {
			target, ok := p.sibling(siblings, ref.Part)
			if !ok || inputs[ref.Part] {
				continue
			}
			inputs[ref.Part] = true
			k := len(inputs) - 1
			p.post.Connect(scene.P(target.transform, "matrix"), scene.P(p.instancer, indexedPlug("inputHierarchy", k)))
			p.post.SetValue(scene.P(target.transform, "visibility"), scene.Bool(false))
		}
	} else {
		type placement struct{ part, xf int }
		seen := map[placement]bool{}
		for _, ref := range refs {
			target, ok := p.sibling(siblings, ref.Part)
			if !ok || seen[placement{ref.Part, ref.Transform}] {
				continue
			}
			seen[placement{ref.Part, ref.Transform}] = true
			xf := p.instanceXforms[ref.Transform]
			if usage.Use(target.key) == Moved {
				p.post.Reparent(target.transform, xf)
			} else {
				p.post.AddParent(target.transform, xf)
			}
		}
	}

	if err := p.post.Apply(); err != nil {
		return NewApplyFailedError(p.Name()+" instances", err)
	}
	return nil
}

// sibling returns the applied part at index i. Self references and parts
// that failed are skipped with a warning.
func (p *GeometryPartSync) sibling(siblings []*GeometryPartSync, i int) (*GeometryPartSync, bool) {
	if i >= len(siblings) || siblings[i] == nil || siblings[i] == p {
		p.s.log.Warn("instanced part unavailable",
			"part", p.Name(),
			"target", i,
		)
		return nil, false
	}
	return siblings[i], true
}

// instancerPost is the second-pass step of one part instancer.
type instancerPost struct {
	part     *GeometryPartSync
	siblings []*GeometryPartSync
	usage    *InstanceUsage
}

// Name implements Unit.
func (i *instancerPost) Name() string {
	return i.part.Name() + " instances"
}

// Apply implements Unit.
func (i *instancerPost) Apply() error {
	return i.part.DoItPost(i.siblings, i.usage)
}

// Unapply implements Unit.
func (i *instancerPost) Unapply() error {
	return i.part.post.Undo()
}

// Reapply implements Unit.
func (i *instancerPost) Reapply() error {
	return i.part.post.Redo()
}
