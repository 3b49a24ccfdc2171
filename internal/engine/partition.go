package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// facePartition splits the faces of a mesh into shading components.
// Override faces are excluded from id-derived grouping, so the three kinds
// of component never overlap and together cover every face.
type facePartition struct {
	// Overrides maps a host shading group name to its faces.
	Overrides     map[string][]int
	OverrideOrder []string
	// ByMaterial maps a material id to its faces. NoMaterial is never a
	// key.
	ByMaterial    map[int][]int
	MaterialOrder []int
	// Unassigned holds faces with NoMaterial and no override.
	Unassigned []int
}

// partitionFaces groups faces by override name first, then by material id.
// overrides is either nil, a single name applying to every face, or one
// name per face; an empty name does not cover its face.
func partitionFaces(ids []int, overrides []string) facePartition {
	fp := facePartition{
		Overrides:  map[string][]int{},
		ByMaterial: map[int][]int{},
	}
	for face, id := range ids {
		name := ""
		switch len(overrides) {
		case 0:
		case 1:
			name = overrides[0]
		default:
			name = overrides[face]
		}
		switch {
		case name != "":
			if _, ok := fp.Overrides[name]; !ok {
				fp.OverrideOrder = append(fp.OverrideOrder, name)
			}
			fp.Overrides[name] = append(fp.Overrides[name], face)
		case id == cook.NoMaterial:
			fp.Unassigned = append(fp.Unassigned, face)
		default:
			if _, ok := fp.ByMaterial[id]; !ok {
				fp.MaterialOrder = append(fp.MaterialOrder, id)
			}
			fp.ByMaterial[id] = append(fp.ByMaterial[id], face)
		}
	}
	return fp
}

// shadingOverrides reads the reserved shading group attribute. A detail
// attribute applies to the whole part; a primitive attribute must have one
// entry per face.
func (p *GeometryPartSync) shadingOverrides(faces int) []string {
	if a, ok := p.part.Attribute(cook.ShadingGroupAttribute, cook.OwnerDetail); ok {
		if a.Storage == cook.StorageString && len(a.Strings) > 0 {
			return a.Strings[:1]
		}
	}
	if a, ok := p.part.Attribute(cook.ShadingGroupAttribute, cook.OwnerPrimitive); ok {
		if a.Storage == cook.StorageString && len(a.Strings) == faces {
			return a.Strings
		}
		p.s.log.Warn("ignoring shading group override",
			"part", p.Name(),
			"faces", faces,
			"values", len(a.Strings),
		)
	}
	return nil
}

// queueMaterials assigns every face of the mesh to exactly one shading
// group. Overrides naming a missing shading group and ids whose material
// cannot be built fall back to the default shading group.
func (p *GeometryPartSync) queueMaterials(faces int) error {
	ids, err := p.part.FaceMaterials(faces)
	if err != nil {
		return NewMalformedPayloadError(p.Name(), err)
	}
	fp := partitionFaces(ids, p.shadingOverrides(faces))

	var fallback []int
	type assignment struct {
		group scene.Handle
		faces []int
	}
	var assignments []assignment

	for _, name := range fp.OverrideOrder {
		sg, ok := p.s.g.FindByNameAndType(name, scene.TypeShadingEngine)
		if !ok {
			p.s.log.Warn("shading group override not found",
				"part", p.Name(),
				"shading_group", name,
			)
			fallback = append(fallback, fp.Overrides[name]...)
			continue
		}
		assignments = append(assignments, assignment{sg, fp.Overrides[name]})
	}

	for _, id := range fp.MaterialOrder {
		sg, created, err := p.s.materials.CreateOutputMaterial(id)
		if err != nil {
			if IsApplyFailure(err) {
				return err
			}
			p.s.log.Warn("material unavailable",
				"part", p.Name(),
				"material", id,
				"error", err,
			)
			fallback = append(fallback, fp.ByMaterial[id]...)
			continue
		}
		if created != nil {
			p.materials = append(p.materials, created)
		}
		assignments = append(assignments, assignment{sg, fp.ByMaterial[id]})
	}

	unassigned := append(slices.Clone(fp.Unassigned), fallback...)
	if len(unassigned) > 0 {
		sg, err := p.s.materials.defaultGroup()
		if err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
		slices.Sort(unassigned)
		assignments = append(assignments, assignment{sg, unassigned})
	}

	for _, a := range assignments {
		c := scene.Faces(a.faces)
		if len(a.faces) == faces {
			c = scene.Whole()
		}
		p.mod.AddMember(a.group, p.mesh, c)
	}
	return nil
}
