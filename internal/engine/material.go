package engine

import (
	"fmt"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// MaterialResolver maps cook material ids to host shading groups.
//
// Resolution is idempotent within a pass: the asset's material slots are
// scanned for the id, and an existing slot whose shader and shading group
// still exist is reused. New subgraphs are applied immediately so the next
// scan sees them.
type MaterialResolver struct {
	s        *session
	textures *TextureBaker
}

func newMaterialResolver(s *session, textures *TextureBaker) *MaterialResolver {
	return &MaterialResolver{s: s, textures: textures}
}

// CreateOutputMaterial returns the shading group for a material id.
//
// NoMaterial resolves to the default shading group without consulting the
// cook. When a new subgraph had to be built, the applied MaterialSync is
// returned too; the caller owns it for undo.
func (r *MaterialResolver) CreateOutputMaterial(id int) (scene.Handle, *MaterialSync, error) {
	if id == cook.NoMaterial {
		sg, err := r.defaultGroup()
		return sg, nil, err
	}

	slot, found := r.findSlot(id)
	if found {
		if shader, ok := r.slotShader(slot); ok {
			if sg, ok := r.shaderGroup(shader); ok {
				return sg, nil, nil
			}
		}
	} else {
		slot = len(r.slots())
	}

	mat, err := r.s.cook.Material(id)
	if err != nil {
		e := NewMissingPayloadError(fmt.Sprintf("material %d", id), "material")
		e.Err = err
		return scene.NoHandle, nil, e
	}

	u := newMaterialSync(r.s, r.textures, slot, mat)
	if err := u.Apply(); err != nil {
		return scene.NoHandle, nil, err
	}
	r.s.stats.Materials++
	r.s.log.Debug("material created",
		"material", mat.Name,
		"id", id,
		"slot", slot,
	)
	return u.group, u, nil
}

func (r *MaterialResolver) defaultGroup() (scene.Handle, error) {
	sg, ok := r.s.g.FindByNameAndType(scene.DefaultShadingGroup, scene.TypeShadingEngine)
	if !ok {
		return scene.NoHandle, fmt.Errorf("%s: %w", scene.DefaultShadingGroup, scene.ErrNodeNotFound)
	}
	return sg, nil
}

// slots returns the indices of the asset's material slots. Slots are
// allocated contiguously from zero.
func (r *MaterialResolver) slots() []int {
	var out []int
	for i := 0; ; i++ {
		if _, ok := r.s.g.Value(scene.P(r.s.asset, materialPlug(i, "materialNodeId"))); !ok {
			return out
		}
		out = append(out, i)
	}
}

func (r *MaterialResolver) findSlot(id int) (int, bool) {
	for _, slot := range r.slots() {
		v, _ := r.s.g.Value(scene.P(r.s.asset, materialPlug(slot, "materialNodeId")))
		if n, ok := v.(scene.Int); ok && int(n) == id {
			return slot, true
		}
	}
	return 0, false
}

// slotShader follows the slot's ambient output to the shader it feeds.
func (r *MaterialResolver) slotShader(slot int) (scene.Handle, bool) {
	for _, dst := range r.s.g.Destinations(scene.P(r.s.asset, materialPlug(slot, "ambientColor"))) {
		if n, ok := r.s.g.Node(dst.Node); ok && scene.IsShaderType(n.Type) {
			return dst.Node, true
		}
	}
	return scene.NoHandle, false
}

func (r *MaterialResolver) shaderGroup(shader scene.Handle) (scene.Handle, bool) {
	for _, dst := range r.s.g.Destinations(scene.P(shader, "outColor")) {
		if n, ok := r.s.g.Node(dst.Node); ok && n.Type == scene.TypeShadingEngine {
			return dst.Node, true
		}
	}
	return scene.NoHandle, false
}

// MaterialSync builds one shading subgraph: a shader, its shading group and
// optionally a file texture node, wired to one material slot of the asset.
type MaterialSync struct {
	s        *session
	textures *TextureBaker
	slot     int
	mat      *cook.Material
	mod      *scene.Modifier

	shader scene.Handle
	group  scene.Handle
	file   scene.Handle
}

func newMaterialSync(s *session, textures *TextureBaker, slot int, mat *cook.Material) *MaterialSync {
	return &MaterialSync{
		s:        s,
		textures: textures,
		slot:     slot,
		mat:      mat,
		mod:      scene.NewModifier(s.g),
	}
}

// Name implements Unit.
func (m *MaterialSync) Name() string {
	return fmt.Sprintf("material %d (%s)", m.mat.ID, m.mat.Name)
}

// Group returns the shading group handle.
func (m *MaterialSync) Group() scene.Handle {
	return m.group
}

// Apply implements Unit.
func (m *MaterialSync) Apply() error {
	plug := func(attr string) scene.Plug {
		return scene.P(m.s.asset, materialPlug(m.slot, attr))
	}

	m.mod.SetValue(plug("materialNodeId"), scene.Int(m.mat.ID))
	m.mod.SetValue(plug("materialPath"), scene.String(m.mat.Path))

	name := cook.SanitizeNodeName(m.mat.Name, "material")
	m.shader = m.mod.CreateNode(scene.TypePhong, scene.NoHandle)
	m.mod.RenameNode(m.shader, name)
	m.group = m.mod.CreateNode(scene.TypeShadingEngine, scene.NoHandle)
	m.mod.RenameNode(m.group, name+"SG")
	m.mod.Connect(scene.P(m.shader, "outColor"), scene.P(m.group, "surfaceShader"))

	for _, c := range []struct{ parm, attr string }{
		{cook.ParmAmbient, "ambientColor"},
		{cook.ParmSpecular, "specularColor"},
	} {
		if v, ok := m.mat.Color(c.parm); ok {
			m.mod.SetValue(plug(c.attr), scene.Vector(v))
		}
		m.mod.Connect(plug(c.attr), scene.P(m.shader, c.attr))
	}
	if v, ok := m.mat.Transparency(); ok {
		m.mod.SetValue(plug("transparency"), scene.Vector(v))
	}
	m.mod.Connect(plug("transparency"), scene.P(m.shader, "transparency"))

	texture := ""
	if m.textures != nil {
		texture = m.textures.Resolve(m.s.assetName, m.mat)
	}
	if texture != "" {
		m.file = m.mod.CreateNode(scene.TypeFile, scene.NoHandle)
		m.mod.RenameNode(m.file, name+"File")
		m.mod.SetValue(plug("texturePath"), scene.String(texture))
		m.mod.Connect(plug("texturePath"), scene.P(m.file, "fileTextureName"))
		m.mod.Connect(scene.P(m.file, "outColor"), scene.P(m.shader, "color"))
	} else {
		if v, ok := m.mat.Color(cook.ParmDiffuse); ok {
			m.mod.SetValue(plug("diffuseColor"), scene.Vector(v))
		}
		m.mod.Connect(plug("diffuseColor"), scene.P(m.shader, "color"))
	}

	if err := m.mod.Apply(); err != nil {
		return NewApplyFailedError(m.Name(), err)
	}
	return nil
}

// Unapply implements Unit.
func (m *MaterialSync) Unapply() error {
	return m.mod.Undo()
}

// Reapply implements Unit.
func (m *MaterialSync) Reapply() error {
	return m.mod.Redo()
}
