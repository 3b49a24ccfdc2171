package cook

import "github.com/go-gl/mathgl/mgl32"

// Material parameter names. Parameters are looked up by name since their
// position in the parameter block differs between engine versions.
const (
	ParmAmbient  = "ogl_amb"
	ParmDiffuse  = "ogl_diff"
	ParmSpecular = "ogl_spec"
	ParmAlpha    = "ogl_alpha"
	ParmTexture  = "ogl_tex1"
)

// Material is one shading node of the cook engine.
type Material struct {
	ID    int            `yaml:"id"`
	Name  string         `yaml:"name"`
	Path  string         `yaml:"path,omitempty"`
	Parms []MaterialParm `yaml:"parms,omitempty"`
}

// MaterialParm is one named entry in a material's parameter block.
type MaterialParm struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values,flow,omitempty"`
	Text   string    `yaml:"text,omitempty"`
}

// Parm looks up a parameter by name.
func (m *Material) Parm(name string) (*MaterialParm, bool) {
	for i := range m.Parms {
		if m.Parms[i].Name == name {
			return &m.Parms[i], true
		}
	}
	return nil, false
}

// Color returns a colour parameter. Missing channels are zero.
func (m *Material) Color(name string) (mgl32.Vec3, bool) {
	p, ok := m.Parm(name)
	if !ok || len(p.Values) == 0 {
		return mgl32.Vec3{}, false
	}
	return vec3(p.Values, 0), true
}

// Transparency returns 1-alpha on every channel.
func (m *Material) Transparency() (mgl32.Vec3, bool) {
	p, ok := m.Parm(ParmAlpha)
	if !ok || len(p.Values) == 0 {
		return mgl32.Vec3{}, false
	}
	t := 1 - float32(p.Values[0])
	return mgl32.Vec3{t, t, t}, true
}

// Texture returns the source texture reference, or "" when the material has
// none.
func (m *Material) Texture() string {
	p, ok := m.Parm(ParmTexture)
	if !ok {
		return ""
	}
	return p.Text
}
