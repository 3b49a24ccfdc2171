package cook

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NoMaterial is the material id meaning "no material assigned".
const NoMaterial = -1

// Result is one cooked state of an asset.
type Result struct {
	Asset      string      `yaml:"asset"`
	Objects    []Object    `yaml:"objects"`
	Instancers []Instancer `yaml:"instancers,omitempty"`
	Materials  []Material  `yaml:"materials,omitempty"`
	Parameters []Parm      `yaml:"parms,omitempty"`
}

// Object is one logical object of the asset.
type Object struct {
	Name      string    `yaml:"name"`
	Visible   *bool     `yaml:"visible,omitempty"`
	Instanced bool      `yaml:"instanced,omitempty"`
	Transform Transform `yaml:"transform,omitempty"`
	Geos      []Geo     `yaml:"geos"`
}

// IsVisible reports the object's visibility flag. Objects are visible unless
// the cook says otherwise.
func (o *Object) IsVisible() bool {
	return o.Visible == nil || *o.Visible
}

// Geo is a geometry container within an object.
type Geo struct {
	Name      string `yaml:"name,omitempty"`
	Display   bool   `yaml:"display,omitempty"`
	Templated bool   `yaml:"templated,omitempty"`
	Parts     []Part `yaml:"parts"`
}

// Part is the atomic unit of cooked geometry.
type Part struct {
	Name        string         `yaml:"name,omitempty"`
	Mesh        *Mesh          `yaml:"mesh,omitempty"`
	Curves      []Curve        `yaml:"curves,omitempty"`
	Particle    *Particle      `yaml:"particle,omitempty"`
	Volume      *Volume        `yaml:"volume,omitempty"`
	Instancer   *PartInstancer `yaml:"instancer,omitempty"`
	MaterialIDs []int          `yaml:"material_ids,flow,omitempty"`
	Groups      []Group        `yaml:"groups,omitempty"`
	Attributes  []Attribute    `yaml:"attributes,omitempty"`
}

// FaceMaterials expands the part's material ids to exactly one id per face.
//
// An empty list means every face is unassigned; a single id applies to every
// face. Any other length must match the face count.
func (p *Part) FaceMaterials(faces int) ([]int, error) {
	out := make([]int, faces)
	switch len(p.MaterialIDs) {
	case 0:
		for i := range out {
			out[i] = NoMaterial
		}
	case 1:
		for i := range out {
			out[i] = p.MaterialIDs[0]
		}
	case faces:
		copy(out, p.MaterialIDs)
	default:
		return nil, fmt.Errorf("part %q: %d material ids for %d faces", p.Name, len(p.MaterialIDs), faces)
	}
	return out, nil
}

// Attribute returns the extra attribute with the given name and owner.
func (p *Part) Attribute(name string, owner Owner) (*Attribute, bool) {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name && p.Attributes[i].Owner == owner {
			return &p.Attributes[i], true
		}
	}
	return nil, false
}

// Mesh is a polygon payload. Points are packed xyz triples; Vertices index
// into points, FaceCounts give the number of vertices per face.
type Mesh struct {
	Points     []float64 `yaml:"points,flow"`
	FaceCounts []int     `yaml:"face_counts,flow"`
	Vertices   []int     `yaml:"vertices,flow"`
	UVs        []float64 `yaml:"uvs,flow,omitempty"`
	Colors     []float64 `yaml:"colors,flow,omitempty"`
	UVSet      string    `yaml:"uv_set,omitempty"`
}

// PointCount returns the number of xyz points.
func (m *Mesh) PointCount() int {
	return len(m.Points) / 3
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.FaceCounts)
}

// Validate checks the mesh arrays are consistent with each other.
func (m *Mesh) Validate() error {
	if len(m.Points)%3 != 0 {
		return fmt.Errorf("points length %d is not a multiple of 3", len(m.Points))
	}
	total := 0
	for i, n := range m.FaceCounts {
		if n < 3 {
			return fmt.Errorf("face %d has %d vertices", i, n)
		}
		total += n
	}
	if total != len(m.Vertices) {
		return fmt.Errorf("face counts sum to %d but %d vertices given", total, len(m.Vertices))
	}
	np := m.PointCount()
	for i, v := range m.Vertices {
		if v < 0 || v >= np {
			return fmt.Errorf("vertex %d references point %d of %d", i, v, np)
		}
	}
	if len(m.UVs) != 0 && len(m.UVs) != 2*len(m.Vertices) {
		return fmt.Errorf("uvs length %d does not match %d vertices", len(m.UVs), len(m.Vertices))
	}
	return nil
}

// Curve is one curve payload entry: packed xyz control points.
type Curve struct {
	Degree   int       `yaml:"degree"`
	Periodic bool      `yaml:"periodic,omitempty"`
	Points   []float64 `yaml:"points,flow"`
}

// Order is degree+1.
func (c *Curve) Order() int {
	return c.Degree + 1
}

// Particle marks a part as a particle system. Per-point data lives in the
// part's point attributes; "P" is required.
type Particle struct {
	Count int `yaml:"count"`
}

// Volume is one named grid of a volume payload.
type Volume struct {
	Name       string    `yaml:"name"`
	Resolution []int     `yaml:"resolution,flow"`
	Data       []float64 `yaml:"data,flow,omitempty"`
}

// SameResolution reports whether two volumes have matching grid dimensions.
func (v *Volume) SameResolution(o *Volume) bool {
	if len(v.Resolution) != len(o.Resolution) {
		return false
	}
	for i := range v.Resolution {
		if v.Resolution[i] != o.Resolution[i] {
			return false
		}
	}
	return true
}

// PartInstancer instances sibling parts of the same geo.
//
// Instances are processed in list order; that order decides which reference
// of a part moves it and which ones add it.
type PartInstancer struct {
	Transforms []Transform   `yaml:"transforms"`
	Instances  []InstanceRef `yaml:"instances"`
}

// InstanceRef places sibling part Part at transform index Transform.
type InstanceRef struct {
	Part      int `yaml:"part"`
	Transform int `yaml:"transform"`
}

// GroupType is the component type of a group.
type GroupType string

const (
	GroupFace  GroupType = "face"
	GroupPoint GroupType = "point"
)

// Group is a named subset of faces or points.
type Group struct {
	Name    string    `yaml:"name"`
	Type    GroupType `yaml:"type"`
	Members []int     `yaml:"members,flow"`
}

// Owner is the domain an extra attribute is attached to.
type Owner string

const (
	OwnerDetail    Owner = "detail"
	OwnerPrimitive Owner = "primitive"
	OwnerPoint     Owner = "point"
	OwnerVertex    Owner = "vertex"
)

// Storage is the element type of an extra attribute.
type Storage string

const (
	StorageFloat  Storage = "float"
	StorageInt    Storage = "int"
	StorageString Storage = "string"
)

// ShadingGroupAttribute is the reserved attribute naming a host shading
// group that overrides material-id assignment.
const ShadingGroupAttribute = "maya_shading_group"

// Attribute is an extra attribute declared on a part.
type Attribute struct {
	Name      string    `yaml:"name"`
	Owner     Owner     `yaml:"owner"`
	Storage   Storage   `yaml:"storage"`
	TupleSize int       `yaml:"tuple_size"`
	Floats    []float64 `yaml:"floats,flow,omitempty"`
	Ints      []int     `yaml:"ints,flow,omitempty"`
	Strings   []string  `yaml:"strings,flow,omitempty"`
}

// Count returns the number of tuples the attribute holds.
func (a *Attribute) Count() int {
	size := a.TupleSize
	if size < 1 {
		size = 1
	}
	switch a.Storage {
	case StorageFloat:
		return len(a.Floats) / size
	case StorageInt:
		return len(a.Ints) / size
	default:
		return len(a.Strings) / size
	}
}

// Instancer is an object-level instancer output.
type Instancer struct {
	Name    string          `yaml:"name"`
	Objects []string        `yaml:"objects,omitempty"`
	Points  []InstancePoint `yaml:"points"`
}

// InstancePoint is one point of an object-level instancer.
type InstancePoint struct {
	Transform Transform `yaml:"transform,omitempty"`
	Instance  string    `yaml:"instance,omitempty"`
	Name      string    `yaml:"name,omitempty"`
}

// Transform is a TRS transform with rotation in degrees applied X, then Y,
// then Z.
type Transform struct {
	Translate []float64 `yaml:"translate,flow,omitempty"`
	Rotate    []float64 `yaml:"rotate,flow,omitempty"`
	Scale     []float64 `yaml:"scale,flow,omitempty"`
}

// T returns the translation.
func (t Transform) T() mgl32.Vec3 {
	return vec3(t.Translate, 0)
}

// R returns the rotation in degrees.
func (t Transform) R() mgl32.Vec3 {
	return vec3(t.Rotate, 0)
}

// S returns the scale, defaulting to identity.
func (t Transform) S() mgl32.Vec3 {
	return vec3(t.Scale, 1)
}

// Matrix composes the transform as T * Rz * Ry * Rx * S.
func (t Transform) Matrix() mgl32.Mat4 {
	tr, r, s := t.T(), t.R(), t.S()
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(r[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(r[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(r[0])))
	return mgl32.Translate3D(tr[0], tr[1], tr[2]).Mul4(rot).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func vec3(v []float64, def float32) mgl32.Vec3 {
	out := mgl32.Vec3{def, def, def}
	for i := 0; i < len(v) && i < 3; i++ {
		out[i] = float32(v[i])
	}
	return out
}
