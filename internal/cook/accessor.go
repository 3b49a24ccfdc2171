package cook

import (
	"errors"
	"fmt"
)

// ErrMaterialNotFound is returned when a material id has no entry in the
// cook result.
var ErrMaterialNotFound = errors.New("material not found")

// Accessor is the read-only query surface over an asset's latest cook.
type Accessor interface {
	AssetName() string
	ObjectCount() int
	Object(i int) (*Object, error)
	InstancerCount() int
	Instancer(i int) (*Instancer, error)
	Material(id int) (*Material, error)
	Parms() []Parm
}

var _ Accessor = (*Result)(nil)

// AssetName returns the asset the result was cooked for.
func (r *Result) AssetName() string { return r.Asset }

// ObjectCount returns the number of cooked objects.
func (r *Result) ObjectCount() int { return len(r.Objects) }

// Object returns the object at index i.
func (r *Result) Object(i int) (*Object, error) {
	if i < 0 || i >= len(r.Objects) {
		return nil, fmt.Errorf("object index %d out of range [0,%d)", i, len(r.Objects))
	}
	return &r.Objects[i], nil
}

// InstancerCount returns the number of object-level instancers.
func (r *Result) InstancerCount() int { return len(r.Instancers) }

// Instancer returns the object-level instancer at index i.
func (r *Result) Instancer(i int) (*Instancer, error) {
	if i < 0 || i >= len(r.Instancers) {
		return nil, fmt.Errorf("instancer index %d out of range [0,%d)", i, len(r.Instancers))
	}
	return &r.Instancers[i], nil
}

// Material returns the material with the given id.
func (r *Result) Material(id int) (*Material, error) {
	for i := range r.Materials {
		if r.Materials[i].ID == id {
			return &r.Materials[i], nil
		}
	}
	return nil, fmt.Errorf("material %d: %w", id, ErrMaterialNotFound)
}

// Parms returns the flat parameter list. Never nil.
func (r *Result) Parms() []Parm {
	if r.Parameters == nil {
		return []Parm{}
	}
	return r.Parameters
}
