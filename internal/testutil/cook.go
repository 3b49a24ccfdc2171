package testutil

import "github.com/roach88/cooksync/internal/cook"

// Triangles returns a valid mesh holding a strip of n triangles.
func Triangles(n int) *cook.Mesh {
	m := &cook.Mesh{}
	for i := 0; i < n+2; i++ {
		m.Points = append(m.Points, float64(i), float64(i%2), 0)
	}
	for i := 0; i < n; i++ {
		m.FaceCounts = append(m.FaceCounts, 3)
		m.Vertices = append(m.Vertices, i, i+1, i+2)
	}
	return m
}

// MeshObject returns a visible object with one display geo holding one
// mesh part per name, each a single triangle without material.
func MeshObject(name string, parts ...string) cook.Object {
	geo := cook.Geo{Display: true, Parts: []cook.Part{}}
	for _, p := range parts {
		geo.Parts = append(geo.Parts, cook.Part{
			Name:        p,
			Mesh:        Triangles(1),
			MaterialIDs: []int{cook.NoMaterial},
		})
	}
	return cook.Object{Name: name, Geos: []cook.Geo{geo}}
}
