package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
	"github.com/roach88/cooksync/internal/testutil"
)

func TestInstanceUsage(t *testing.T) {
	u := NewInstanceUsage()
	k := cook.PartKey{Object: 0, Geo: 0, Part: 1}

	assert.Equal(t, Unused, u.State(k))
	assert.Equal(t, Moved, u.Use(k))
	assert.Equal(t, Added, u.Use(k))
	assert.Equal(t, Added, u.State(k))
	assert.Equal(t, Unused, u.State(cook.PartKey{Part: 2}))
	assert.Equal(t, "moved", Moved.String())
}

func scatterCook(instances ...cook.InstanceRef) *cook.Result {
	return singlePartCook(
		cook.Part{Name: "tree", Mesh: testutil.Triangles(1)},
		cook.Part{Name: "scatter", Instancer: &cook.PartInstancer{
			Transforms: make([]cook.Transform, 6),
			Instances:  instances,
		}},
	)
}

func TestPartInstancer_FirstUseMoves(t *testing.T) {
	g, asset := newAssetGraph(t)
	o, res := runSync(t, g, asset, scatterCook(
		cook.InstanceRef{Part: 0, Transform: 2},
		cook.InstanceRef{Part: 0, Transform: 0},
		cook.InstanceRef{Part: 0, Transform: 5},
		cook.InstanceRef{Part: 0, Transform: 0},
	), WithInstancerNode(false))
	assert.Equal(t, 2, res.Parts)

	scatter := mustFind(t, g, "scatter", scene.TypeTransform)
	tree := mustFind(t, g, "tree", scene.TypeTransform)
	xf := func(k int) scene.Handle {
		return mustChild(t, g, scatter, fmt.Sprintf("instance%d", k))
	}
	want := []scene.Handle{xf(2), xf(0), xf(5)}
	assert.Equal(t, want, g.Parents(tree))
	assert.Empty(t, g.Children(xf(1)))
	assert.Len(t, g.Children(scatter), 6)

	require.NoError(t, o.UndoIt())
	_, ok := g.FindByName("tree")
	assert.False(t, ok)
	require.NoError(t, o.RedoIt())
	assert.Equal(t, want, g.Parents(tree))
}

func TestPartInstancer_SharedAcrossInstancers(t *testing.T) {
	c := singlePartCook(
		cook.Part{Name: "tree", Mesh: testutil.Triangles(1)},
		cook.Part{Name: "s1", Instancer: &cook.PartInstancer{
			Transforms: make([]cook.Transform, 1),
			Instances:  []cook.InstanceRef{{Part: 0, Transform: 0}},
		}},
		cook.Part{Name: "s2", Instancer: &cook.PartInstancer{
			Transforms: make([]cook.Transform, 1),
			Instances:  []cook.InstanceRef{{Part: 0, Transform: 0}},
		}},
	)
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, c, WithInstancerNode(false))

	tree := mustFind(t, g, "tree", scene.TypeTransform)
	s1 := mustChild(t, g, mustFind(t, g, "s1", scene.TypeTransform), "instance0")
	s2 := mustChild(t, g, mustFind(t, g, "s2", scene.TypeTransform), "instance0")
	assert.Equal(t, []scene.Handle{s1, s2}, g.Parents(tree))
}

func TestPartInstancer_InstancerNode(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, scatterCook(
		cook.InstanceRef{Part: 0, Transform: 2},
		cook.InstanceRef{Part: 0, Transform: 0},
	), WithInstancerNode(true))

	obj := mustChild(t, g, asset, "obj")
	tree := mustFind(t, g, "tree", scene.TypeTransform)
	scatter := mustFind(t, g, "scatter", scene.TypeTransform)
	inst := mustChild(t, g, scatter, "scatterInstancer")

	src, ok := g.Source(scene.P(inst, "inputHierarchy[0]"))
	require.True(t, ok)
	assert.Equal(t, scene.P(tree, "matrix"), src)
	_, ok = g.Source(scene.P(inst, "inputHierarchy[1]"))
	assert.False(t, ok)

	src, ok = g.Source(scene.P(inst, "inputPoints"))
	require.True(t, ok)
	assert.Equal(t, scene.P(asset, "outputObjects[0].outputGeos[0].outputParts[1].outputPartInstancer"), src)

	v, ok := g.Value(scene.P(tree, "visibility"))
	require.True(t, ok)
	assert.Equal(t, scene.Bool(false), v)
	assert.Equal(t, []scene.Handle{obj}, g.Parents(tree))
}

func TestPartInstancer_AssetOverridesPolicy(t *testing.T) {
	g, asset := newAssetGraph(t)
	m := scene.NewModifier(g)
	m.SetValue(scene.P(asset, "useInstancerNode"), scene.Bool(false))
	require.NoError(t, m.Apply())

	runSync(t, g, asset, scatterCook(cook.InstanceRef{Part: 0, Transform: 1}), WithInstancerNode(true))

	assert.Zero(t, countType(g, scene.TypeInstancer))
	scatter := mustFind(t, g, "scatter", scene.TypeTransform)
	tree := mustFind(t, g, "tree", scene.TypeTransform)
	assert.Equal(t, []scene.Handle{mustChild(t, g, scatter, "instance1")}, g.Parents(tree))
}

func TestPartInstancer_BadReference(t *testing.T) {
	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, scatterCook(cook.InstanceRef{Part: 0, Transform: 9}), WithInstancerNode(false))

	assert.Equal(t, 1, res.Failures)
	assert.Equal(t, 1, res.Parts)
	_, ok := g.FindByName("scatter")
	assert.False(t, ok)
}

func TestPartInstancer_MissingSibling(t *testing.T) {
	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, scatterCook(
		cook.InstanceRef{Part: 7, Transform: 0},
		cook.InstanceRef{Part: 1, Transform: 1},
	), WithInstancerNode(false))

	assert.Zero(t, res.Failures)
	scatter := mustFind(t, g, "scatter", scene.TypeTransform)
	for _, xf := range g.Children(scatter) {
		assert.Empty(t, g.Children(xf), g.Name(xf))
	}
}

func forestCook(points ...cook.InstancePoint) *cook.Result {
	return &cook.Result{
		Asset: "rock",
		Objects: []cook.Object{{
			Name: "pine",
			Geos: []cook.Geo{{Display: true, Parts: []cook.Part{{Name: "needles", Mesh: testutil.Triangles(1)}}}},
		}},
		Instancers: []cook.Instancer{{Name: "forest", Points: points}},
	}
}

func TestInstanceSync_Transforms(t *testing.T) {
	c := forestCook(
		cook.InstancePoint{Instance: "/obj/pine", Transform: cook.Transform{Translate: []float64{5, 0, 0}}},
		cook.InstancePoint{Name: "oak"},
		cook.InstancePoint{Name: "pine"},
	)
	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, c, WithInstancerNode(false))
	assert.Equal(t, 1, res.Instancers)

	forest := mustChild(t, g, asset, "forest")
	pine := mustChild(t, g, asset, "pine")
	i0 := mustChild(t, g, forest, "instance0")
	i2 := mustChild(t, g, forest, "instance2")
	_, ok := g.FindChild(forest, "instance1")
	assert.False(t, ok)
	assert.Equal(t, []scene.Handle{asset, i0, i2}, g.Parents(pine))

	v, ok := g.Value(scene.P(i0, "offsetParentMatrix"))
	require.True(t, ok)
	assert.Equal(t, scene.Matrix(c.Instancers[0].Points[0].Transform.Matrix()), v)
}

func TestInstanceSync_SingleObjectWins(t *testing.T) {
	c := forestCook(cook.InstancePoint{Name: "oak"})
	c.Instancers[0].Objects = []string{"pine"}

	g, asset := newAssetGraph(t)
	runSync(t, g, asset, c, WithInstancerNode(false))

	forest := mustChild(t, g, asset, "forest")
	i0 := mustChild(t, g, forest, "instance0")
	assert.Contains(t, g.Parents(mustChild(t, g, asset, "pine")), i0)
}

func TestInstanceSync_PrefixMatch(t *testing.T) {
	c := forestCook(cook.InstancePoint{Instance: "/obj/pi"})

	g, asset := newAssetGraph(t)
	runSync(t, g, asset, c, WithInstancerNode(false))

	i0 := mustChild(t, g, mustChild(t, g, asset, "forest"), "instance0")
	assert.Contains(t, g.Parents(mustChild(t, g, asset, "pine")), i0)
}

func TestInstanceSync_FirstNodeInDepthFirstOrder(t *testing.T) {
	c := &cook.Result{
		Asset: "rock",
		Objects: []cook.Object{
			testutil.MeshObject("apple", "leaf"),
			testutil.MeshObject("pear", "stem"),
		},
		Instancers: []cook.Instancer{{
			Name:    "orchard",
			Objects: []string{"pear"},
			Points:  []cook.InstancePoint{{Name: "apple"}},
		}},
	}

	g, asset := newAssetGraph(t)
	runSync(t, g, asset, c, WithInstancerNode(false))

	i0 := mustChild(t, g, mustChild(t, g, asset, "orchard"), "instance0")
	assert.Contains(t, g.Parents(mustChild(t, g, asset, "apple")), i0)
	assert.NotContains(t, g.Parents(mustChild(t, g, asset, "pear")), i0)
}

func TestInstanceSync_InstancerNode(t *testing.T) {
	c := forestCook()
	c.Instancers[0].Objects = []string{"pine", "missing"}

	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, c, WithInstancerNode(true))
	assert.Equal(t, 1, res.Instancers)

	forest := mustFind(t, g, "forest", scene.TypeInstancer)
	pine := mustChild(t, g, asset, "pine")
	assert.Equal(t, []scene.Handle{asset}, g.Parents(forest))

	src, ok := g.Source(scene.P(forest, "inputHierarchy[0]"))
	require.True(t, ok)
	assert.Equal(t, scene.P(pine, "matrix"), src)
	_, ok = g.Source(scene.P(forest, "inputHierarchy[1]"))
	assert.False(t, ok)

	src, ok = g.Source(scene.P(forest, "inputPoints"))
	require.True(t, ok)
	assert.Equal(t, scene.P(asset, "outputInstancers[0].instancerData"), src)

	v, ok := g.Value(scene.P(pine, "visibility"))
	require.True(t, ok)
	assert.Equal(t, scene.Bool(false), v)
}

func TestInstanceSync_UndoRedo(t *testing.T) {
	c := forestCook(cook.InstancePoint{Name: "pine"}, cook.InstancePoint{Name: "pine"})

	g, asset := newAssetGraph(t)
	before := scene.Dump(g)
	o, _ := runSync(t, g, asset, c, WithInstancerNode(false))
	after := scene.Dump(g)

	require.NoError(t, o.UndoIt())
	assert.Equal(t, before, scene.Dump(g))
	require.NoError(t, o.RedoIt())
	assert.Equal(t, after, scene.Dump(g))
}
