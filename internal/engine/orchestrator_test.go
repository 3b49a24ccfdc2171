package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
	"github.com/roach88/cooksync/internal/testutil"
)

// newAssetGraph returns a graph holding one asset node named "rock".
func newAssetGraph(t *testing.T) (*scene.Graph, scene.Handle) {
	t.Helper()
	g, asset, err := testutil.NewAssetGraph("rock")
	require.NoError(t, err)
	return g, asset
}

func newTestOrchestrator(g *scene.Graph, c cook.Accessor, asset scene.Handle, opts ...Option) *Orchestrator {
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithRunIDs(NewFixedGenerator("run-1")),
	}
	return New(g, c, asset, append(base, opts...)...)
}

func runSync(t *testing.T, g *scene.Graph, asset scene.Handle, c cook.Accessor, opts ...Option) (*Orchestrator, Result) {
	t.Helper()
	o := newTestOrchestrator(g, c, asset, opts...)
	res, err := o.DoIt()
	require.NoError(t, err)
	return o, res
}

func singlePartCook(parts ...cook.Part) *cook.Result {
	return &cook.Result{
		Asset: "rock",
		Objects: []cook.Object{{
			Name: "obj",
			Geos: []cook.Geo{{Display: true, Parts: parts}},
		}},
	}
}

func stoneMaterial() cook.Material {
	return cook.Material{
		ID:   5,
		Name: "stone",
		Path: "/obj/rock/shop/stone",
		Parms: []cook.MaterialParm{
			{Name: cook.ParmDiffuse, Values: []float64{0.5, 0.4, 0.3}},
		},
	}
}

func twoObjectCook() *cook.Result {
	return &cook.Result{
		Asset: "rock",
		Objects: []cook.Object{
			{
				Name:      "objA",
				Transform: cook.Transform{Translate: []float64{1, 0, 0}},
				Geos: []cook.Geo{{Display: true, Parts: []cook.Part{
					{Name: "box", Mesh: testutil.Triangles(2), MaterialIDs: []int{5}},
				}}},
			},
			{
				Name: "objB",
				Geos: []cook.Geo{{Display: true, Parts: []cook.Part{
					{Name: "plane", Mesh: testutil.Triangles(1), MaterialIDs: []int{cook.NoMaterial}},
				}}},
			},
		},
		Materials: []cook.Material{stoneMaterial()},
	}
}

func countType(g *scene.Graph, typ string) int {
	n := 0
	for _, h := range g.Handles() {
		if node, _ := g.Node(h); node.Type == typ {
			n++
		}
	}
	return n
}

func mustFind(t *testing.T, g *scene.Graph, name, typ string) scene.Handle {
	t.Helper()
	h, ok := g.FindByNameAndType(name, typ)
	require.True(t, ok, "%s %s not found", typ, name)
	return h
}

func mustChild(t *testing.T, g *scene.Graph, parent scene.Handle, name string) scene.Handle {
	t.Helper()
	h, ok := g.FindChild(parent, name)
	require.True(t, ok, "%s has no child %s", g.Name(parent), name)
	return h
}

func boolPtr(b bool) *bool {
	return &b
}

type recordingScheduler struct {
	assets []scene.Handle
}

func (r *recordingScheduler) ScheduleResync(asset scene.Handle) {
	r.assets = append(r.assets, asset)
}

func TestOrchestrator_TwoObjects(t *testing.T) {
	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, twoObjectCook())

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 2, res.Objects)
	assert.Equal(t, 2, res.Parts)
	assert.Equal(t, 1, res.Materials)
	assert.Zero(t, res.Failures)
	assert.False(t, res.NeedsResync)

	require.Len(t, g.Children(asset), 2)
	objA := mustChild(t, g, asset, "objA")
	objB := mustChild(t, g, asset, "objB")
	boxShape := mustChild(t, g, mustChild(t, g, objA, "box"), "boxShape")
	planeShape := mustChild(t, g, mustChild(t, g, objB, "plane"), "planeShape")

	// One subgraph for id 5; -1 goes to the default group.
	assert.Equal(t, 2, countType(g, scene.TypeShadingEngine))
	assert.Equal(t, 1, countType(g, scene.TypePhong))
	stoneSG := mustFind(t, g, "stoneSG", scene.TypeShadingEngine)
	initial := mustFind(t, g, scene.DefaultShadingGroup, scene.TypeShadingEngine)
	assert.Equal(t, []scene.Member{{Node: boxShape, Component: scene.Whole()}}, g.Members(stoneSG))
	assert.Equal(t, []scene.Member{{Node: planeShape, Component: scene.Whole()}}, g.Members(initial))

	v, ok := g.Value(scene.P(asset, "outputObjects[0].translate"))
	require.True(t, ok)
	assert.Equal(t, scene.Vector(mgl32.Vec3{1, 0, 0}), v)
	src, ok := g.Source(scene.P(objA, "translate"))
	require.True(t, ok)
	assert.Equal(t, scene.P(asset, "outputObjects[0].translate"), src)
}

func TestOrchestrator_MeshWindingReversed(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, singlePartCook(cook.Part{Name: "tri", Mesh: testutil.Triangles(2)}))

	shape := mustFind(t, g, "triShape", scene.TypeMesh)
	v, ok := g.Value(scene.P(shape, "faceVertices"))
	require.True(t, ok)
	assert.Equal(t, scene.IntArray{2, 1, 0, 3, 2, 1}, v)

	src, ok := g.Source(scene.P(shape, "inMesh"))
	require.True(t, ok)
	assert.Equal(t, scene.P(asset, "outputObjects[0].outputGeos[0].outputParts[0].outputPartMeshData"), src)
}

func TestOrchestrator_SkipsHiddenObject(t *testing.T) {
	c := twoObjectCook()
	c.Objects[1].Visible = boolPtr(false)

	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, c, WithModes(Modes{Attributes: true, Outputs: true}))

	assert.Equal(t, 1, res.Objects)
	_, ok := g.FindChild(asset, "objB")
	assert.False(t, ok)
	_, ok = g.FindByName("planeShape")
	assert.False(t, ok)
}

func TestOrchestrator_SyncsHiddenObjectWhenRequested(t *testing.T) {
	c := twoObjectCook()
	c.Objects[1].Visible = boolPtr(false)

	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, c)

	assert.Equal(t, 2, res.Objects)
	objB := mustChild(t, g, asset, "objB")
	v, ok := g.Value(scene.P(objB, "visibility"))
	require.True(t, ok)
	assert.Equal(t, scene.Bool(false), v)
}

func TestOrchestrator_SyncsInstancedHiddenObject(t *testing.T) {
	c := twoObjectCook()
	c.Objects[1].Visible = boolPtr(false)
	c.Objects[1].Instanced = true

	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, c, WithModes(Modes{Outputs: true}))

	assert.Equal(t, 2, res.Objects)
	mustChild(t, g, asset, "objB")
}

func TestOrchestrator_UndoRedo(t *testing.T) {
	g, asset := newAssetGraph(t)
	before := scene.Dump(g)
	beforeNames := g.Names()

	o, _ := runSync(t, g, asset, twoObjectCook())
	after := scene.Dump(g)
	require.NotEqual(t, before, after)

	require.NoError(t, o.UndoIt())
	assert.Equal(t, beforeNames, g.Names())
	assert.Equal(t, before, scene.Dump(g))

	require.NoError(t, o.RedoIt())
	assert.Equal(t, after, scene.Dump(g))

	require.NoError(t, o.UndoIt())
	assert.Equal(t, before, scene.Dump(g))
}

func TestOrchestrator_RedoKeepsHandles(t *testing.T) {
	g, asset := newAssetGraph(t)
	o, _ := runSync(t, g, asset, twoObjectCook())
	handles := g.Handles()

	require.NoError(t, o.UndoIt())
	require.NoError(t, o.RedoIt())
	assert.Equal(t, handles, g.Handles())
}

func TestOrchestrator_ResyncIsClean(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, twoObjectCook())
	first := scene.Dump(g)
	count := g.Count()

	o2, res := runSync(t, g, asset, twoObjectCook())
	assert.Equal(t, count, g.Count())
	assert.Equal(t, first, scene.Dump(g))
	assert.Equal(t, 2, countType(g, scene.TypeShadingEngine))
	assert.Equal(t, 1, res.Materials)

	// The material keeps its slot.
	_, ok := g.Value(scene.P(asset, "outputMaterials[1].materialNodeId"))
	assert.False(t, ok)

	// Undoing the resync brings back the first pass's nodes.
	require.NoError(t, o2.UndoIt())
	assert.Equal(t, first, scene.Dump(g))
}

func TestOrchestrator_ResyncDropsStaleOutputs(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, twoObjectCook())

	c := twoObjectCook()
	c.Objects = c.Objects[1:]
	runSync(t, g, asset, c)

	_, ok := g.FindChild(asset, "objA")
	assert.False(t, ok)
	_, ok = g.FindByName("stoneSG")
	assert.False(t, ok)
	assert.Equal(t, 1, countType(g, scene.TypeShadingEngine))
}

func TestOrchestrator_FailedPartDoesNotAbort(t *testing.T) {
	bad := testutil.Triangles(1)
	bad.Vertices[2] = 99

	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, singlePartCook(
		cook.Part{Name: "bad", Mesh: bad},
		cook.Part{Name: "good", Mesh: testutil.Triangles(1)},
	))

	assert.Equal(t, 1, res.Failures)
	assert.Equal(t, 1, res.Parts)
	_, ok := g.FindByName("bad")
	assert.False(t, ok)
	mustFind(t, g, "goodShape", scene.TypeMesh)
}

func TestOrchestrator_EmptyCookSchedulesResync(t *testing.T) {
	sched := &recordingScheduler{}
	g, asset := newAssetGraph(t)
	_, res := runSync(t, g, asset, singlePartCook(cook.Part{Name: "nothing"}), WithResyncScheduler(sched))

	assert.True(t, res.NeedsResync)
	assert.Equal(t, 1, res.Objects)
	assert.Zero(t, res.Parts)
	assert.Equal(t, []scene.Handle{asset}, sched.assets)
}

func TestOrchestrator_AttributesOnlyKeepsOutputs(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, twoObjectCook())
	count := g.Count()

	_, res := runSync(t, g, asset, twoObjectCook(), WithModes(Modes{Attributes: true}))
	assert.Equal(t, count, g.Count())
	assert.Zero(t, res.Objects)
	assert.False(t, res.NeedsResync)
}

func TestOrchestrator_ApplyFailureUnwinds(t *testing.T) {
	// Two parts instancing each other: the second move would make a part
	// its own ancestor, which the host rejects.
	c := singlePartCook(
		cook.Part{Name: "a", Instancer: &cook.PartInstancer{
			Transforms: []cook.Transform{{}},
			Instances:  []cook.InstanceRef{{Part: 1, Transform: 0}},
		}},
		cook.Part{Name: "b", Instancer: &cook.PartInstancer{
			Transforms: []cook.Transform{{}},
			Instances:  []cook.InstanceRef{{Part: 0, Transform: 0}},
		}},
	)
	g, asset := newAssetGraph(t)
	before := scene.Dump(g)

	o := newTestOrchestrator(g, c, asset, WithInstancerNode(false))
	_, err := o.DoIt()
	require.Error(t, err)
	assert.True(t, IsApplyFailure(err))
	assert.ErrorIs(t, err, scene.ErrCycle)
	assert.Equal(t, before, scene.Dump(g))
	assert.Empty(t, o.Units())
}

func TestOrchestrator_DoItOnce(t *testing.T) {
	g, asset := newAssetGraph(t)
	o, _ := runSync(t, g, asset, twoObjectCook())

	_, err := o.DoIt()
	assert.Error(t, err)
}

func TestOrchestrator_MissingAsset(t *testing.T) {
	g := scene.NewGraph()
	o := newTestOrchestrator(g, twoObjectCook(), scene.Handle(42))

	_, err := o.DoIt()
	assert.ErrorIs(t, err, scene.ErrNodeNotFound)
}

func TestOrchestrator_UnitOrder(t *testing.T) {
	c := twoObjectCook()
	c.Instancers = []cook.Instancer{{Name: "forest", Objects: []string{"objA"}}}

	g, asset := newAssetGraph(t)
	o, _ := runSync(t, g, asset, c)

	var names []string
	for _, u := range o.Units() {
		names = append(names, u.Name())
	}
	assert.Equal(t, []string{"attributes", "object objA", "object objB", "instancer forest"}, names)
}
