package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

func TestParmAttrName(t *testing.T) {
	assert.Equal(t, "houdiniAssetParm_size", ParmAttrName("size"))
	assert.Equal(t, "houdiniAssetParm_my_parm", ParmAttrName("my parm"))
	assert.Equal(t, "houdiniAssetParm_parm", ParmAttrName(""))
}

func sampleParms() []cook.Parm {
	return []cook.Parm{
		{ID: 1, Name: "main", Label: "Main", Type: cook.ParmFolder},
		{ID: 2, Parent: 1, Name: "size", Label: "Size", Type: cook.ParmFloat, Default: []float64{2}},
		{ID: 3, Parent: 1, Name: "tint", Label: "Tint", Type: cook.ParmColor, Size: 3, Default: []float64{1, 0.5, 0}},
		{ID: 4, Parent: 1, Name: "mode", Label: "Mode", Type: cook.ParmInt, Choices: []string{"fast", "slow"}, Default: []float64{1}},
		{ID: 5, Parent: 1, Name: "secret", Type: cook.ParmFloat, Invisible: true},
		{ID: 6, Name: "actions", Label: "Actions", Type: cook.ParmButton, Choices: []string{"reset", "bake"}},
		{ID: 7, Name: "sep", Type: cook.ParmSeparator},
		{ID: 8, Name: "pts", Label: "Points", Type: cook.ParmMulti, Default: []float64{2}},
		{ID: 9, Parent: 8, Name: "pt1", Type: cook.ParmFloat, Instance: 1},
		{ID: 10, Parent: 8, Name: "pt2", Type: cook.ParmFloat, Instance: 2},
		{ID: 11, Name: "falloff", Type: cook.ParmRamp},
		{ID: 12, Name: "empty", Type: cook.ParmFolder},
		{ID: 13, Parent: 12, Name: "note", Type: cook.ParmLabel},
		{ID: 14, Name: "offset", Type: cook.ParmFloat, Size: 2, Default: []float64{0.5}},
		{ID: 15, Name: "hidden", Type: cook.ParmFolder, Invisible: true},
		{ID: 16, Parent: 15, Name: "inner", Type: cook.ParmFloat},
		{ID: 17, Name: "tabs", Type: cook.ParmFolderList},
		{ID: 18, Parent: 17, Name: "file", Type: cook.ParmPath, DefaultString: "$HIP/rock.bgeo"},
		{ID: 19, Parent: 17, Name: "target", Type: cook.ParmNode},
		{ID: 20, Parent: 17, Name: "enabled", Type: cook.ParmToggle, Default: []float64{1}},
	}
}

func TestBuildParmTree(t *testing.T) {
	root, defaults := buildParmTree(sampleParms())

	assert.Equal(t, []string{
		"houdiniAssetParm",
		"houdiniAssetParm_main",
		"houdiniAssetParm_size",
		"houdiniAssetParm_tint",
		"houdiniAssetParm_mode",
		"houdiniAssetParm_actions",
		"houdiniAssetParm_sep",
		"houdiniAssetParm_pts__multiSize",
		"houdiniAssetParm_pts",
		"houdiniAssetParm_pt1",
		"houdiniAssetParm_falloff",
		"houdiniAssetParm_offset",
		"houdiniAssetParm_offset__tuple0",
		"houdiniAssetParm_offset__tuple1",
		"houdiniAssetParm_file",
		"houdiniAssetParm_target",
		"houdiniAssetParm_enabled",
	}, root.Names())

	attr := func(name string) *scene.AttrSpec {
		a, ok := root.Find(ParmAttrName(name))
		require.True(t, ok, name)
		return a
	}
	assert.Equal(t, scene.AttrCompound, attr("main").Kind)
	assert.Equal(t, "Main", attr("main").Label)
	assert.Equal(t, scene.AttrColor, attr("tint").Kind)
	assert.Equal(t, scene.AttrEnum, attr("mode").Kind)
	assert.Equal(t, []string{"fast", "slow"}, attr("mode").Fields)
	assert.Equal(t, []string{"Actions", "reset", "bake"}, attr("actions").Fields)
	assert.True(t, attr("sep").Hidden)
	assert.Equal(t, "Separator", attr("sep").Label)
	assert.Equal(t, scene.AttrRamp, attr("falloff").Kind)
	assert.Equal(t, scene.AttrCompound, attr("offset").Kind)
	assert.Equal(t, scene.AttrString, attr("file").Kind)
	assert.Equal(t, []string{"hapiParmFile"}, attr("file").Categories)
	assert.Equal(t, scene.AttrInt, attr("target").Kind)
	assert.Equal(t, scene.AttrBool, attr("enabled").Kind)

	got := map[string]scene.Value{}
	for _, d := range defaults {
		got[d.attr] = d.value
	}
	assert.Equal(t, map[string]scene.Value{
		"houdiniAssetParm_size":           scene.Float(2),
		"houdiniAssetParm_tint":           scene.Vector(mgl32.Vec3{1, 0.5, 0}),
		"houdiniAssetParm_mode":           scene.Int(1),
		"houdiniAssetParm_actions":        scene.Int(0),
		"houdiniAssetParm_pts__multiSize": scene.Int(2),
		"houdiniAssetParm_pt1":            scene.Float(0),
		"houdiniAssetParm_offset__tuple0": scene.Float(0.5),
		"houdiniAssetParm_offset__tuple1": scene.Float(0),
		"houdiniAssetParm_file":           scene.String("$HIP/rock.bgeo"),
		"houdiniAssetParm_target":         scene.Int(-1),
		"houdiniAssetParm_enabled":        scene.Bool(true),
	}, got)
}

func TestBuildParmTree_Empty(t *testing.T) {
	root, defaults := buildParmTree([]cook.Parm{
		{ID: 1, Name: "only", Type: cook.ParmLabel},
	})
	assert.Empty(t, root.Children)
	assert.Empty(t, defaults)
}

func TestBuildParmTree_StringEnumDefault(t *testing.T) {
	root, defaults := buildParmTree([]cook.Parm{
		{ID: 1, Name: "shape", Type: cook.ParmString, Choices: []string{"box", "sphere"}, DefaultString: "sphere"},
	})
	a, ok := root.Find("houdiniAssetParm_shape")
	require.True(t, ok)
	assert.Equal(t, scene.AttrEnum, a.Kind)
	require.Len(t, defaults, 1)
	assert.Equal(t, scene.Int(1), defaults[0].value)
}

func parmCook(parms ...cook.Parm) *cook.Result {
	return &cook.Result{Asset: "rock", Parameters: parms}
}

func newDriver(t *testing.T, g *scene.Graph) scene.Handle {
	t.Helper()
	m := scene.NewModifier(g)
	h := m.CreateNode(scene.TypeTransform, scene.NoHandle)
	m.RenameNode(h, "driver")
	require.NoError(t, m.Apply())
	return h
}

func TestAttributeSync_Defaults(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, parmCook(sampleParms()...), WithModes(Modes{Attributes: true}))

	_, ok := g.AttrSpec(asset, ParmRoot)
	require.True(t, ok)
	v, ok := g.Value(scene.P(asset, ParmAttrName("size")))
	require.True(t, ok)
	assert.Equal(t, scene.Float(2), v)
	v, ok = g.Value(scene.P(asset, ParmAttrName("tint")))
	require.True(t, ok)
	assert.Equal(t, scene.Vector(mgl32.Vec3{1, 0.5, 0}), v)
}

func TestAttributeSync_NoParameters(t *testing.T) {
	g, asset := newAssetGraph(t)
	runSync(t, g, asset, parmCook(), WithModes(Modes{Attributes: true}))

	_, ok := g.AttrSpec(asset, ParmRoot)
	assert.False(t, ok)
}

func TestAttributeSync_PreservesValuesAndConnections(t *testing.T) {
	parms := []cook.Parm{
		{ID: 1, Name: "size", Type: cook.ParmFloat, Default: []float64{2}},
		{ID: 2, Name: "seed", Type: cook.ParmInt, Default: []float64{7}},
	}
	g, asset := newAssetGraph(t)
	driver := newDriver(t, g)
	runSync(t, g, asset, parmCook(parms...), WithModes(Modes{Attributes: true}))

	size := scene.P(asset, ParmAttrName("size"))
	seed := scene.P(asset, ParmAttrName("seed"))
	m := scene.NewModifier(g)
	m.SetValue(size, scene.Float(5))
	m.Connect(scene.P(driver, "translateX"), seed)
	require.NoError(t, m.Apply())

	runSync(t, g, asset, parmCook(parms...), WithModes(Modes{Attributes: true}))

	v, ok := g.Value(size)
	require.True(t, ok)
	assert.Equal(t, scene.Float(5), v)
	src, ok := g.Source(seed)
	require.True(t, ok)
	assert.Equal(t, scene.P(driver, "translateX"), src)
}

func TestAttributeSync_DropsRemovedParameter(t *testing.T) {
	g, asset := newAssetGraph(t)
	driver := newDriver(t, g)
	runSync(t, g, asset, parmCook(
		cook.Parm{ID: 1, Name: "size", Type: cook.ParmFloat, Default: []float64{2}},
		cook.Parm{ID: 2, Name: "seed", Type: cook.ParmInt, Default: []float64{7}},
	), WithModes(Modes{Attributes: true}))

	size := scene.P(asset, ParmAttrName("size"))
	seed := scene.P(asset, ParmAttrName("seed"))
	m := scene.NewModifier(g)
	m.SetValue(size, scene.Float(5))
	m.Connect(scene.P(driver, "translateX"), seed)
	require.NoError(t, m.Apply())
	edited := scene.Dump(g)

	o, _ := runSync(t, g, asset, parmCook(
		cook.Parm{ID: 1, Name: "size", Type: cook.ParmFloat, Default: []float64{2}},
		cook.Parm{ID: 3, Name: "scale", Type: cook.ParmFloat, Default: []float64{1}},
	), WithModes(Modes{Attributes: true}))

	_, ok := g.AttrSpec(asset, ParmRoot)
	require.True(t, ok)
	root, _ := g.AttrSpec(asset, ParmRoot)
	_, ok = root.Find(ParmAttrName("seed"))
	assert.False(t, ok)
	_, ok = g.Source(seed)
	assert.False(t, ok)
	assert.Empty(t, g.Destinations(scene.P(driver, "translateX")))

	v, ok := g.Value(size)
	require.True(t, ok)
	assert.Equal(t, scene.Float(5), v)
	v, ok = g.Value(scene.P(asset, ParmAttrName("scale")))
	require.True(t, ok)
	assert.Equal(t, scene.Float(1), v)

	require.NoError(t, o.UndoIt())
	assert.Equal(t, edited, scene.Dump(g))
	src, ok := g.Source(seed)
	require.True(t, ok)
	assert.Equal(t, scene.P(driver, "translateX"), src)
}
