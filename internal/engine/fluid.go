package engine

import (
	"fmt"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

type volumeRef struct {
	key  cook.PartKey
	part *cook.Part
}

// fluidInputs maps scalar grid names to the fluid shape plug they feed and
// the plug selecting that channel's content method.
var fluidInputs = map[string]struct{ plug, method string }{
	"density":     {"inDensity", "densityMethod"},
	"temperature": {"inTemperature", "temperatureMethod"},
	"fuel":        {"inReaction", "fuelMethod"},
}

var velocityGrids = []struct{ name, plug string }{
	{"vel.x", "inGridX"},
	{"vel.y", "inGridY"},
	{"vel.z", "inGridZ"},
}

// contentMethodGrid is the fluid content method fed by an input grid.
const contentMethodGrid = 2

// fluidSync builds one fluid container from the volume parts of a geo.
// The first density, temperature or fuel grid sets the resolution; grids
// of another resolution are skipped, as are repeats of a grid name.
type fluidSync struct {
	s       *session
	parent  scene.Handle
	volumes []volumeRef
	mod     *scene.Modifier
	parts   int
}

func newFluidSync(s *session, parent scene.Handle, volumes []volumeRef) *fluidSync {
	return &fluidSync{
		s:       s,
		parent:  parent,
		volumes: volumes,
		mod:     scene.NewModifier(s.g),
	}
}

// Name implements Unit.
func (f *fluidSync) Name() string {
	return "fluid " + f.s.g.Name(f.parent)
}

func (f *fluidSync) reference() *cook.Volume {
	for _, v := range f.volumes {
		if _, ok := fluidInputs[v.part.Volume.Name]; ok {
			return v.part.Volume
		}
	}
	return nil
}

// Apply implements Unit.
func (f *fluidSync) Apply() error {
	ref := f.reference()
	if ref == nil {
		return &SyncError{
			Code:    ErrCodeUnsupported,
			Message: "volume parts carry no density, temperature or fuel grid",
			Unit:    f.Name(),
		}
	}

	xf := f.mod.CreateNode(scene.TypeTransform, f.parent)
	f.mod.RenameNode(xf, "fluid")
	shape := f.mod.CreateNode(scene.TypeFluidShape, xf)
	f.mod.RenameNode(shape, "fluidShape")
	f.mod.SetValue(scene.P(shape, "resolution"), scene.IntArray(ref.Resolution))

	f.parts = 0
	velocity := map[string]scene.Plug{}
	seen := map[string]bool{}
	for _, v := range f.volumes {
		vol := v.part.Volume
		if seen[vol.Name] {
			f.s.log.Warn("duplicate volume grid",
				"volume", vol.Name,
				"part", v.part.Name,
			)
			continue
		}
		if !vol.SameResolution(ref) {
			f.s.log.Warn("volume resolution mismatch",
				"volume", vol.Name,
				"want", fmt.Sprint(ref.Resolution),
				"got", fmt.Sprint(vol.Resolution),
			)
			continue
		}
		seen[vol.Name] = true
		grid := scene.P(f.s.asset, partPlug(v.key, "outputPartVolumeGrid"))
		if in, ok := fluidInputs[vol.Name]; ok {
			f.mod.Connect(grid, scene.P(shape, in.plug))
			f.mod.SetValue(scene.P(shape, in.method), scene.Int(contentMethodGrid))
			f.parts++
			continue
		}
		switch vol.Name {
		case "vel.x", "vel.y", "vel.z":
			velocity[vol.Name] = grid
		default:
			f.s.log.Debug("skipping volume",
				"volume", vol.Name,
			)
		}
	}

	switch len(velocity) {
	case 0:
	case len(velocityGrids):
		conv := f.mod.CreateNode(scene.TypeGridConvert, xf)
		f.mod.RenameNode(conv, "fluidVelocityConvert")
		for _, vg := range velocityGrids {
			f.mod.Connect(velocity[vg.name], scene.P(conv, vg.plug))
		}
		f.mod.Connect(scene.P(conv, "outGrid"), scene.P(shape, "inVelocity"))
		f.mod.SetValue(scene.P(shape, "velocityMethod"), scene.Int(contentMethodGrid))
		f.parts += len(velocityGrids)
	default:
		f.s.log.Warn("incomplete velocity grids",
			"grids", len(velocity),
		)
	}

	if t, ok := f.s.g.FindByNameAndType(scene.DefaultTime, scene.TypeTime); ok {
		f.mod.Connect(scene.P(t, "outTime"), scene.P(shape, "currentTime"))
	}
	f.mod.RunCommand(fmt.Sprintf("assignSG %s %s", scene.DefaultShadingGroup, scene.Ref(shape)))

	if err := f.mod.Apply(); err != nil {
		return NewApplyFailedError(f.Name(), err)
	}
	return nil
}

// Unapply implements Unit.
func (f *fluidSync) Unapply() error {
	return f.mod.Undo()
}

// Reapply implements Unit.
func (f *fluidSync) Reapply() error {
	return f.mod.Redo()
}
