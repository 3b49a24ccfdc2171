package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/scene"
)

// Stats counts what one pass produced.
type Stats struct {
	Objects    int `json:"objects"`
	Parts      int `json:"parts"`
	Instancers int `json:"instancers"`
	Materials  int `json:"materials"`
	Failures   int `json:"failures"`
}

// Result is the outcome of a completed pass.
type Result struct {
	RunID string `json:"run_id"`
	Stats
	// NeedsResync is set when the pass synced no parts. The resync
	// scheduler, if any, has already been notified.
	NeedsResync bool `json:"needs_resync"`
}

// session is the state shared by the units of one pass.
type session struct {
	g                *scene.Graph
	cook             cook.Accessor
	asset            scene.Handle
	assetName        string
	modes            Modes
	useInstancerNode bool
	finder           scene.Finder
	log              *slog.Logger
	materials        *MaterialResolver
	stats            *Stats
}

// Orchestrator runs sync passes for one asset node.
//
// DoIt builds the unit tree and applies it. UndoIt reverses every child
// unit newest first and then the orchestrator's own deletion buffer.
// RedoIt replays the same buffers without rebuilding anything, so redone
// nodes keep their handles.
//
// An Orchestrator is single use: one DoIt, then any sequence of
// UndoIt/RedoIt. It is not safe for concurrent use.
type Orchestrator struct {
	graph *scene.Graph
	cook  cook.Accessor
	asset scene.Handle

	modes            Modes
	useInstancerNode bool
	textures         *TextureBaker
	finder           scene.Finder
	logger           *slog.Logger
	resync           ResyncScheduler
	ids              RunIDGenerator

	mod    *scene.Modifier
	units  unitList
	built  bool
	result Result
}

// New creates an Orchestrator for the asset node over g, reading cooked
// output from c.
func New(g *scene.Graph, c cook.Accessor, asset scene.Handle, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		graph:            g,
		cook:             c,
		asset:            asset,
		modes:            AllModes(),
		useInstancerNode: true,
		finder:           scene.DepthFirstFinder{},
		logger:           slog.Default(),
		ids:              UUIDv7Generator{},
		mod:              scene.NewModifier(g),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Units returns the applied child units in apply order.
func (o *Orchestrator) Units() []Unit {
	return append([]Unit(nil), o.units...)
}

// Result returns the outcome of the last DoIt.
func (o *Orchestrator) Result() Result {
	return o.result
}

func (o *Orchestrator) newSession(runID string) *session {
	useNode := o.useInstancerNode
	if v, ok := o.graph.Value(scene.P(o.asset, "useInstancerNode")); ok {
		if b, ok := v.(scene.Bool); ok {
			useNode = bool(b)
		}
	}
	s := &session{
		g:                o.graph,
		cook:             o.cook,
		asset:            o.asset,
		assetName:        o.cook.AssetName(),
		modes:            o.modes,
		useInstancerNode: useNode,
		finder:           o.finder,
		log: o.logger.With(
			"run", runID,
			"asset", o.cook.AssetName(),
		),
		stats: &Stats{},
	}
	s.materials = newMaterialResolver(s, o.textures)
	return s
}

// DoIt performs one sync pass.
//
// Unit failures are logged and the unit is skipped. A host apply failure
// aborts the pass: everything applied so far is reversed and the error is
// returned.
func (o *Orchestrator) DoIt() (Result, error) {
	if o.built {
		return o.result, errors.New("sync pass already built")
	}
	o.built = true

	if !o.graph.Exists(o.asset) {
		return Result{}, fmt.Errorf("asset #%d: %w", o.asset, scene.ErrNodeNotFound)
	}

	runID := o.ids.Generate()
	o.result = Result{RunID: runID}
	s := o.newSession(runID)

	s.log.Info("sync started",
		"attributes", o.modes.Attributes,
		"outputs", o.modes.Outputs,
		"hidden", o.modes.Hidden,
		"templated_geos", o.modes.TemplatedGeos,
		"instancer_node", s.useInstancerNode,
	)

	if o.modes.Outputs {
		o.queueDeletions(s)
		if err := o.mod.Apply(); err != nil {
			return o.abort(s, NewApplyFailedError("stale outputs", err))
		}
	}

	if o.modes.Attributes {
		if err := o.run(s, newAttributeSync(s)); err != nil {
			return o.abort(s, err)
		}
	}

	if o.modes.Outputs {
		if err := o.syncOutputs(s); err != nil {
			return o.abort(s, err)
		}
	}

	o.result.Stats = *s.stats
	s.log.Info("sync finished",
		"objects", s.stats.Objects,
		"parts", s.stats.Parts,
		"instancers", s.stats.Instancers,
		"materials", s.stats.Materials,
		"failures", s.stats.Failures,
		"needs_resync", o.result.NeedsResync,
	)
	return o.result, nil
}

// UndoIt reverses the pass.
func (o *Orchestrator) UndoIt() error {
	if err := o.units.unapply(); err != nil {
		return err
	}
	if err := o.mod.Undo(); err != nil {
		return fmt.Errorf("undo stale output deletion: %w", err)
	}
	return nil
}

// RedoIt reapplies the pass after UndoIt.
func (o *Orchestrator) RedoIt() error {
	if err := o.mod.Redo(); err != nil {
		return fmt.Errorf("redo stale output deletion: %w", err)
	}
	return o.units.reapply()
}

// run applies one unit. A successful unit joins the undo container; a
// failed one is logged and dropped unless the host rejected its buffer.
func (o *Orchestrator) run(s *session, u Unit) error {
	err := u.Apply()
	if err == nil {
		o.units = append(o.units, u)
		return nil
	}
	if IsApplyFailure(err) {
		return err
	}
	s.stats.Failures++
	s.log.Warn("sync unit failed",
		"unit", u.Name(),
		"error", err,
	)
	return nil
}

func (o *Orchestrator) abort(s *session, cause error) (Result, error) {
	s.log.Error("sync aborted",
		"error", cause,
	)
	err := cause
	if uerr := o.units.unapply(); uerr != nil {
		err = errors.Join(err, uerr)
	}
	if uerr := o.mod.Undo(); uerr != nil {
		err = errors.Join(err, fmt.Errorf("undo stale output deletion: %w", uerr))
	}
	o.units = nil
	o.result.Stats = Stats{}
	return o.result, err
}

// queueDeletions queues removal of every child of the asset and of every
// shading subgraph reachable from the asset's material slots. Slots stay so
// material ids keep their slot index across passes.
func (o *Orchestrator) queueDeletions(s *session) {
	for _, child := range s.g.Children(s.asset) {
		o.mod.DeleteNode(child)
	}
	for _, slot := range s.materials.slots() {
		shader, ok := s.materials.slotShader(slot)
		if !ok {
			continue
		}
		if file, ok := s.g.Source(scene.P(shader, "color")); ok {
			if n, ok := s.g.Node(file.Node); ok && n.Type == scene.TypeFile {
				o.mod.DeleteNode(file.Node)
			}
		}
		if sg, ok := s.materials.shaderGroup(shader); ok {
			o.mod.DeleteNode(sg)
		}
		o.mod.DeleteNode(shader)
	}
}

// syncOutputs runs the object pass, the instancer pass and the part
// instancer post-pass.
func (o *Orchestrator) syncOutputs(s *session) error {
	var objects []*ObjectSync
	for i := 0; i < s.cook.ObjectCount(); i++ {
		obj, err := s.cook.Object(i)
		if err != nil {
			s.stats.Failures++
			s.log.Warn("object unavailable",
				"index", i,
				"error", err,
			)
			continue
		}
		if !obj.IsVisible() && !obj.Instanced && !s.modes.Hidden {
			s.log.Debug("skipping hidden object",
				"object", obj.Name,
			)
			continue
		}
		u := newObjectSync(s, i, obj)
		if err := o.run(s, u); err != nil {
			return err
		}
		if u.applied {
			objects = append(objects, u)
		}
	}

	for i := 0; i < s.cook.InstancerCount(); i++ {
		inst, err := s.cook.Instancer(i)
		if err != nil {
			s.stats.Failures++
			s.log.Warn("instancer unavailable",
				"index", i,
				"error", err,
			)
			continue
		}
		if err := o.run(s, newInstanceSync(s, i, inst)); err != nil {
			return err
		}
	}

	// Second pass: every part transform now exists, so part instancers
	// can resolve their sibling references. Cook order decides first use.
	usage := NewInstanceUsage()
	for _, obj := range objects {
		for _, siblings := range obj.geoParts {
			for _, p := range siblings {
				if p == nil || !p.hasInstancer {
					continue
				}
				post := &instancerPost{part: p, siblings: siblings, usage: usage}
				if err := o.run(s, post); err != nil {
					return err
				}
			}
		}
	}

	if s.stats.Parts == 0 {
		o.result.NeedsResync = true
		s.log.Warn("scheduling resync",
			"error", NewEmptyCookError(s.assetName),
		)
		if o.resync != nil {
			o.resync.ScheduleResync(s.asset)
		}
	}
	return nil
}
