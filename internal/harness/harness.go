package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/cooksync/internal/cook"
	"github.com/roach88/cooksync/internal/engine"
	"github.com/roach88/cooksync/internal/scene"
	"github.com/roach88/cooksync/internal/testutil"
)

// CookNotFoundError is returned when a scenario references a cook result
// file that doesn't exist.
type CookNotFoundError struct {
	Scenario string
	Path     string
}

// Error implements the error interface.
func (e *CookNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q references cook result %q which does not exist", e.Scenario, e.Path)
}

// Harness is the scenario execution state: one scene, its asset node and
// the applied and undone passes.
//
// Every scenario runs on a fresh scene with sequential run ids, so repeated
// runs produce identical traces.
type Harness struct {
	scenario *Scenario
	graph    *scene.Graph
	asset    scene.Handle
	ids      *testutil.SequentialRunIDs
	logger   *slog.Logger
	cooks    map[string]*cook.Result

	done   []*engine.Orchestrator
	undone []*engine.Orchestrator
	result *Result
}

// ScheduleResync implements engine.ResyncScheduler by counting requests.
func (h *Harness) ScheduleResync(scene.Handle) {
	h.result.Resyncs++
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the cook results the scenario references
// 2. Create a fresh scene holding the asset node
// 3. Execute the steps, validating expect clauses
// 4. Evaluate assertions against the final scene
//
// A returned error means the scenario could not be executed; failed
// expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	if err := h.execute(); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Graph:  h.graph,
		Scenes: h.result.Scenes,
	}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	h := &Harness{
		scenario: scenario,
		ids:      testutil.NewSequentialRunIDs(""),
		logger:   testutil.DiscardLogger(),
		cooks:    make(map[string]*cook.Result),
		result:   NewResult(),
	}

	c, err := h.cook(scenario.Cook)
	if err != nil {
		return nil, err
	}
	asset := scenario.Asset
	if asset == "" {
		asset = cook.SanitizeNodeName(c.Asset, "asset")
	}
	h.graph, h.asset, err = testutil.NewAssetGraph(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	return h, nil
}

// cook loads a cook result once per path.
func (h *Harness) cook(path string) (*cook.Result, error) {
	if c, ok := h.cooks[path]; ok {
		return c, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &CookNotFoundError{Scenario: h.scenario.Name, Path: path}
	}
	c, err := cook.Load(path)
	if err != nil {
		return nil, err
	}
	h.cooks[path] = c
	return c, nil
}

func (h *Harness) execute() error {
	h.result.Scenes = append(h.result.Scenes, scene.Dump(h.graph))

	for i, step := range h.scenario.Steps {
		n := i + 1
		var (
			ev  TraceEvent
			err error
		)
		switch step.Action {
		case ActionSync:
			ev, err = h.sync(n, step)
		case ActionUndo:
			ev, err = h.undo(n)
		case ActionRedo:
			ev, err = h.redo(n)
		default:
			err = fmt.Errorf("unknown action %q", step.Action)
		}
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", n, step.Action, err)
		}
		h.result.Trace = append(h.result.Trace, ev)
		h.result.Scenes = append(h.result.Scenes, scene.Dump(h.graph))
	}
	return nil
}

func (h *Harness) sync(n int, step Step) (TraceEvent, error) {
	path := step.Cook
	if path == "" {
		path = h.scenario.Cook
	}
	c, err := h.cook(path)
	if err != nil {
		return TraceEvent{}, err
	}

	modes := h.scenario.Modes
	if step.Modes != nil {
		modes = step.Modes
	}
	useNode := true
	if h.scenario.InstancerNode != nil {
		useNode = *h.scenario.InstancerNode
	}

	o := engine.New(h.graph, c, h.asset,
		engine.WithModes(modes.Modes()),
		engine.WithInstancerNode(useNode),
		engine.WithLogger(h.logger),
		engine.WithRunIDs(h.ids),
		engine.WithResyncScheduler(h),
	)
	res, err := o.DoIt()
	ev := TraceEvent{Step: n, Action: ActionSync, RunID: res.RunID}

	if err != nil {
		if !engine.IsApplyFailure(err) {
			return TraceEvent{}, err
		}
		ev.Aborted = true
		ev.Error = err.Error()
		if step.Expect == nil || !step.Expect.Aborted {
			h.result.AddError(fmt.Sprintf("step %d: sync aborted: %v", n, err))
		}
		return ev, nil
	}

	stats := res.Stats
	ev.Stats = &stats
	ev.NeedsResync = res.NeedsResync
	h.done = append(h.done, o)
	h.undone = nil

	for _, msg := range checkExpect(step.Expect, res) {
		h.result.AddError(fmt.Sprintf("step %d: %s", n, msg))
	}
	return ev, nil
}

func (h *Harness) undo(n int) (TraceEvent, error) {
	if len(h.done) == 0 {
		return TraceEvent{}, errors.New("nothing to undo")
	}
	o := h.done[len(h.done)-1]
	if err := o.UndoIt(); err != nil {
		return TraceEvent{}, err
	}
	h.done = h.done[:len(h.done)-1]
	h.undone = append(h.undone, o)
	return TraceEvent{Step: n, Action: ActionUndo, RunID: o.Result().RunID}, nil
}

func (h *Harness) redo(n int) (TraceEvent, error) {
	if len(h.undone) == 0 {
		return TraceEvent{}, errors.New("nothing to redo")
	}
	o := h.undone[len(h.undone)-1]
	if err := o.RedoIt(); err != nil {
		return TraceEvent{}, err
	}
	h.undone = h.undone[:len(h.undone)-1]
	h.done = append(h.done, o)
	return TraceEvent{Step: n, Action: ActionRedo, RunID: o.Result().RunID}, nil
}

func checkExpect(e *ExpectClause, res engine.Result) []string {
	if e == nil {
		return nil
	}
	var errs []string
	if e.Aborted {
		errs = append(errs, "expected sync to abort, but it completed")
	}
	counts := []struct {
		name   string
		expect *int
		actual int
	}{
		{"objects", e.Objects, res.Objects},
		{"parts", e.Parts, res.Parts},
		{"instancers", e.Instancers, res.Instancers},
		{"materials", e.Materials, res.Materials},
		{"failures", e.Failures, res.Failures},
	}
	for _, c := range counts {
		if c.expect != nil && *c.expect != c.actual {
			errs = append(errs, fmt.Sprintf("expected %s=%d, got %d", c.name, *c.expect, c.actual))
		}
	}
	if e.NeedsResync != nil && *e.NeedsResync != res.NeedsResync {
		errs = append(errs, fmt.Sprintf("expected needs_resync=%t, got %t", *e.NeedsResync, res.NeedsResync))
	}
	return errs
}
