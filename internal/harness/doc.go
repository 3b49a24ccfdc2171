// Package harness runs sync scenarios against the real orchestrator and
// checks the resulting host scene.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	cook: ../../cook/testdata/two_objects.yaml
//	asset: rock                # optional, defaults to the cook's asset
//	instancer_node: true       # optional, default true
//	modes:                     # optional, default every mode
//	  attributes: true
//	  outputs: true
//	steps:
//	  - action: sync
//	    expect: { objects: 2, parts: 2 }
//	  - action: sync
//	    cook: one_object.yaml  # a later cook of the same asset
//	  - action: undo
//	  - action: redo
//	assertions:
//	  - type: node_exists
//	    node: boxShape
//	    node_type: mesh
//	  - type: matches_step
//	    step: 1
//
// Cook paths are resolved relative to the scenario file.
//
// # Steps
//
// A sync step builds a new orchestrator over the shared scene and runs one
// pass. Undo and redo move through the applied passes the way the host's
// undo queue does: undo reverses the newest pass, redo replays the newest
// undone pass, and a new sync drops the redo chain.
//
// # Assertion Types
//
//   - node_exists: a node with the name (and type, and parent) exists
//   - node_absent: no node with the name exists
//   - type_count: the scene holds exactly N nodes of a type
//   - connected: a plug drives another plug
//   - value: a plug holds a value, compared by its text form
//   - set_members: a set holds exactly the named members, in order
//   - matches_step: the final scene equals the scene after step N
//     (0 is the scene before any step)
//
// # Deterministic Testing
//
// Run ids come from testutil.SequentialRunIDs, and node handles from the
// scene's own clock, so the same scenario always produces the same trace
// and scene. RunWithGolden compares both against goldie fixtures under
// testdata/golden.
package harness
