// Package engine reconciles an asset's cooked output into the host scene
// graph.
//
// ARCHITECTURE:
//
// One sync pass is run by an Orchestrator over one asset node. The pass
// builds a tree of sync units, each owning one transactional command
// buffer (scene.Modifier):
//
//	Orchestrator        deletion buffer for stale outputs
//	├─ AttributeSync    parameter attributes
//	├─ ObjectSync       object transform, geo transforms
//	│  ├─ GeometryPartSync   part transform and shapes
//	│  │  └─ MaterialSync    shading subgraphs the part created
//	│  └─ fluidSync          fluid container of the geo's volumes
//	├─ InstanceSync     object-level instancers
//	└─ instancerPost    part instancer second pass
//
// A unit queues all of its mutations before applying its buffer, so a
// failure never leaves a half-applied unit. Units join the orchestrator's
// ordered container only after they applied; undo walks that container in
// reverse and finishes with the deletion buffer. Redo replays the same
// buffers, so redone nodes keep their handles.
//
// Pass order:
//  1. Delete every child of the asset and every shading subgraph
//     reachable from its material slots.
//  2. Rebuild parameter attributes.
//  3. Sync each included object and its parts.
//  4. Sync object-level instancers.
//  5. Resolve part instancer references now that every sibling exists.
//
// ERROR HANDLING:
//
// A unit with missing or malformed cooked data is logged and skipped;
// siblings continue. A feature the host cannot represent is dropped with a
// warning. A host apply failure aborts the pass and unwinds everything
// applied so far. A pass that syncs no parts sets Result.NeedsResync and
// notifies the ResyncScheduler.
//
// The engine is single-threaded and never blocks. First use of an
// instanced part is tracked per pass in an InstanceUsage passed to the
// second pass explicitly.
package engine
