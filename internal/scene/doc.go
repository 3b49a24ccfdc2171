// Package scene models the host scene graph and its transactional command
// buffer.
//
// The graph holds nodes addressed by Handle, parent/child edges (a node may
// have several parents, which is how instancing is expressed), plug
// connections, set memberships and dynamic attribute trees.
//
// All mutation from the sync engine goes through a Modifier:
//
//	m := scene.NewModifier(g)
//	xf := m.CreateNode("transform", asset)
//	m.RenameNode(xf, "objA")
//	if err := m.Apply(); err != nil { ... }
//	m.Undo()
//	m.Redo()
//
// Mutations queued on a Modifier are invisible to graph queries until Apply.
// Apply runs queued operations in FIFO order and rolls the batch back if one
// of them fails. Undo reverses every applied operation in LIFO order; Redo
// replays them forward with the same handles.
//
// Thread-safety: none. The graph is owned by the single goroutine running a
// sync pass.
package scene
