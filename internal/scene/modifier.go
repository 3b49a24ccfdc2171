package scene

import (
	"errors"
	"fmt"
)

// ApplyError reports a host-side failure while applying a command buffer.
// The batch that contained the failing operation has been rolled back.
type ApplyError struct {
	Op    string
	Index int
	Err   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s (op %d): %v", e.Op, e.Index, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// IsApplyError reports whether err is, or wraps, an ApplyError.
func IsApplyError(err error) bool {
	var ae *ApplyError
	return errors.As(err, &ae)
}

type op struct {
	desc string
	do   func(g *Graph) (undoFunc, error)
}

type applied struct {
	op   op
	undo undoFunc
}

// Modifier is a transactional command buffer over one graph.
//
// Operations are queued by the mutation methods and take effect on Apply.
// A Modifier may be applied several times; each Apply is one batch. Undo
// reverses every applied operation across all batches, newest first. Redo
// replays them oldest first.
type Modifier struct {
	g       *Graph
	pending []op
	done    []applied
	undone  []op
}

// NewModifier creates an empty command buffer over g.
func NewModifier(g *Graph) *Modifier {
	return &Modifier{g: g}
}

// Pending returns the number of queued, unapplied operations.
func (m *Modifier) Pending() int {
	return len(m.pending)
}

// Len returns the number of applied operations.
func (m *Modifier) Len() int {
	return len(m.done)
}

func (m *Modifier) queue(desc string, do func(g *Graph) (undoFunc, error)) {
	m.pending = append(m.pending, op{desc: desc, do: do})
}

// CreateNode queues creation of a node under parent (NoHandle for a
// top-level node). The handle is reserved immediately so later operations
// in the same buffer can refer to it.
func (m *Modifier) CreateNode(typ string, parent Handle) Handle {
	h := Handle(m.g.clock.Next())
	m.queue(fmt.Sprintf("createNode %s #%d", typ, h), func(g *Graph) (undoFunc, error) {
		return g.addNode(h, typ, parent)
	})
	return h
}

// RenameNode queues a rename.
func (m *Modifier) RenameNode(h Handle, name string) {
	m.queue(fmt.Sprintf("rename #%d %s", h, name), func(g *Graph) (undoFunc, error) {
		return g.rename(h, name)
	})
}

// Connect queues a plug connection. A destination plug accepts one source.
func (m *Modifier) Connect(src, dst Plug) {
	m.queue(fmt.Sprintf("connect %s %s", src, dst), func(g *Graph) (undoFunc, error) {
		return g.connect(Connection{Src: src, Dst: dst})
	})
}

// Disconnect queues removal of a connection.
func (m *Modifier) Disconnect(src, dst Plug) {
	m.queue(fmt.Sprintf("disconnect %s %s", src, dst), func(g *Graph) (undoFunc, error) {
		return g.disconnect(Connection{Src: src, Dst: dst})
	})
}

// DeleteNode queues deletion of h and every descendant left without a
// parent. A node that no longer exists when the buffer is applied is
// skipped.
func (m *Modifier) DeleteNode(h Handle) {
	m.queue(fmt.Sprintf("delete #%d", h), func(g *Graph) (undoFunc, error) {
		return g.deleteNode(h)
	})
}

// SetValue queues a plug value assignment.
func (m *Modifier) SetValue(p Plug, v Value) {
	m.queue(fmt.Sprintf("setValue %s", p), func(g *Graph) (undoFunc, error) {
		return g.setValue(p, v)
	})
}

// Reparent queues moving child from its first parent to parent.
func (m *Modifier) Reparent(child, parent Handle) {
	m.queue(fmt.Sprintf("parent #%d #%d", child, parent), func(g *Graph) (undoFunc, error) {
		return g.reparent(child, parent)
	})
}

// AddParent queues an additional parent edge, making child an instance
// under parent.
func (m *Modifier) AddParent(child, parent Handle) {
	m.queue(fmt.Sprintf("parent -add #%d #%d", child, parent), func(g *Graph) (undoFunc, error) {
		return g.link(parent, child)
	})
}

// AddMember queues adding a node component to a set.
func (m *Modifier) AddMember(set, node Handle, c Component) {
	m.queue(fmt.Sprintf("sets -add #%d #%d", set, node), func(g *Graph) (undoFunc, error) {
		return g.addMember(set, Member{Node: node, Component: c})
	})
}

// AddAttribute queues adding a dynamic root attribute tree to a node.
func (m *Modifier) AddAttribute(h Handle, spec *AttrSpec) {
	m.queue(fmt.Sprintf("addAttr #%d %s", h, spec.Name), func(g *Graph) (undoFunc, error) {
		return g.addAttr(h, spec)
	})
}

// RemoveAttribute queues removal of a dynamic root attribute, its values
// and its connections.
func (m *Modifier) RemoveAttribute(h Handle, name string) {
	m.queue(fmt.Sprintf("deleteAttr #%d %s", h, name), func(g *Graph) (undoFunc, error) {
		return g.removeAttr(h, name)
	})
}

// RunCommand queues a textual host command. Node arguments are resolved
// when the buffer is applied, by name or as "#<handle>".
func (m *Modifier) RunCommand(text string) {
	m.queue(text, func(g *Graph) (undoFunc, error) {
		return g.runCommand(text)
	})
}

// Apply runs every queued operation in FIFO order. If one fails, the
// operations already run in this batch are reversed and an *ApplyError is
// returned; the queue is left empty either way.
func (m *Modifier) Apply() error {
	batch := m.pending
	m.pending = nil
	m.undone = nil

	start := len(m.done)
	for i, o := range batch {
		undo, err := o.do(m.g)
		if err != nil {
			if rbErr := m.rollback(start); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return &ApplyError{Op: o.desc, Index: i, Err: err}
		}
		m.done = append(m.done, applied{op: o, undo: undo})
	}
	return nil
}

func (m *Modifier) rollback(to int) error {
	for len(m.done) > to {
		last := m.done[len(m.done)-1]
		m.done = m.done[:len(m.done)-1]
		if err := last.undo(); err != nil {
			return err
		}
	}
	return nil
}

// Undo reverses every applied operation, newest first.
func (m *Modifier) Undo() error {
	for len(m.done) > 0 {
		last := m.done[len(m.done)-1]
		if err := last.undo(); err != nil {
			return fmt.Errorf("undo %s: %w", last.op.desc, err)
		}
		m.done = m.done[:len(m.done)-1]
		m.undone = append(m.undone, last.op)
	}
	return nil
}

// Redo replays every undone operation, oldest first, with the same handles.
func (m *Modifier) Redo() error {
	for len(m.undone) > 0 {
		o := m.undone[len(m.undone)-1]
		undo, err := o.do(m.g)
		if err != nil {
			return &ApplyError{Op: o.desc, Index: len(m.done), Err: err}
		}
		m.undone = m.undone[:len(m.undone)-1]
		m.done = append(m.done, applied{op: o, undo: undo})
	}
	return nil
}
