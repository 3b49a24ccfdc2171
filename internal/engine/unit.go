package engine

import "fmt"

// Unit is one reconciliation step of a sync pass.
//
// Apply builds the unit's command buffer and runs it against the graph.
// Unapply reverses everything the unit and its children did, children
// first. Reapply restores it, children last. The set of unit kinds is
// closed: ObjectSync, GeometryPartSync, InstanceSync, MaterialSync,
// AttributeSync and the engine's internal fluid and instancer post-pass
// steps.
type Unit interface {
	Apply() error
	Unapply() error
	Reapply() error
	Name() string
	unit()
}

func (*ObjectSync) unit()       {}
func (*GeometryPartSync) unit() {}
func (*InstanceSync) unit()     {}
func (*MaterialSync) unit()     {}
func (*AttributeSync) unit()    {}
func (*fluidSync) unit()        {}
func (*instancerPost) unit()    {}

// unitList is an ordered set of applied units. Order is apply order.
type unitList []Unit

func (l unitList) unapply() error {
	for i := len(l) - 1; i >= 0; i-- {
		if err := l[i].Unapply(); err != nil {
			return fmt.Errorf("unapply %s: %w", l[i].Name(), err)
		}
	}
	return nil
}

func (l unitList) reapply() error {
	for _, u := range l {
		if err := u.Reapply(); err != nil {
			return fmt.Errorf("reapply %s: %w", u.Name(), err)
		}
	}
	return nil
}
