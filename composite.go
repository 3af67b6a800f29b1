package hsm

import (
	"reflect"

	"github.com/arrowlattice/hsm/muid"
)

// newChild constructs and initializes the nested Machine backing a newly
// entered composite state. It shares this machine's injector (and
// therefore its context pool) and logger, since sub-machine instances
// have no independent resource set of their own. Construction-time
// initial entry is threaded the same eventValue/event that caused the
// composite to be entered, so an event-specific on_entry<E> at the
// child's initial state can dominate on_entry<_> even on the very first
// entry (see DESIGN.md's entry-propagation decision).
func (m *Machine) newChild(state State, eventValue reflect.Value, event any) (*Machine, error) {
	child := &Machine{
		table:   m.table.submachine(state),
		inj:     m.inj,
		logger:  m.logger,
		context: m.context,
	}
	child.traceID = muid.Make()
	if err := child.init(eventValue, event); err != nil {
		return nil, err
	}
	return child, nil
}

// init runs construction-time initialisation: enter the initial state,
// then drive the anonymous-transition cascade to a stable state. Called
// both for a freshly-built top-level Machine (eventValue invalid, event
// nil) and for a newly entered composite's child.
func (m *Machine) init(eventValue reflect.Value, event any) error {
	m.current = m.table.initial
	if err := m.enterState(m.current, eventValue, event); err != nil {
		return err
	}
	return m.cascadeFrom()
}

// tryDispatch offers event to this machine and, recursively, to any live
// child first — events are offered to the innermost active sub-machine
// first. It reports whether anything in the hierarchy consumed the
// event.
func (m *Machine) tryDispatch(eventValue reflect.Value, event any) (consumed bool, err error) {
	if m.child != nil {
		childConsumed, err := m.child.tryDispatch(eventValue, event)
		if err != nil {
			return false, err
		}
		if childConsumed {
			if m.child.current == Terminal {
				if err := m.cascadeFrom(); err != nil {
					return true, err
				}
			}
			return true, nil
		}
	}
	fired, changed, err := m.fireOneRule(eventValue, event)
	if err != nil {
		return fired, err
	}
	if !fired {
		return false, nil
	}
	if changed {
		if err := m.cascadeFrom(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Is reports whether the machine (at this level) is currently in state s.
// It does not look into a nested sub-machine; use IsAt for that.
func (m *Machine) Is(s State) bool {
	return m.current == s
}

// IsAt reports whether path, outermost first, is a prefix of the
// machine's active state path — e.g. IsAt("door", "open") asks whether the
// top-level machine is at composite state "door" and its child is at
// "open". A shorter path matches a prefix of the active configuration.
func (m *Machine) IsAt(path ...State) bool {
	cur := m
	for _, s := range path {
		if cur == nil || cur.current != s {
			return false
		}
		cur = cur.child
	}
	return true
}

// Active returns the full active state path, outermost first.
func (m *Machine) Active() []State {
	var out []State
	for cur := m; cur != nil; cur = cur.child {
		out = append(out, cur.current)
	}
	return out
}
