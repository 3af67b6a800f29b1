package hsm

import "reflect"

// fireOneRule handles a real, dispatched event: select the candidate
// rule (explicit triggers strictly precede wildcard triggers,
// declaration order within a tier), evaluate guards in that order, and
// fire the first one whose guard passes.
func (m *Machine) fireOneRule(eventValue reflect.Value, event any) (fired bool, changed bool, err error) {
	rules := m.table.transitionRules(m.current)
	explicit, wildcard := partitionBySpecificity(rules, eventTypeOrNil(eventValue))
	selected, ok, err := m.pickPassing(explicit, eventValue)
	if err != nil {
		return false, false, err
	}
	if !ok {
		selected, ok, err = m.pickPassing(wildcard, eventValue)
		if err != nil {
			return false, false, err
		}
	}
	if !ok {
		return false, false, nil
	}
	changed, err = m.fireRuleCommon(selected, eventValue, event)
	return true, changed, err
}

// pickPassing scans rules in order, evaluating each guard, and returns
// the first whose guard passes. If more than one candidate in this tier
// passes, it logs the ambiguity (non-fatal; the first declared match
// still wins).
func (m *Machine) pickPassing(rules []ruleSpec, eventValue reflect.Value) (ruleSpec, bool, error) {
	var selected ruleSpec
	found := false
	var passing []ruleSpec
	for _, r := range rules {
		pass, err := m.inj.invokeGuard(ruleName(m.table, r), r.guard, eventValue)
		if err != nil {
			return ruleSpec{}, false, err
		}
		if pass {
			passing = append(passing, r)
			if !found {
				selected = r
				found = true
			}
		}
	}
	if len(passing) > 1 {
		m.logAmbiguous(passing, selected)
	}
	return selected, found, nil
}

// fireRuleCommon runs the exit/action/entry sequence for a selected rule,
// classified internal/self/external by its target, regardless of whether
// it was selected as a real-event transition or as an anonymous
// completion transition — both share this one primitive over an optional
// event.
func (m *Machine) fireRuleCommon(r ruleSpec, eventValue reflect.Value, event any) (changed bool, err error) {
	switch {
	case !r.hasTarget:
		// Internal: action only, no exit/entry, no state change.
		return false, m.inj.invokeAction(ruleName(m.table, r), r.action, eventValue)
	case r.target == r.source:
		// Self-transition: exit then action then entry of the same state.
		if err := m.exitCurrent(eventValue, event); err != nil {
			return false, err
		}
		if err := m.inj.invokeAction(ruleName(m.table, r), r.action, eventValue); err != nil {
			return false, err
		}
		if err := m.enterState(m.current, eventValue, event); err != nil {
			return false, err
		}
		return true, nil
	default:
		// External: exit source, action, set target, enter target.
		if err := m.exitCurrent(eventValue, event); err != nil {
			return false, err
		}
		if err := m.inj.invokeAction(ruleName(m.table, r), r.action, eventValue); err != nil {
			return false, err
		}
		m.current = r.target
		if err := m.enterState(m.current, eventValue, event); err != nil {
			return false, err
		}
		return true, nil
	}
}

// exitCurrent fires the on_exit<E> handlers of the current state chosen
// by matchingHandlers (the event-specific ones if any match, otherwise
// the wildcard ones) in declaration order, recursing into any live
// child first so child handlers fire before parent handlers across
// composite boundaries. The same triggering event value threads down
// through every nested exit, rather than a fresh one being synthesized
// per layer.
func (m *Machine) exitCurrent(eventValue reflect.Value, event any) error {
	if m.child != nil {
		if err := m.child.exitCurrent(eventValue, event); err != nil {
			return err
		}
		m.logChildExited()
		m.child = nil
	}
	for _, r := range matchingHandlers(m.table.exitRules(m.current), eventTypeOrNil(eventValue)) {
		if err := m.inj.invokeAction(ruleName(m.table, r), r.action, eventValue); err != nil {
			return err
		}
	}
	return nil
}

// enterState fires the on_entry<E> handlers of target chosen by
// matchingHandlers (the event-specific ones if any match, otherwise the
// wildcard ones) in declaration order, then constructs and initializes a nested
// Machine if target is composite. Parent-level on_entry<E> rules fire
// before the child's own initialisation.
func (m *Machine) enterState(target State, eventValue reflect.Value, event any) error {
	for _, r := range matchingHandlers(m.table.entryRules(target), eventTypeOrNil(eventValue)) {
		if err := m.inj.invokeAction(ruleName(m.table, r), r.action, eventValue); err != nil {
			return err
		}
	}
	if m.table.isComposite(target) {
		child, err := m.newChild(target, eventValue, event)
		if err != nil {
			return err
		}
		m.child = child
		m.logChildEntered(target)
	}
	return nil
}

// cascadeFrom drives the anonymous-transition cascade from the machine's
// current state until stable, bounded by the table's own rule count to
// detect non-convergent cycles.
func (m *Machine) cascadeFrom() error {
	bound := len(m.table.rules)
	for steps := 0; ; steps++ {
		if steps > bound {
			return &AnonymousCycleError{State: m.current, Bound: bound}
		}
		fired, err := m.fireAnonymousStep()
		if err != nil {
			return err
		}
		if !fired {
			return nil
		}
	}
}

// fireAnonymousStep tries exactly one anonymous transition from the
// current state. If the current state is an unfinished composite (its
// child hasn't reached Terminal), no anonymous rule sourced there is
// eligible yet — the composite is still active. Anonymous-cascade firing
// always uses the synthetic "no event" for its own exit/entry handling,
// even though the dispatch that set off the cascade may have carried a
// real event.
func (m *Machine) fireAnonymousStep() (bool, error) {
	if m.table.isComposite(m.current) && (m.child == nil || m.child.current != Terminal) {
		return false, nil
	}
	rules := m.table.anonymousRules(m.current)
	selected, ok, err := m.pickPassing(rules, reflect.Value{})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if _, err := m.fireRuleCommon(selected, reflect.Value{}, nil); err != nil {
		return false, err
	}
	return true, nil
}

func eventTypeOrNil(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}

func ruleName(t *Table, r ruleSpec) string {
	return string(t.name) + ": " + string(r.source)
}
