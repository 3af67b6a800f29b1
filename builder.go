package hsm

// RuleOption configures a Rule under construction; pass any combination
// to Rule(...).
type RuleOption func(*ruleSpec)

// Rule builds a single Transition Rule from the given options. The
// declaration order of the Rule values passed to Build determines
// precedence among rules of equal specificity.
func Rule(opts ...RuleOption) ruleSpec {
	var r ruleSpec
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Source sets the rule's source state (required).
func Source(s State) RuleOption {
	return func(r *ruleSpec) { r.source = s }
}

// Target sets the rule's destination state. Omit entirely for an
// internal transition; pass the same tag as Source for a self-transition
// (`= source`); pass a different tag for an external transition.
func Target(s State) RuleOption {
	return func(r *ruleSpec) {
		r.target = s
		r.hasTarget = true
	}
}

// Initial marks the rule's source as the table's initial state. Exactly
// one rule per table must carry this.
func Initial() RuleOption {
	return func(r *ruleSpec) { r.initial = true }
}

// Guard attaches a predicate evaluated before the rule is taken; its
// parameters are resolved by the dependency injector. Pass a
// func(...) bool of any parameter list the injector can satisfy.
func Guard(fn any) RuleOption {
	return func(r *ruleSpec) { r.guard = fn }
}

// Action attaches the rule's side-effecting behavior, invoked between
// exit and entry handlers (or alone, for an internal transition). Pass a
// func(...) of any parameter list the injector can satisfy.
func Action(fn any) RuleOption {
	return func(r *ruleSpec) { r.action = fn }
}

// On sets the rule's trigger to the explicit event type E, or to the
// wildcard event (event<_>) when E is Wildcard.
func On[E any]() RuleOption {
	return func(r *ruleSpec) {
		r.hasTrigger = true
		r.trigger = eventTrigger[E]()
	}
}

// OnAny is shorthand for On[Wildcard]().
func OnAny() RuleOption { return On[Wildcard]() }

// OnEntry sets the rule to fire as an on_entry<E> handler for its source
// state, or on_entry<_> when E is Wildcard.
func OnEntry[E any]() RuleOption {
	return func(r *ruleSpec) {
		r.hasTrigger = true
		r.trigger = entryTrigger[E]()
	}
}

// OnEntryAny is shorthand for OnEntry[Wildcard]().
func OnEntryAny() RuleOption { return OnEntry[Wildcard]() }

// OnExit sets the rule to fire as an on_exit<E> handler for its source
// state, or on_exit<_> when E is Wildcard.
func OnExit[E any]() RuleOption {
	return func(r *ruleSpec) {
		r.hasTrigger = true
		r.trigger = exitTrigger[E]()
	}
}

// OnExitAny is shorthand for OnExit[Wildcard]().
func OnExitAny() RuleOption { return OnExit[Wildcard]() }

func eventTrigger[E any]() trigger {
	t := eventTypeOf[E]()
	if t == wildcardType {
		return trigger{kind: triggerWildcardEvent}
	}
	return trigger{kind: triggerEvent, eventType: t}
}

func entryTrigger[E any]() trigger {
	t := eventTypeOf[E]()
	if t == wildcardType {
		return trigger{kind: triggerWildcardEntry}
	}
	return trigger{kind: triggerEntry, eventType: t}
}

func exitTrigger[E any]() trigger {
	t := eventTypeOf[E]()
	if t == wildcardType {
		return trigger{kind: triggerWildcardExit}
	}
	return trigger{kind: triggerExit, eventType: t}
}
