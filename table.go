package hsm

import (
	"fmt"
	"reflect"

	"github.com/arrowlattice/hsm/kind"
)

// ruleSpec is a single Transition ruleSpec: a tuple of source state, trigger,
// optional guard, optional action, and optional target. Build it with
// Rule(Source(...), On[E](), Guard(...), Action(...), Target(...)).
type ruleSpec struct {
	source     State
	trigger    trigger
	hasTrigger bool
	guard      any
	action     any
	target     State
	hasTarget  bool
	initial    bool
	declOrder  int
}

func (r ruleSpec) applyToTable(b *tableBuilder) {
	r.declOrder = len(b.rules)
	b.rules = append(b.rules, r)
}

// kind classifies this rule's firing behavior as internal, self,
// external, or anonymous.
func (r ruleSpec) kind() uint64 {
	switch {
	case !r.hasTrigger:
		return anonymousTransitionKind
	case !r.hasTarget:
		return internalTransitionKind
	case r.target == r.source:
		return selfTransitionKind
	default:
		return externalTransitionKind
	}
}

// TableElement is implemented by ruleSpec and by the value Submachine
// returns; Build accepts a mix of both.
type TableElement interface {
	applyToTable(*tableBuilder)
}

type tableBuilder struct {
	rules      []ruleSpec
	composites map[State]*Table
}

type submachineSpec struct {
	state State
	table *Table
}

func (s submachineSpec) applyToTable(b *tableBuilder) {
	if b.composites == nil {
		b.composites = map[State]*Table{}
	}
	b.composites[s.state] = s.table
}

// Submachine registers state as a composite state whose tag refers to the
// nested Table table. Registering the same state more than once keeps
// the last table; Build does not report the conflict.
func Submachine(state State, table *Table) TableElement {
	return submachineSpec{state: state, table: table}
}

// Table is the immutable declarative transition table, built once per
// machine type via Build.
type Table struct {
	name       string
	rules      []ruleSpec
	initial    State
	composites map[State]*Table
	byState    map[State][]ruleSpec
}

// Build validates and compiles a Transition Table. It panics on
// structurally invalid tables — exactly the kind of error a DSL/builder
// layer is expected to catch before a machine is ever constructed: not
// exactly one initial rule, a target unreachable from the table, or an
// on_entry/on_exit rule carrying a target.
func Build(name string, elements ...TableElement) *Table {
	b := &tableBuilder{}
	for _, e := range elements {
		e.applyToTable(b)
	}
	t := &Table{name: name, rules: b.rules, composites: b.composites}
	t.validate()
	t.index()
	return t
}

func (t *Table) validate() {
	sources := map[State]bool{}
	var initialCount int
	var initialState State
	for _, r := range t.rules {
		sources[r.source] = true
		if r.initial {
			initialCount++
			initialState = r.source
		}
		if (r.trigger.isEntry() || r.trigger.isExit()) && r.hasTarget {
			panic(fmt.Sprintf("hsm: table %q: on_entry/on_exit rule for state %q must not specify a target", t.name, r.source))
		}
		if (r.trigger.isEntry() || r.trigger.isExit()) && r.initial {
			panic(fmt.Sprintf("hsm: table %q: on_entry/on_exit rule for state %q cannot be marked Initial", t.name, r.source))
		}
	}
	if initialCount != 1 {
		panic(fmt.Sprintf("hsm: table %q must have exactly one rule marked Initial, found %d", t.name, initialCount))
	}
	t.initial = initialState
	for _, r := range t.rules {
		if !r.hasTarget || r.target == r.source || r.target == Terminal {
			continue
		}
		if !sources[r.target] && !t.isComposite(r.target) {
			panic(fmt.Sprintf("hsm: table %q: transition from %q targets unreachable state %q", t.name, r.source, r.target))
		}
	}
}

func (t *Table) index() {
	t.byState = map[State][]ruleSpec{}
	for _, r := range t.rules {
		t.byState[r.source] = append(t.byState[r.source], r)
	}
}

func (t *Table) isComposite(s State) bool {
	_, ok := t.composites[s]
	return ok
}

// vertexKind classifies s for diagnostics: terminal, composite, or
// simple.
func (t *Table) vertexKind(s State) uint64 {
	switch {
	case s == Terminal:
		return terminalKind
	case t.isComposite(s):
		return compositeKind
	default:
		return simpleKind
	}
}

// kindName renders a kind.Make value as a human-readable diagnostic tag,
// using kind.Is to place k in its category (vertex or transition) before
// picking the exact name within that category.
func kindName(k uint64) string {
	switch {
	case kind.Is(k, vertexKind):
		return vertexKindName(k)
	case kind.Is(k, transitionKind):
		return transitionKindName(k)
	default:
		return "unknown"
	}
}

func vertexKindName(k uint64) string {
	switch k {
	case terminalKind:
		return "terminal"
	case compositeKind:
		return "composite"
	case simpleKind:
		return "simple"
	default:
		return "unknown"
	}
}

func transitionKindName(k uint64) string {
	switch k {
	case internalTransitionKind:
		return "internal"
	case selfTransitionKind:
		return "self"
	case externalTransitionKind:
		return "external"
	case anonymousTransitionKind:
		return "anonymous"
	default:
		return "unknown"
	}
}

func (t *Table) submachine(s State) *Table {
	return t.composites[s]
}

// transitionRules returns the event-triggered (non entry/exit,
// non-anonymous) rules whose source is s, in declaration order.
func (t *Table) transitionRules(s State) []ruleSpec {
	var out []ruleSpec
	for _, r := range t.byState[s] {
		if r.hasTrigger && !r.trigger.isEntry() && !r.trigger.isExit() {
			out = append(out, r)
		}
	}
	return out
}

// entryRules returns the on_entry<E> rules for state s, exit rules the
// on_exit<E> ones, both in declaration order.
func (t *Table) entryRules(s State) []ruleSpec { return t.handlerRules(s, true) }
func (t *Table) exitRules(s State) []ruleSpec  { return t.handlerRules(s, false) }

func (t *Table) handlerRules(s State, entry bool) []ruleSpec {
	var out []ruleSpec
	for _, r := range t.byState[s] {
		if entry && r.trigger.isEntry() {
			out = append(out, r)
		}
		if !entry && r.trigger.isExit() {
			out = append(out, r)
		}
	}
	return out
}

// anonymousRules returns the event-less transition rules for state s, in
// declaration order. A rule with neither trigger nor target is not a
// transition at all — just a bare declaration of s as a source (commonly
// paired with Initial()) — and is excluded here so it can never be
// mistaken for a no-op cascade step.
func (t *Table) anonymousRules(s State) []ruleSpec {
	var out []ruleSpec
	for _, r := range t.byState[s] {
		if !r.hasTrigger && r.hasTarget {
			out = append(out, r)
		}
	}
	return out
}

// partitionBySpecificity splits rules into the explicit-type tier and the
// wildcard tier, each keeping its relative declaration order. A rule with
// an explicit event type always takes precedence over a wildcard rule,
// regardless of declaration order.
func partitionBySpecificity(rules []ruleSpec, eventType reflect.Type) (explicit, wildcard []ruleSpec) {
	for _, r := range rules {
		switch {
		case r.trigger.isWildcard():
			wildcard = append(wildcard, r)
		case eventType != nil && r.trigger.eventType == eventType:
			explicit = append(explicit, r)
		}
	}
	return explicit, wildcard
}

// matchingHandlers selects the on_entry/on_exit rules that actually fire
// for the triggering event type: every explicit on_entry<E>/on_exit<E>
// rule whose E matches, in declaration order, or — only when none
// match — every on_entry<_>/on_exit<_> rule. An event-specific handler
// dominates a wildcard handler outright; it does not merely precede it.
func matchingHandlers(rules []ruleSpec, eventType reflect.Type) []ruleSpec {
	explicit, wildcard := partitionBySpecificity(rules, eventType)
	if len(explicit) > 0 {
		return explicit
	}
	return wildcard
}
