// Package hsm is an embeddable hierarchical state machine engine for Go.
//
// # Overview
//
// A Table is a declarative Transition Table built once from Rule values;
// a Machine is a running instance of a Table, constructed with New. Rules
// are matched against dispatched events by explicit type first, wildcard
// second, and within a tier by declaration order. States may be plain,
// or composite — owning a nested Table of their own, entered and exited
// as a unit and completed via the Terminal pseudo-state.
//
// # Features
//
//   - Hierarchical states: a composite state owns an independently built
//     nested Table, entered and exited as a single unit.
//   - Anonymous transitions: event-less rules drive a completion cascade
//     after every state change, bounded to detect non-convergent cycles.
//   - Dependency injection: guard and action parameters are resolved from
//     a caller-supplied context pool plus the current event's own type.
//   - Generics-based trigger construction: On[E](), OnEntry[E](),
//     OnExit[E](), with Wildcard standing in for "any event".
//
// # Usage
//
//	type Coin struct{}
//	type Push struct{}
//
//	table := hsm.Build("turnstile",
//	    hsm.Rule(hsm.Source("locked"), hsm.Initial()),
//	    hsm.Rule(hsm.Source("locked"), hsm.On[Coin](), hsm.Target("unlocked")),
//	    hsm.Rule(hsm.Source("unlocked"), hsm.On[Push](), hsm.Target("locked")),
//	)
//
//	m, err := hsm.New(table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	consumed, err := m.Dispatch(Coin{})
package hsm
