package hsm

import "github.com/arrowlattice/hsm/kind"

// Kind constants classify the vertices and transitions this engine deals
// with. Each is tagged with its category's base kind (vertexKind or
// transitionKind) so a bare kind value of unknown origin can still be
// placed into the right category with kind.Is, rather than only ever
// being compared for exact equality.
var (
	// vertexKind is the base kind shared by every state classification.
	vertexKind = kind.Make()
	// simpleKind marks an ordinary, non-nesting state.
	simpleKind = kind.Make(vertexKind)
	// compositeKind marks a state whose tag names a nested Table.
	compositeKind = kind.Make(vertexKind)
	// terminalKind marks the Terminal pseudo-state (X).
	terminalKind = kind.Make(vertexKind)

	// transitionKind is the base kind shared by every transition classification.
	transitionKind = kind.Make()
	// internalTransitionKind: no target, action only, no exit/entry.
	internalTransitionKind = kind.Make(transitionKind)
	// selfTransitionKind: target equals source, exit and entry both fire.
	selfTransitionKind = kind.Make(transitionKind)
	// externalTransitionKind: target differs from source.
	externalTransitionKind = kind.Make(transitionKind)
	// anonymousTransitionKind: event-less, drives the completion cascade.
	anonymousTransitionKind = kind.Make(transitionKind)
)
