package hsm

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/arrowlattice/hsm/muid"
)

// Machine is a running instance of a Table. A Machine owns at most one
// live child Machine, backing whichever composite state (if any) is
// currently active; the child has no back-pointer to its parent —
// ownership flows one way, from parent down to child.
type Machine struct {
	table   *Table
	current State
	inj     *injector
	context []any
	child   *Machine
	logger  *slog.Logger
	traceID muid.MUID

	dispatching atomic.Bool
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithContext supplies values the dependency injector may hand to guard
// and action callback parameters. Calling WithContext more than once
// accumulates values; New reports ErrInjection if two values share the
// same dynamic type.
func WithContext(values ...any) Option {
	return func(m *Machine) { m.context = append(m.context, values...) }
}

// WithLogger overrides the structured logger used for dispatch
// diagnostics (top-level dispatch tracing, ambiguous-table warnings, and
// child lifecycle). Anonymous cascade steps are not logged. The default
// is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// New constructs a Machine over table, validates that every guard,
// action, entry, and exit callback in the table (including nested
// Submachine tables) can be satisfied by the supplied context, then runs
// construction-time initialisation: entering the initial state and
// driving the anonymous-transition cascade to a stable configuration.
//
// New returns an error wrapping ErrInjection if any callback's
// parameters cannot be resolved, or ErrAnonymousCycle if construction
// does not converge.
func New(table *Table, opts ...Option) (*Machine, error) {
	m := &Machine{table: table, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	inj, err := newInjector(m.context)
	if err != nil {
		return nil, err
	}
	m.inj = inj
	if err := validateTable(inj, table); err != nil {
		return nil, err
	}
	m.traceID = muid.Make()
	if err := m.init(reflect.Value{}, nil); err != nil {
		return nil, err
	}
	return m, nil
}

// validateTable checks every callback reachable from table, recursing
// into Submachine tables, against inj. Injection failures are reported
// at construction, not at first dispatch.
func validateTable(inj *injector, table *Table) error {
	for _, r := range table.rules {
		var eventType reflect.Type
		if r.hasTrigger {
			eventType = r.trigger.eventType
		}
		if err := inj.validate(ruleName(table, r)+" guard", r.guard, eventType); err != nil {
			return err
		}
		if err := inj.validate(ruleName(table, r)+" action", r.action, eventType); err != nil {
			return err
		}
	}
	for state, sub := range table.composites {
		if err := validateTable(inj, sub); err != nil {
			return fmt.Errorf("hsm: submachine at %q: %w", state, err)
		}
	}
	return nil
}

// Dispatch offers event to the machine: it is first offered to the
// innermost active sub-machine, then to this level, stopping at the
// first machine in the hierarchy whose table has a matching,
// guard-passing rule. Dispatch reports whether anything consumed the
// event; it is not an error for no rule to match.
//
// Dispatch is not reentrant: calling it from within a guard or action
// callback returns ErrReentrancy.
func (m *Machine) Dispatch(event any) (bool, error) {
	if !m.dispatching.CompareAndSwap(false, true) {
		return false, ErrReentrancy
	}
	defer m.dispatching.Store(false)

	eventValue := reflect.ValueOf(event)
	m.logDispatch(event)
	return m.tryDispatch(eventValue, event)
}
