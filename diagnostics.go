package hsm

import (
	"log/slog"
	"reflect"
)

// logDispatch traces a top-level Dispatch call, tagged with the
// machine's trace ID so a single dispatch's cascade of child and
// anonymous transitions can be correlated in structured log output.
func (m *Machine) logDispatch(event any) {
	m.logger.Debug("hsm: dispatch",
		slog.String("table", m.table.name),
		slog.String("trace", m.traceID.String()),
		slog.String("state", string(m.current)),
		slog.String("state_kind", kindName(m.table.vertexKind(m.current))),
		slog.String("event", eventTypeName(event)),
	)
}

// logAmbiguous warns that more than one rule in a single tier passed its
// guard — ambiguity is reported but not fatal, the first declared
// candidate still wins. candidates holds every passing rule in the tier,
// in declaration order; their declOrder values are logged so the
// specific ambiguous rules can be identified in the table.
func (m *Machine) logAmbiguous(candidates []ruleSpec, selected ruleSpec) {
	declOrders := make([]int, len(candidates))
	for i, r := range candidates {
		declOrders[i] = r.declOrder
	}
	m.logger.Warn("hsm: ambiguous rule table",
		slog.String("table", m.table.name),
		slog.String("trace", m.traceID.String()),
		slog.String("source", string(selected.source)),
		slog.String("kind", kindName(selected.kind())),
		slog.Any("candidate_decl_orders", declOrders),
		slog.Int("selected_decl_order", selected.declOrder),
	)
}

func (m *Machine) logChildEntered(state State) {
	m.logger.Debug("hsm: submachine entered",
		slog.String("table", m.table.name),
		slog.String("trace", m.traceID.String()),
		slog.String("state", string(state)),
		slog.String("state_kind", kindName(m.table.vertexKind(state))),
	)
}

func (m *Machine) logChildExited() {
	m.logger.Debug("hsm: submachine exited",
		slog.String("table", m.table.name),
		slog.String("trace", m.traceID.String()),
		slog.String("state", string(m.current)),
	)
}

func eventTypeName(event any) string {
	if event == nil {
		return "<none>"
	}
	return reflect.TypeOf(event).String()
}
