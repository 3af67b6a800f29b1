package hsm_test

import (
	"errors"
	"testing"

	"github.com/arrowlattice/hsm"
)

type injCounter struct{ n int }
type injEvent struct{ n int }

func TestInjectorResolvesContextAndEvent(t *testing.T) {
	c := &injCounter{}
	table := hsm.Build("inj-ok",
		hsm.Rule(hsm.Source("a"), hsm.Initial()),
		hsm.Rule(hsm.Source("a"), hsm.On[injEvent](), hsm.Action(func(c *injCounter, e injEvent) {
			c.n = e.n
		}), hsm.Target("b")),
		hsm.Rule(hsm.Source("b")),
	)
	m, err := hsm.New(table, hsm.WithContext(c))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Dispatch(injEvent{n: 7}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if c.n != 7 {
		t.Fatalf("want 7, got %d", c.n)
	}
}

func TestNewReportsInjectionErrorForUnsatisfiableParameter(t *testing.T) {
	table := hsm.Build("inj-missing",
		hsm.Rule(hsm.Source("a"), hsm.Initial()),
		hsm.Rule(hsm.Source("a"), hsm.On[injEvent](), hsm.Action(func(c *injCounter) {}), hsm.Target("b")),
		hsm.Rule(hsm.Source("b")),
	)
	_, err := hsm.New(table)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, hsm.ErrInjection) {
		t.Fatalf("want ErrInjection, got %v", err)
	}
	var injErr *hsm.InjectionError
	if !errors.As(err, &injErr) {
		t.Fatalf("want *InjectionError, got %T", err)
	}
}

func TestNewRejectsDuplicateContextType(t *testing.T) {
	_, err := hsm.New(hsm.Build("inj-dup",
		hsm.Rule(hsm.Source("a"), hsm.Initial()),
	), hsm.WithContext(&injCounter{n: 1}, &injCounter{n: 2}))
	if !errors.Is(err, hsm.ErrInjection) {
		t.Fatalf("want ErrInjection for duplicate context type, got %v", err)
	}
}

func TestNilGuardAlwaysPasses(t *testing.T) {
	table := hsm.Build("nil-guard",
		hsm.Rule(hsm.Source("a"), hsm.Initial()),
		hsm.Rule(hsm.Source("a"), hsm.On[injEvent](), hsm.Target("b")),
		hsm.Rule(hsm.Source("b")),
	)
	m, err := hsm.New(table)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Dispatch(injEvent{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !m.Is("b") {
		t.Fatalf("want b, got %v", m.Active())
	}
}
