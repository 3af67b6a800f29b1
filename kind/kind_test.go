package kind

import "testing"

func TestMakeAssignsUniqueIDs(t *testing.T) {
	a := Make()
	b := Make()
	if a == b {
		t.Fatalf("Make() returned the same kind twice: %d", a)
	}
}

func TestIsMatchesSelf(t *testing.T) {
	a := Make()
	if !Is(a, a) {
		t.Fatalf("Is(a, a) should be true")
	}
}

func TestIsInheritsFromBase(t *testing.T) {
	base := Make()
	derived := Make(base)
	if !Is(derived, base) {
		t.Fatalf("derived kind should satisfy Is(derived, base)")
	}
	if Is(base, derived) {
		t.Fatalf("base kind should not satisfy Is(base, derived)")
	}
}

func TestIsInheritsTransitivelyThroughMultipleBases(t *testing.T) {
	root := Make()
	mid := Make(root)
	leaf := Make(mid, Make())
	if !Is(leaf, root) {
		t.Fatalf("leaf kind should inherit root through mid")
	}
	if !Is(leaf, mid) {
		t.Fatalf("leaf kind should inherit mid directly")
	}
}

func TestIsMatchesAnyOfSeveralBases(t *testing.T) {
	a := Make()
	b := Make()
	derived := Make(a)
	if !Is(derived, b, a) {
		t.Fatalf("Is should match when any of the provided bases matches")
	}
	if Is(derived, b) {
		t.Fatalf("Is should not match an unrelated base")
	}
}

func TestMakeDeduplicatesRepeatedBases(t *testing.T) {
	base := Make()
	// Passing the same base twice must not overflow the inheritance slots
	// or corrupt the derived kind's own identity bits.
	derived := Make(base, base, base)
	if !Is(derived, base) {
		t.Fatalf("derived kind should still inherit from a repeated base")
	}
}
