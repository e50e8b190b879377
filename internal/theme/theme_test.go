package theme

import "testing"

func TestLookup(t *testing.T) {
	g, err := Lookup("  Ocean-Seafoam ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if g.CSS() != "linear-gradient(135deg, #226EE0, #75FF9E)" {
		t.Errorf("CSS = %q", g.CSS())
	}
	if _, err := Lookup("plaid"); err == nil {
		t.Error("expected unknown theme error")
	}
	if _, err := Lookup(Default); err != nil {
		t.Errorf("default theme missing: %v", err)
	}
}

func TestNamesUnique(t *testing.T) {
	names := Names()
	if len(names) != 14 {
		t.Fatalf("expected 14 themes, got %d", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate theme %q", n)
		}
		seen[n] = true
	}
}
