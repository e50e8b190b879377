package input

import (
	"testing"
	"time"

	"github.com/dgallion1/stepdeck/internal/reveal"
	"github.com/dgallion1/stepdeck/internal/segmenter"
	"github.com/dgallion1/stepdeck/internal/wheel"
)

func newDispatcher(doc string) (*Dispatcher, *reveal.Store) {
	store := reveal.NewStore(segmenter.Segment(doc))
	return NewDispatcher(store, wheel.New(wheel.DefaultConfig(), store)), store
}

func TestDispatcher_AdvanceRevealsThenMovesOn(t *testing.T) {
	d, store := newDispatcher("# One\n\na\n\nb\n\n# Two\n\nc")

	steps := []struct {
		slide    int
		progress int
	}{
		{0, 67},
		{0, 100},
		{1, 50},
		{1, 100},
	}
	for i, want := range steps {
		if !d.Intent(IntentAdvance) {
			t.Fatalf("step %d: expected advance to change state", i)
		}
		if store.CurrentSlideIndex() != want.slide || store.Progress() != want.progress {
			t.Fatalf("step %d: expected slide %d at %d%%, got slide %d at %d%%",
				i, want.slide, want.progress, store.CurrentSlideIndex(), store.Progress())
		}
	}
	if d.Click() {
		t.Error("expected advance at the end of the deck to be a no-op")
	}
}

func TestDispatcher_NextPrevious(t *testing.T) {
	d, store := newDispatcher("# One\n\n# Two\n\n# Three")

	d.Intent(IntentNext)
	d.Intent(IntentNext)
	if store.CurrentSlideIndex() != 2 {
		t.Fatalf("expected slide 2, got %d", store.CurrentSlideIndex())
	}
	d.Intent(IntentPrevious)
	if store.CurrentSlideIndex() != 1 {
		t.Fatalf("expected slide 1, got %d", store.CurrentSlideIndex())
	}
	if d.Intent(Intent("bogus")) {
		t.Error("expected unknown intent to be ignored")
	}
}

func TestDispatcher_WheelInterception(t *testing.T) {
	d, store := newDispatcher("a\n\nb")
	now := time.Now()

	if d.Wheel(-120, now) {
		t.Error("expected backward wheel to pass through")
	}
	if !d.Wheel(120, now) {
		t.Error("expected forward wheel to be intercepted while segments are hidden")
	}
	d.Wheel(120, now.Add(10*time.Millisecond))
	if store.HasHidden() {
		t.Fatal("expected the wheel gesture to reveal the last segment")
	}
	if d.Wheel(120, now.Add(2*time.Second)) {
		t.Error("expected forward wheel to pass through once fully revealed")
	}
}

func TestParseIntent(t *testing.T) {
	for _, s := range []string{"next", " Previous ", "ADVANCE"} {
		if _, err := ParseIntent(s); err != nil {
			t.Errorf("ParseIntent(%q): %v", s, err)
		}
	}
	if _, err := ParseIntent("jump"); err == nil {
		t.Error("expected error for unknown intent")
	}
}

func TestKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if in, ok := km.Lookup("right"); !ok || in != IntentNext {
		t.Errorf("expected right -> next, got %q %v", in, ok)
	}
	if err := km.ParseBindings([]string{"previous=b, backspace", "advance=x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in, _ := km.Lookup("backspace"); in != IntentPrevious {
		t.Errorf("expected backspace -> previous, got %q", in)
	}
	if in, _ := km.Lookup("x"); in != IntentAdvance {
		t.Errorf("expected x -> advance, got %q", in)
	}
	for _, bad := range []string{"noequals", "jump=k"} {
		if err := km.ParseBindings([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	keys := km.Keys(IntentPrevious)
	if len(keys) == 0 || keys[0] != "b" {
		t.Errorf("expected sorted keys starting with b, got %v", keys)
	}
}
