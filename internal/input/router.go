package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/stepdeck/internal/wheel"
)

// Intent is a semantic navigation request from a discrete input source.
type Intent string

const (
	IntentNext     Intent = "next"
	IntentPrevious Intent = "previous"
	IntentAdvance  Intent = "advance"
)

// ParseIntent parses an intent name.
func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentNext:
		return IntentNext, nil
	case IntentPrevious:
		return IntentPrevious, nil
	case IntentAdvance:
		return IntentAdvance, nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Router is the contract an embedding application wires its event sources to.
// Every method reports whether the input was consumed; unconsumed wheel input
// should be left to native scrolling.
type Router interface {
	Intent(Intent) bool
	Click() bool
	Wheel(delta float64, at time.Time) bool
}

// Deck is the navigation surface the dispatcher drives.
type Deck interface {
	wheel.Target
	Next() bool
	Previous() bool
}

// Dispatcher routes discrete intents to a deck and wheel samples through a
// coalescer.
type Dispatcher struct {
	deck  Deck
	wheel *wheel.Coalescer
}

// NewDispatcher binds a deck and its coalescer.
func NewDispatcher(deck Deck, coalescer *wheel.Coalescer) *Dispatcher {
	return &Dispatcher{deck: deck, wheel: coalescer}
}

// Intent applies a discrete intent. Advance reveals the next hidden segment
// and moves on to the next slide once the current one is fully revealed.
func (d *Dispatcher) Intent(intent Intent) bool {
	switch intent {
	case IntentNext:
		return d.deck.Next()
	case IntentPrevious:
		return d.deck.Previous()
	case IntentAdvance:
		if d.deck.HasHidden() {
			return d.deck.RevealNext()
		}
		return d.deck.Next()
	}
	return false
}

// Click is an advance intent.
func (d *Dispatcher) Click() bool {
	return d.Intent(IntentAdvance)
}

// Wheel feeds one wheel sample to the coalescer and reports whether it was
// intercepted.
func (d *Dispatcher) Wheel(delta float64, at time.Time) bool {
	return d.wheel.Handle(wheel.Event{Delta: delta, At: at}).Intercepted
}

var _ Router = (*Dispatcher)(nil)
