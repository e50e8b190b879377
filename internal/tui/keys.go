package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/dgallion1/stepdeck/internal/input"
)

// viewKeys are the bindings handled by the view itself. Navigation keys come
// from an input.KeyMap and are only mirrored here for the help line.
type viewKeys struct {
	Advance  key.Binding
	Next     key.Binding
	Previous key.Binding
	First    key.Binding
	Last     key.Binding
	Sidebar  key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newViewKeys(km input.KeyMap) viewKeys {
	return viewKeys{
		Advance:  intentBinding(km, input.IntentAdvance, "reveal"),
		Next:     intentBinding(km, input.IntentNext, "next slide"),
		Previous: intentBinding(km, input.IntentPrevious, "prev slide"),
		First:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Sidebar:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "slides")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy slide")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func intentBinding(km input.KeyMap, intent input.Intent, desc string) key.Binding {
	keys := km.Keys(intent)
	label := strings.Join(keys, "/")
	if len(keys) > 3 {
		label = strings.Join(keys[:3], "/")
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// ShortHelp implements help.KeyMap.
func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Next, k.Previous, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Advance, k.Next, k.Previous},
		{k.First, k.Last, k.Sidebar},
		{k.Copy, k.Help, k.Quit},
	}
}
