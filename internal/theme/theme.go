// Package theme lists the deck background gradients shared by the HTML export
// and the terminal presenter.
package theme

import (
	"fmt"
	"strings"
)

// Gradient is a two-stop 135° background.
type Gradient struct {
	Name string `json:"name" yaml:"name"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Default is used when no theme is configured.
const Default = "azure-lime"

// Gradients are the selectable backgrounds, in display order.
var Gradients = []Gradient{
	{"azure-lime", "#74A5FF", "#CEFF7E"},
	{"rose-sky", "#FF74A4", "#7ECEFF"},
	{"violet-sun", "#A474FF", "#FFE97E"},
	{"mint-indigo", "#74FFD1", "#7E84FF"},
	{"coral-aqua", "#FF9D74", "#7EFFD4"},
	{"jade-salmon", "#74FFAE", "#FF7E7E"},
	{"blush-ice", "#FF768D", "#AEFFF8"},
	{"iris-lemon", "#8274FF", "#FFEF72"},
	{"orchid-amber", "#D874FF", "#FFCE72"},
	{"pink-spring", "#FF74B7", "#72FFBD"},
	{"scarlet-cloud", "#FF7476", "#8DCCFF"},
	{"tangerine-cyan", "#FFAE5E", "#85FBFF"},
	{"grass-lilac", "#56D413", "#CBACFF"},
	{"ocean-seafoam", "#226EE0", "#75FF9E"},
}

// Lookup finds a gradient by name, case-insensitively.
func Lookup(name string) (Gradient, error) {
	for _, g := range Gradients {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g, nil
		}
	}
	return Gradient{}, fmt.Errorf("unknown theme %q", name)
}

// Names lists the gradient names.
func Names() []string {
	names := make([]string, len(Gradients))
	for i, g := range Gradients {
		names[i] = g.Name
	}
	return names
}

// CSS is the gradient as a CSS background value.
func (g Gradient) CSS() string {
	return fmt.Sprintf("linear-gradient(135deg, %s, %s)", g.From, g.To)
}
