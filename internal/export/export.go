// Package export writes a deck as a single self-contained HTML page.
package export

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dgallion1/stepdeck/internal/deck"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/theme"
	"github.com/dgallion1/stepdeck/internal/wheel"
)

//go:embed deck.html.tmpl
var deckTemplate string

var tmpl = template.Must(template.New("deck").Parse(deckTemplate))

// Options controls page appearance and the in-page wheel gesture.
type Options struct {
	Title    string
	Theme    theme.Gradient
	FontSize int
	Wheel    wheel.Config
}

type pageData struct {
	Title      string
	Background template.CSS
	FontSize   int
	Slides     []slideData
	Wheel      wheelData
}

type slideData struct {
	ID       string
	Title    string
	Current  bool
	Segments []segmentData
}

type segmentData struct {
	ID      string
	Kind    deck.Kind
	Visible bool
	HTML    template.HTML
}

type wheelData struct {
	Threshold   float64 `json:"threshold"`
	IdleResetMs int64   `json:"idleResetMs"`
	CooldownMs  int64   `json:"cooldownMs"`
}

// Write renders every slide of p, hidden segments included, into one page.
// The presenter's renderer must produce safe HTML.
func Write(w io.Writer, p *presenter.Presenter, opts Options) error {
	if opts.Wheel == (wheel.Config{}) {
		opts.Wheel = wheel.DefaultConfig()
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 36
	}
	if opts.Theme.From == "" {
		opts.Theme, _ = theme.Lookup(theme.Default)
	}

	snap := p.Snapshot()
	data := pageData{
		Title:      opts.Title,
		Background: template.CSS(opts.Theme.CSS()),
		FontSize:   opts.FontSize,
		Wheel: wheelData{
			Threshold:   opts.Wheel.Threshold,
			IdleResetMs: opts.Wheel.IdleReset.Milliseconds(),
			CooldownMs:  opts.Wheel.Cooldown.Milliseconds(),
		},
	}
	if data.Title == "" && len(snap.Slides) > 0 {
		data.Title = snap.Slides[0].Title
	}

	for i, s := range snap.Slides {
		rendered, ok := p.RenderSlide(i)
		if !ok {
			continue
		}
		sd := slideData{ID: s.ID, Title: s.Title, Current: i == snap.CurrentSlideIndex}
		for _, seg := range rendered {
			sd.Segments = append(sd.Segments, segmentData{
				ID:      seg.ID,
				Kind:    seg.Kind,
				Visible: seg.Visible,
				HTML:    template.HTML(seg.HTML),
			})
		}
		data.Slides = append(data.Slides, sd)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render deck page: %w", err)
	}
	return nil
}
