package presenter

import (
	"github.com/dgallion1/stepdeck/internal/deck"
	"github.com/dgallion1/stepdeck/internal/render"
)

// RenderedSegment is one segment's display markup.
type RenderedSegment struct {
	ID      string    `json:"id"`
	Kind    deck.Kind `json:"kind"`
	Visible bool      `json:"visible"`
	HTML    string    `json:"html"`
	// Fallback is set when the renderer failed and the literal was used.
	Fallback bool `json:"fallback,omitempty"`
}

// RenderSegment renders raw segment content. Renderer failures are logged and
// replaced with the literal fallback.
func (p *Presenter) RenderSegment(content string) string {
	out, _ := p.renderSegment(content)
	return out
}

func (p *Presenter) renderSegment(content string) (string, bool) {
	out, err := render.Safe(p.renderer, content)
	if err != nil {
		p.log.Warn("segment render failed, using literal", "error", err)
		return out, true
	}
	return out, false
}

// RenderSlide renders every segment of slide i, hidden ones included.
// A failing segment falls back individually.
func (p *Presenter) RenderSlide(i int) ([]RenderedSegment, bool) {
	slide, ok := p.store.Slide(i)
	if !ok {
		return nil, false
	}
	out := make([]RenderedSegment, len(slide.Segments))
	for j, seg := range slide.Segments {
		html, fellBack := p.renderSegment(seg.Content)
		out[j] = RenderedSegment{
			ID:       seg.ID,
			Kind:     seg.Kind,
			Visible:  seg.Visible,
			HTML:     html,
			Fallback: fellBack,
		}
	}
	return out, true
}
