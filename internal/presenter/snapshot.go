package presenter

import "github.com/dgallion1/stepdeck/internal/deck"

// Snapshot is a read-only view of presentation state.
type Snapshot struct {
	Loaded            bool         `json:"loaded"`
	CurrentSlideIndex int          `json:"current_slide_index"`
	TotalSlides       int          `json:"total_slides"`
	Progress          int          `json:"progress"`
	HasHidden         bool         `json:"has_hidden"`
	Slides            []SlideState `json:"slides"`
}

// SlideState summarises one slide.
type SlideState struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Segments []SegmentState `json:"segments"`
}

// SegmentState is a segment's kind and live visibility.
type SegmentState struct {
	ID      string    `json:"id"`
	Kind    deck.Kind `json:"kind"`
	Visible bool      `json:"visible"`
}

// Snapshot captures the current state.
func (p *Presenter) Snapshot() Snapshot {
	snap := Snapshot{
		Loaded:            p.loaded,
		CurrentSlideIndex: p.store.CurrentSlideIndex(),
		TotalSlides:       p.store.TotalSlides(),
		Progress:          p.store.Progress(),
		HasHidden:         p.store.HasHidden(),
		Slides:            make([]SlideState, 0, p.store.TotalSlides()),
	}
	for _, slide := range p.store.Slides() {
		state := SlideState{
			ID:       slide.ID,
			Title:    slide.Title,
			Segments: make([]SegmentState, len(slide.Segments)),
		}
		for i, seg := range slide.Segments {
			state.Segments[i] = SegmentState{ID: seg.ID, Kind: seg.Kind, Visible: seg.Visible}
		}
		snap.Slides = append(snap.Slides, state)
	}
	return snap
}
