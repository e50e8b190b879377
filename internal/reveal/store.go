package reveal

import (
	"math"

	"github.com/dgallion1/stepdeck/internal/deck"
)

// Store holds the active slide index and the per-slide segment visibility.
// Reveal is monotonic and contiguous within a slide; navigating to a different
// slide resets that slide to its first segment.
//
// Store is not safe for concurrent use.
type Store struct {
	slides     []deck.Slide
	current    int
	visibility map[string][]bool
}

// NewStore creates a store positioned on the first slide.
func NewStore(slides []deck.Slide) *Store {
	s := &Store{}
	s.Reset(slides)
	return s
}

// Reset discards all state and starts over with slides. Every slide begins
// with only its first segment visible.
func (s *Store) Reset(slides []deck.Slide) {
	s.slides = slides
	s.current = 0
	s.visibility = make(map[string][]bool, len(slides))
	for _, slide := range slides {
		s.visibility[slide.ID] = initialVector(len(slide.Segments))
	}
}

// GoToSlide clamps target into range and activates it. It reports whether the
// active slide changed. Reactivating the current slide keeps its progress.
func (s *Store) GoToSlide(target int) bool {
	if len(s.slides) == 0 {
		return false
	}
	target = max(0, min(target, len(s.slides)-1))
	if target == s.current {
		return false
	}
	slide := s.slides[target]
	s.visibility[slide.ID] = initialVector(len(slide.Segments))
	s.current = target
	return true
}

// Next activates the following slide.
func (s *Store) Next() bool {
	return s.GoToSlide(s.current + 1)
}

// Previous activates the preceding slide.
func (s *Store) Previous() bool {
	return s.GoToSlide(s.current - 1)
}

// RevealNext shows the lowest-index hidden segment of the active slide and
// reports whether one was revealed.
func (s *Store) RevealNext() bool {
	vec := s.currentVector()
	for i, visible := range vec {
		if !visible {
			vec[i] = true
			return true
		}
	}
	return false
}

// HasHidden reports whether the active slide still has hidden segments.
func (s *Store) HasHidden() bool {
	for _, visible := range s.currentVector() {
		if !visible {
			return true
		}
	}
	return false
}

// Progress returns the visible share of the active slide's segments as a
// rounded percentage. A slide without segments, or no slide at all, is 100.
func (s *Store) Progress() int {
	vec := s.currentVector()
	if len(vec) == 0 {
		return 100
	}
	visible := 0
	for _, v := range vec {
		if v {
			visible++
		}
	}
	return int(math.Round(float64(visible) / float64(len(vec)) * 100))
}

// CurrentSlideIndex returns the active slide index.
func (s *Store) CurrentSlideIndex() int {
	return s.current
}

// TotalSlides returns the number of slides.
func (s *Store) TotalSlides() int {
	return len(s.slides)
}

// Visibility returns a copy of the visibility vector for slideID.
func (s *Store) Visibility(slideID string) []bool {
	vec, ok := s.visibility[slideID]
	if !ok {
		return nil
	}
	out := make([]bool, len(vec))
	copy(out, vec)
	return out
}

// Slide returns a copy of slide i with live visibility flags.
func (s *Store) Slide(i int) (deck.Slide, bool) {
	if i < 0 || i >= len(s.slides) {
		return deck.Slide{}, false
	}
	out := s.slides[i].Clone()
	vec := s.visibility[out.ID]
	for j := range out.Segments {
		out.Segments[j].Visible = j < len(vec) && vec[j]
	}
	return out, true
}

// Slides returns copies of every slide with live visibility flags.
func (s *Store) Slides() []deck.Slide {
	out := make([]deck.Slide, 0, len(s.slides))
	for i := range s.slides {
		slide, _ := s.Slide(i)
		out = append(out, slide)
	}
	return out
}

func (s *Store) currentVector() []bool {
	if s.current < 0 || s.current >= len(s.slides) {
		return nil
	}
	return s.visibility[s.slides[s.current].ID]
}

// initialVector is "first segment visible, rest hidden".
func initialVector(n int) []bool {
	vec := make([]bool, n)
	if n > 0 {
		vec[0] = true
	}
	return vec
}
