package deck

import "fmt"

// Kind is the structural category of a segment.
type Kind string

const (
	KindHeading  Kind = "heading"
	KindText     Kind = "text"
	KindCode     Kind = "code"
	KindListItem Kind = "listItem"
	KindImage    Kind = "image"
	KindTable    Kind = "table"
)

// DefaultTitle names slides that do not start with a heading.
const DefaultTitle = "Untitled"

// Slide is one presentation unit produced by a segmentation pass.
type Slide struct {
	ID         string    `json:"id" yaml:"id"`                   // "slide-<n>", position derived
	Title      string    `json:"title" yaml:"title"`             // Heading text or DefaultTitle
	RawContent string    `json:"raw_content" yaml:"raw_content"` // Source text of the slide
	Segments   []Segment `json:"segments" yaml:"segments"`       // Reveal units in document order
}

// Segment is the smallest independently revealable unit of a slide.
type Segment struct {
	ID      string `json:"id" yaml:"id"`           // "segment-<n>", unique within its slide
	Kind    Kind   `json:"kind" yaml:"kind"`       // Structural category
	Content string `json:"content" yaml:"content"` // Verbatim source lines
	Visible bool   `json:"visible" yaml:"visible"` // Reveal state
}

// SlideID returns the id of the slide at position n.
func SlideID(n int) string {
	return fmt.Sprintf("slide-%d", n)
}

// SegmentID returns the id of the segment at position n within its slide.
func SegmentID(n int) string {
	return fmt.Sprintf("segment-%d", n)
}

// Clone returns a deep copy of the slide so callers can never alias segment storage.
func (s Slide) Clone() Slide {
	out := s
	if s.Segments != nil {
		out.Segments = make([]Segment, len(s.Segments))
		copy(out.Segments, s.Segments)
	}
	return out
}

// Counts returns the number of slides and the total number of segments.
func Counts(slides []Slide) (int, int) {
	segments := 0
	for _, s := range slides {
		segments += len(s.Segments)
	}
	return len(slides), segments
}
