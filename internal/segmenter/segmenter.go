package segmenter

import (
	"regexp"
	"strings"

	"github.com/dgallion1/stepdeck/internal/deck"
)

var (
	// Level-1 and level-2 ATX headings start a new slide.
	slideHeadingRe = regexp.MustCompile(`^#{1,2}[ \t]+`)
	// Trailing closing sequence of an ATX heading, e.g. "## Title ##".
	closingHashesRe = regexp.MustCompile(`[ \t]+#+[ \t]*$`)
)

// Segment partitions a document into slides, each holding its ordered segments.
// It never fails: an empty or whitespace-only document yields no slides and a
// document without any boundary yields a single slide.
func Segment(document string) []deck.Slide {
	lines := splitLines(document)

	var slides []deck.Slide
	for _, section := range splitSections(lines) {
		for _, part := range splitSlides(section) {
			content := strings.Join(trimBlankLines(part.lines), "\n")
			if strings.TrimSpace(content) == "" {
				continue
			}
			slides = append(slides, deck.Slide{
				ID:         deck.SlideID(len(slides)),
				Title:      part.title,
				RawContent: content,
				Segments:   Partition(content),
			})
		}
	}
	return slides
}

type slidePart struct {
	title string
	lines []string
}

// splitLines normalises line endings and splits the document into lines.
func splitLines(document string) []string {
	document = strings.ReplaceAll(document, "\r\n", "\n")
	document = strings.ReplaceAll(document, "\r", "\n")
	return strings.Split(document, "\n")
}

// splitSections breaks lines on horizontal rules that stand alone between blank lines.
func splitSections(lines []string) [][]string {
	var sections [][]string
	var current []string
	var fence fenceState

	for i, line := range lines {
		if fence.open {
			fence.observe(line)
			current = append(current, line)
			continue
		}
		if isRule(line) && blankOrEdge(lines, i-1) && blankOrEdge(lines, i+1) {
			sections = append(sections, current)
			current = nil
			continue
		}
		fence.observe(line)
		current = append(current, line)
	}
	return append(sections, current)
}

// splitSlides breaks a section at level-1/level-2 headings outside code fences.
func splitSlides(section []string) []slidePart {
	var parts []slidePart
	current := slidePart{title: deck.DefaultTitle}
	var fence fenceState

	for _, line := range section {
		if !fence.open && slideHeadingRe.MatchString(line) {
			parts = append(parts, current)
			current = slidePart{title: headingTitle(line)}
		}
		fence.observe(line)
		current.lines = append(current.lines, line)
	}
	return append(parts, current)
}

func headingTitle(line string) string {
	title := strings.TrimLeft(strings.TrimSpace(line), "#")
	title = closingHashesRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title == "" {
		return deck.DefaultTitle
	}
	return title
}

func isRule(line string) bool {
	switch strings.TrimSpace(line) {
	case "---", "***", "___":
		return true
	}
	return false
}

func blankOrEdge(lines []string, i int) bool {
	if i < 0 || i >= len(lines) {
		return true
	}
	return isBlank(lines[i])
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// trimBlankLines drops leading and trailing whitespace-only lines.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}
