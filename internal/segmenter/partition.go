package segmenter

import (
	"regexp"
	"strings"

	"github.com/dgallion1/stepdeck/internal/deck"
)

var (
	headingRe  = regexp.MustCompile(`^#{1,6}[ \t]+`)
	listItemRe = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
	imageRe    = regexp.MustCompile(`^!\[[^\]]*\]\([^)]*\)$`)
)

// Partition splits slide content into typed segments in line order. The first
// segment starts visible, every other segment starts hidden.
func Partition(content string) []deck.Segment {
	lines := splitLines(content)

	var segments []deck.Segment
	add := func(kind deck.Kind, span []string) {
		segments = append(segments, deck.Segment{
			ID:      deck.SegmentID(len(segments)),
			Kind:    kind,
			Content: strings.Join(span, "\n"),
			Visible: len(segments) == 0,
		})
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case isBlank(line):
			i++
		case openFence(line).open:
			end := fenceEnd(lines, i)
			add(deck.KindCode, lines[i:end])
			i = end
		case isTableStart(lines, i):
			end := tableEnd(lines, i)
			add(deck.KindTable, lines[i:end])
			i = end
		case headingRe.MatchString(line):
			add(deck.KindHeading, lines[i:i+1])
			i++
		case listItemRe.MatchString(line):
			end := listItemEnd(lines, i)
			add(deck.KindListItem, lines[i:end])
			i = end
		case imageRe.MatchString(strings.TrimSpace(line)):
			add(deck.KindImage, lines[i:i+1])
			i++
		default:
			add(deck.KindText, lines[i:i+1])
			i++
		}
	}
	return segments
}

// fenceEnd returns the index just past the fence that opens at lines[start].
// An unterminated fence runs to the end of the content.
func fenceEnd(lines []string, start int) int {
	fence := openFence(lines[start])
	for j := start + 1; j < len(lines); j++ {
		if fence.closedBy(lines[j]) {
			return j + 1
		}
	}
	return len(lines)
}

// isTableStart reports whether lines[i] is a header row followed by a valid
// delimiter row.
func isTableStart(lines []string, i int) bool {
	if i+1 >= len(lines) || !strings.Contains(lines[i], "|") {
		return false
	}
	return isDelimiterRow(lines[i+1])
}

func isDelimiterRow(line string) bool {
	if !strings.Contains(line, "|") {
		return false
	}
	rest := strings.Map(func(r rune) rune {
		switch r {
		case '|', '-', ':', ' ', '\t':
			return -1
		}
		return r
	}, line)
	return rest == ""
}

// tableEnd consumes the header, the delimiter and every following non-blank row
// containing a pipe.
func tableEnd(lines []string, start int) int {
	j := start + 2
	for j < len(lines) && !isBlank(lines[j]) && strings.Contains(lines[j], "|") {
		j++
	}
	return j
}

// listItemEnd absorbs following lines indented by at least two columns. A
// blank line ends the item, and so does a marker at the item's own depth or
// shallower, so siblings never merge. Deeper markers are sub-content.
func listItemEnd(lines []string, start int) int {
	base := indentWidth(lines[start])
	j := start + 1
	for ; j < len(lines); j++ {
		line := lines[j]
		indent := indentWidth(line)
		if isBlank(line) || indent < 2 {
			break
		}
		if listItemRe.MatchString(line) && indent <= base {
			break
		}
	}
	return j
}

// indentWidth measures leading whitespace, expanding tabs to four-column stops.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4 - width%4
		default:
			return width
		}
	}
	return width
}
