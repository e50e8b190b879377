package loader

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// orderedMarkerRe matches text that markdown would read as an ordered list item.
var orderedMarkerRe = regexp.MustCompile(`^\d{1,9}[.)](\s|$)`)

// TextConverter handles plain text files. Each form-feed separated page
// becomes a slide and each paragraph a segment. Lines that markdown would
// read as structure (headings, lists, quotes, fences, tables) are escaped so
// the text is shown as written.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var pages []string
	for _, page := range strings.Split(text, "\f") {
		if body := joinBlocks(textParagraphs(page)); body != "" {
			pages = append(pages, body)
		}
	}
	return &Document{
		Title: baseTitle(filename),
		Text:  strings.Join(pages, "\n\n---\n\n"),
	}, nil
}

// textParagraphs groups lines into paragraphs; blank and whitespace-only
// lines separate them.
func textParagraphs(page string) []string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(page, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, escapeLine(line))
	}
	flush()
	return paragraphs
}

// escapeLine drops indentation, which markdown would treat as code, and
// backslash-escapes a leading block marker.
func escapeLine(line string) string {
	line = strings.TrimLeft(line, " \t")
	line = strings.TrimRight(line, " \t")
	switch {
	case line == "":
		return line
	case strings.ContainsRune("#>-*+|=_<", rune(line[0])),
		strings.HasPrefix(line, "```"), strings.HasPrefix(line, "~~~"):
		return `\` + line
	case orderedMarkerRe.MatchString(line):
		i := strings.IndexAny(line, ".)")
		return line[:i] + `\` + line[i:]
	}
	return line
}
