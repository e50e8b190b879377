package loader

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter passes markdown through and takes the title from the
// first heading.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title: baseTitle(filename),
		Text:  string(src),
	}
	if title := firstHeading(src); title != "" {
		doc.Title = title
	}
	return doc, nil
}

func firstHeading(src []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(string(h.Text(src)))
			if title != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return title
}
