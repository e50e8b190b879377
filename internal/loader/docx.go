package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXConverter handles .docx files. Heading styles become ATX headings.
type DOCXConverter struct{}

func (c *DOCXConverter) Convert(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReaderAt plus size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "stepdeck-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	parsed, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	var blocks []string
	titled := false
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			if !titled {
				doc.Title = text
				titled = true
			}
			blocks = append(blocks, strings.Repeat("#", level)+" "+text)
			continue
		}
		blocks = append(blocks, text)
	}
	doc.Text = joinBlocks(blocks)
	return doc, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return styleLevel(para.Properties.Style.Val)
}

func styleLevel(name string) int {
	style := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if style == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
