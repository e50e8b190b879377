// Package loader converts source files into the markdown text a deck is
// segmented from.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is a converted source: a display title and markdown text.
type Document struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Converter turns raw file bytes into a Document.
type Converter interface {
	Convert(r io.Reader, filename string) (*Document, error)
}

// Options tunes converters that have optional behaviour.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions that can be presented.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the converter for a filename.
func ForFile(filename string) (Converter, error) {
	return forFile(filename, Options{})
}

func forFile(filename string, opts Options) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".csv":
		return &CSVConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".pdf":
		return &PDFConverter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Load picks a converter for filename and converts data with it.
func Load(data []byte, filename string, opts Options) (*Document, error) {
	conv, err := forFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := conv.Convert(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", filepath.Base(filename), err)
	}
	return doc, nil
}

// baseTitle derives a title from a filename without directory or extension.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// joinBlocks joins non-empty markdown blocks with blank lines.
func joinBlocks(blocks []string) string {
	kept := blocks[:0:0]
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
