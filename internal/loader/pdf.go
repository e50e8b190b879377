package loader

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter turns each PDF page into its own slide. It tries the Go
// library first and optionally falls back to pdftotext.
type PDFConverter struct {
	FallbackPdftotext bool
}

func (c *PDFConverter) Convert(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf opens by path, so spool to a temp file.
	tmp, err := os.CreateTemp("", "stepdeck-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && c.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &Document{
		Title: baseTitle(filename),
		Text:  pagesMarkdown(strings.Split(text, "\f")),
	}, nil
}

// pagesMarkdown titles each non-blank page and separates pages with rules.
func pagesMarkdown(pages []string) string {
	var slides []string
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		slides = append(slides, fmt.Sprintf("## Page %d\n\n%s", i+1, page))
	}
	return strings.Join(slides, "\n\n---\n\n")
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
