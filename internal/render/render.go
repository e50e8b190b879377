// Package render converts raw segment content into display markup.
package render

import (
	"fmt"
)

// Renderer converts one segment's raw content into display markup.
type Renderer interface {
	Render(content string) (string, error)
	// Fallback is the safe literal rendering used when Render fails.
	Fallback(content string) string
}

// Safe renders content and never fails: errors and panics from r are replaced
// by r.Fallback(content). The returned error describes what was replaced.
func Safe(r Renderer, content string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.Fallback(content)
			err = fmt.Errorf("render panic: %v", rec)
		}
	}()
	out, err = r.Render(content)
	if err != nil {
		return r.Fallback(content), err
	}
	return out, nil
}

// Plain renders content verbatim. It is the renderer of last resort.
type Plain struct{}

func (Plain) Render(content string) (string, error) { return content, nil }

func (Plain) Fallback(content string) string { return content }
