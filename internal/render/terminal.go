package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown to ANSI-styled text with Glamour.
type Terminal struct {
	mu    sync.Mutex
	r     *glamour.TermRenderer
	style string
	width int
	cache *Cache
	stats *Stats
}

// NewTerminal creates a terminal renderer. style is "auto", a built-in Glamour
// style name, or a path to a JSON style file.
func NewTerminal(style string, width int, cache *Cache, stats *Stats) (*Terminal, error) {
	t := &Terminal{style: style, cache: cache, stats: stats}
	if err := t.SetWidth(width); err != nil {
		return nil, err
	}
	return t, nil
}

// SetWidth rebuilds the renderer for a new word-wrap width.
func (t *Terminal) SetWidth(width int) error {
	if width < 20 {
		width = 20
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.r != nil && width == t.width {
		return nil
	}

	r, err := glamour.NewTermRenderer(styleOptions(t.style, width)...)
	if err != nil {
		return fmt.Errorf("create glamour renderer: %w", err)
	}
	t.r = r
	t.width = width
	return nil
}

// Width returns the current word-wrap width.
func (t *Terminal) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *Terminal) Render(content string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := CacheKey("term", t.style, strconv.Itoa(t.width), content)
	if out, ok := t.cache.Get(key); ok {
		t.stats.RecordCacheHit()
		return out, nil
	}

	start := time.Now()
	out, err := t.r.Render(content)
	if err != nil {
		t.stats.RecordFallback()
		return "", fmt.Errorf("glamour render: %w", err)
	}
	out = strings.Trim(out, "\n")
	t.stats.Record(time.Since(start))

	t.cache.Set(key, out)
	return out, nil
}

// Fallback shows the raw content unchanged.
func (t *Terminal) Fallback(content string) string {
	return content
}

func styleOptions(style string, width int) []glamour.TermRendererOption {
	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(width),
	}

	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	case "dark", "light", "notty", "dracula", "pink", "ascii", "tokyo-night":
		opts = append(opts, glamour.WithStandardStyle(strings.ToLower(strings.TrimSpace(style))))
	default:
		// A path to a JSON style; anything else falls back to auto.
		if _, err := os.Stat(style); err == nil {
			opts = append(opts, glamour.WithStylesFromJSONFile(style))
		} else {
			opts = append(opts, glamour.WithAutoStyle())
		}
	}
	return opts
}
