package render

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTML renders markdown to sanitised HTML.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *Cache
	stats  *Stats
}

// NewHTML creates an HTML renderer. cache and stats may be nil.
func NewHTML(cache *Cache, stats *Stats) *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithXHTML()),
		),
		policy: bluemonday.UGCPolicy(),
		cache:  cache,
		stats:  stats,
	}
}

func (h *HTML) Render(content string) (string, error) {
	key := CacheKey("html", content)
	if out, ok := h.cache.Get(key); ok {
		h.stats.RecordCacheHit()
		return out, nil
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(content), &buf); err != nil {
		h.stats.RecordFallback()
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	out := string(h.policy.SanitizeBytes(buf.Bytes()))
	h.stats.Record(time.Since(start))

	h.cache.Set(key, out)
	return out, nil
}

// Fallback escapes the raw content into a preformatted block.
func (h *HTML) Fallback(content string) string {
	return `<pre class="segment-raw">` + html.EscapeString(content) + `</pre>`
}
