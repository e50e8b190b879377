package render

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type failingRenderer struct {
	err   error
	panic bool
}

func (f failingRenderer) Render(content string) (string, error) {
	if f.panic {
		panic("boom")
	}
	return "", f.err
}

func (failingRenderer) Fallback(content string) string { return "raw:" + content }

func TestSafeReturnsFallbackOnError(t *testing.T) {
	out, err := Safe(failingRenderer{err: errors.New("bad input")}, "x")
	if err == nil {
		t.Fatal("expected error to be reported")
	}
	if out != "raw:x" {
		t.Fatalf("out = %q, want fallback", out)
	}
}

func TestSafeRecoversPanic(t *testing.T) {
	out, err := Safe(failingRenderer{panic: true}, "y")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want panic message", err)
	}
	if out != "raw:y" {
		t.Fatalf("out = %q, want fallback", out)
	}
}

func TestSafePassesThroughSuccess(t *testing.T) {
	out, err := Safe(Plain{}, "z")
	if err != nil || out != "z" {
		t.Fatalf("Safe(Plain) = %q, %v", out, err)
	}
}

func TestHTMLRendersGFM(t *testing.T) {
	r := NewHTML(nil, nil)

	out, err := r.Render("| a | b |\n| - | - |\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<td>1</td>") {
		t.Fatalf("table not rendered: %q", out)
	}

	out, err = r.Render("~~gone~~ **bold**")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<del>gone</del>") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("inline markup not rendered: %q", out)
	}
}

func TestHTMLSanitisesOutput(t *testing.T) {
	r := NewHTML(nil, nil)
	out, err := r.Render(`[click](javascript:alert(1))`)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe link survived: %q", out)
	}

	out, err = r.Render("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script survived: %q", out)
	}
}

func TestHTMLFallbackEscapes(t *testing.T) {
	r := NewHTML(nil, nil)
	got := r.Fallback("<b>&</b>")
	want := `<pre class="segment-raw">&lt;b&gt;&amp;&lt;/b&gt;</pre>`
	if got != want {
		t.Fatalf("Fallback = %q, want %q", got, want)
	}
}

func TestHTMLUsesCache(t *testing.T) {
	cache := NewCache(time.Minute, time.Minute)
	stats := NewStats(time.Minute)
	r := NewHTML(cache, stats)

	first, err := r.Render("# Title")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := r.Render("# Title")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Fatalf("cached output differs: %q vs %q", first, second)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.Len())
	}

	snap := stats.Snapshot()
	if snap.Count != 1 || snap.CacheHits != 1 {
		t.Fatalf("stats = %+v, want 1 render and 1 cache hit", snap)
	}
}

func TestTerminalRendersText(t *testing.T) {
	r, err := NewTerminal("notty", 60, NewCache(0, time.Minute), nil)
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	out, err := r.Render("hello **world**")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Fatalf("unexpected output %q", out)
	}
	if r.Fallback("raw") != "raw" {
		t.Fatal("terminal fallback should return content unchanged")
	}
}

func TestTerminalSetWidthClampsMinimum(t *testing.T) {
	r, err := NewTerminal("notty", 5, nil, nil)
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	if r.Width() != 20 {
		t.Fatalf("width = %d, want 20", r.Width())
	}
	if err := r.SetWidth(80); err != nil {
		t.Fatalf("SetWidth: %v", err)
	}
	if r.Width() != 80 {
		t.Fatalf("width = %d, want 80", r.Width())
	}
}

func TestCacheKeyDistinguishesParts(t *testing.T) {
	if CacheKey("html", "a") == CacheKey("term", "a") {
		t.Fatal("variant should change the key")
	}
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Fatal("part boundaries should change the key")
	}
	if CacheKey("html", "a") != CacheKey("html", "a") {
		t.Fatal("key should be deterministic")
	}
}

func TestNilCacheIsUsable(t *testing.T) {
	var c *Cache
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Fatal("nil cache should never hit")
	}
	if c.Len() != 0 {
		t.Fatal("nil cache should be empty")
	}
}
