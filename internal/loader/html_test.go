package loader

import (
	"strings"
	"testing"
)

func TestHTMLConverter_Blocks(t *testing.T) {
	input := `<html><head><title>Talk</title><style>p{}</style></head><body>
<nav>skip me</nav>
<h1>Intro</h1>
<p>Hello   <b>there</b>.</p>
<ul><li>one</li><li>two<ul><li>inner</li></ul></li></ul>
<hr>
<h2>Code</h2>
<pre><code class="language-go">fmt.Println("hi")
</code></pre>
<img src="a.png" alt="pic">
<table><tr><th>k</th><th>v</th></tr><tr><td>a|b</td><td>1</td></tr></table>
</body></html>`

	c := &HTMLConverter{}
	doc, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Talk" {
		t.Errorf("expected title %q, got %q", "Talk", doc.Title)
	}

	want := strings.Join([]string{
		"# Intro",
		"Hello there.",
		"- one\n- two\n  - inner",
		"---",
		"## Code",
		"```go\nfmt.Println(\"hi\")\n```",
		"![pic](a.png)",
		"| k | v |\n| --- | --- |\n| a\\|b | 1 |",
	}, "\n\n")
	if doc.Text != want {
		t.Errorf("text mismatch\n got: %q\nwant: %q", doc.Text, want)
	}
	if strings.Contains(doc.Text, "skip me") {
		t.Error("nav content should be skipped")
	}
}

func TestHTMLConverter_OrderedList(t *testing.T) {
	c := &HTMLConverter{}
	doc, err := c.Convert(strings.NewReader("<ol><li>a</li><li>b</li></ol>"), "list.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text != "1. a\n2. b" {
		t.Errorf("unexpected text %q", doc.Text)
	}
	if doc.Title != "list" {
		t.Errorf("expected filename title, got %q", doc.Title)
	}
}

func TestHTMLConverter_FenceLongerThanContent(t *testing.T) {
	c := &HTMLConverter{}
	doc, err := c.Convert(strings.NewReader("<pre>```\nx\n```</pre>"), "f.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(doc.Text, "````\n") || !strings.HasSuffix(doc.Text, "\n````") {
		t.Errorf("fence should outgrow embedded backticks, got %q", doc.Text)
	}
}
