package loader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLConverter rewrites an HTML page's content as markdown blocks.
type HTMLConverter struct{}

func (c *HTMLConverter) Convert(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{Title: baseTitle(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	w := &htmlWriter{}
	if body := findElement(root, "body"); body != nil {
		w.walk(body)
	} else {
		w.walk(root)
	}
	doc.Text = joinBlocks(w.blocks)
	return doc, nil
}

type htmlWriter struct {
	blocks []string
}

func (w *htmlWriter) add(block string) {
	w.blocks = append(w.blocks, block)
}

func (w *htmlWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if t := collapse(n.Data); t != "" {
			w.add(t)
		}
		return
	case html.ElementNode:
		if level := headingLevel(n.Data); level > 0 {
			if t := textContent(n); t != "" {
				w.add(strings.Repeat("#", level) + " " + t)
			}
			return
		}

		switch n.Data {
		case "script", "style", "nav", "footer", "header", "head", "noscript":
			return
		case "p", "blockquote", "figcaption", "dt", "dd":
			w.add(textContent(n))
			return
		case "ul", "ol":
			w.add(strings.Join(listLines(n, 0), "\n"))
			return
		case "pre":
			w.add(fencedCode(n))
			return
		case "img":
			w.add(imageMarkdown(n))
			return
		case "table":
			w.add(tableMarkdown(n))
			return
		case "hr":
			w.add("---")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func listLines(list *html.Node, depth int) []string {
	ordered := list.Data == "ol"
	indent := strings.Repeat("  ", depth)

	var lines []string
	num := 1
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var text strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			text.WriteString(" " + rawText(c))
		}
		lines = append(lines, indent+marker+collapse(text.String()))
		for _, sub := range nested {
			lines = append(lines, listLines(sub, depth+1)...)
		}
	}
	return lines
}

func fencedCode(pre *html.Node) string {
	lang := ""
	if code := findElement(pre, "code"); code != nil {
		for _, class := range strings.Fields(attr(code, "class")) {
			if l, ok := strings.CutPrefix(class, "language-"); ok {
				lang = l
				break
			}
		}
	}
	body := strings.Trim(rawText(pre), "\n")
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + body + "\n" + fence
}

func imageMarkdown(img *html.Node) string {
	src := attr(img, "src")
	if src == "" {
		return ""
	}
	alt := strings.NewReplacer("[", "", "]", "").Replace(attr(img, "alt"))
	return "![" + alt + "](" + src + ")"
}

func tableMarkdown(table *html.Node) string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	return pipeTable(rows[0], rows[1:], width)
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// rawText concatenates every text node under n.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return collapse(rawText(n))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
