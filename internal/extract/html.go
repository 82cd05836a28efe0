// Package extract turns raw documents (HTML, DOCX, PDF) into plain text.
package extract

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Page is the text content of an HTML document
type Page struct {
	Title string
	Text  string // One line per content element
}

var contentTags = map[string]bool{
	"p": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTML extracts the title and the text of paragraphs, list items and
// headings. When those hold no text, all visible text is used instead.
//
// Extraction is limited to the main content region when the page marks one
// (a MediaWiki content div, then <article>, then <main>).
func HTML(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &Page{Title: findTitle(doc)}
	root := contentRoot(doc)
	var lines []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case skipped(n.Data):
				return
			case contentTags[n.Data]:
				if text := nodeText(n); text != "" {
					lines = append(lines, text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	page.Text = strings.Join(lines, "\n")
	if strings.TrimSpace(page.Text) == "" {
		page.Text = visibleText(root)
	}
	return page, nil
}

func findTitle(doc *html.Node) string {
	if n := findFirst(doc, func(n *html.Node) bool { return n.Data == "title" }); n != nil {
		return nodeText(n)
	}
	return ""
}

// contentRoot returns the main content node of doc, or doc itself
func contentRoot(doc *html.Node) *html.Node {
	matchers := []func(*html.Node) bool{
		func(n *html.Node) bool { return attr(n, "id") == "mw-content-text" || hasClass(n, "mw-parser-output") },
		func(n *html.Node) bool { return n.Data == "article" },
		func(n *html.Node) bool { return n.Data == "main" },
	}
	for _, match := range matchers {
		if n := findFirst(doc, match); n != nil && strings.TrimSpace(nodeText(n)) != "" {
			return n
		}
	}
	return doc
}

// findFirst returns the first element in document order accepted by match
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText joins the trimmed text nodes under n with single spaces
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped(n.Data) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// visibleText extracts text nodes from the body, skipping scripts/styles
func visibleText(doc *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (skipped(n.Data) || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " ")
}

func skipped(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "template":
		return true
	}
	return false
}
