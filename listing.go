package insider

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ParseLinks parses a directory-listing page and returns the href of every
// anchor inside the first table element, in document order. A page without a
// table is a valid terminal state and yields no links, not an error.
func ParseLinks(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	table := findFirstTable(doc)
	if table == nil {
		return nil, nil
	}
	return collectHrefs(table), nil
}

// FindIndexLink scans links for the filing's index page: the link whose
// `-`-separated last segment is exactly "index.html". The first match in
// sequence order wins; false means the filing folder has no index page and
// should be skipped.
func FindIndexLink(links []string) (string, bool) {
	for _, link := range links {
		parts := strings.Split(link, "-")
		if parts[len(parts)-1] == "index.html" {
			return link, true
		}
	}
	return "", false
}

// findFirstTable returns the first table element in the document, or nil.
func findFirstTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if table := findFirstTable(c); table != nil {
			return table
		}
	}
	return nil
}

// collectHrefs collects the href attribute of every anchor beneath n,
// preserving document order. Anchors without an href are skipped.
func collectHrefs(n *html.Node) []string {
	var hrefs []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := anchorHref(n); ok {
				hrefs = append(hrefs, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return hrefs
}

func anchorHref(n *html.Node) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return attr.Val, true
		}
	}
	return "", false
}

// findRows returns every tr element beneath n in document order.
func findRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return rows
}

// findCells returns the td elements of a single row.
func findCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "td" {
			cells = append(cells, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		f(c)
	}
	return cells
}

// extractText returns all text content under a node
func extractText(n *html.Node) string {
	var buf strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(buf.String())
}

// firstAnchor returns the first anchor element beneath n, or nil.
func firstAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := firstAnchor(c); a != nil {
			return a
		}
	}
	return nil
}
