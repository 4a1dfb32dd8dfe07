package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// parseDocument parses a whole HTML document for read-only queries.
func parseDocument(data []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return doc, nil
}

// mustSelector compiles a selector that is known to be valid at build time.
func mustSelector(sel string) cascadia.Selector {
	return cascadia.MustCompile(sel)
}

// selector compiles a user-supplied selector.
func selector(sel string) (cascadia.Selector, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("bad selector %q: %w", sel, err)
	}
	return s, nil
}

// queryFirst returns the first descendant of n matching sel, or nil.
func queryFirst(n *html.Node, sel cascadia.Matcher) *html.Node {
	if n == nil {
		return nil
	}
	return cascadia.Query(n, sel)
}

// isElement reports whether n is an element with one of the given names.
func isElement(n *html.Node, names ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	name := dom.NodeName(n)
	for _, want := range names {
		if name == want {
			return true
		}
	}
	return false
}

// invisible elements contribute no text.
func invisible(n *html.Node) bool {
	return isElement(n, "script", "style", "template", "noscript", "head")
}

// textParts returns every non-empty text node under n, trimmed, in document order.
func textParts(n *html.Node) []string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		if invisible(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return parts
}

// visibleText joins the trimmed text nodes under n with sep and collapses
// runs of whitespace to single spaces.
func visibleText(n *html.Node, sep string) string {
	if n == nil {
		return ""
	}
	return collapseSpace(strings.Join(textParts(n), sep))
}

// collapseSpace trims s and replaces whitespace runs with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// headingText returns the trimmed text of the first element matching sel.
func headingText(doc *html.Node, sel cascadia.Matcher) string {
	n := queryFirst(doc, sel)
	if n == nil {
		return ""
	}
	return collapseSpace(dom.CollectText(n))
}

// containsMedia reports whether n is, or contains, one of the media elements.
func containsMedia(n *html.Node, media ...string) bool {
	if isElement(n, media...) {
		return true
	}
	return dom.ContainsNode(n, func(c *html.Node) bool { return isElement(c, media...) })
}

// detachChildren removes and returns all children of n.
func detachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		out = append(out, c)
	}
	return out
}

func newElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
