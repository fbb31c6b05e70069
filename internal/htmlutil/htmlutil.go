// Package htmlutil holds the small DOM helpers shared by the index synthesizer
// and the text linker: whole-file parse and render, attribute and text access,
// CSS selector queries, and fragment parsing.
package htmlutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFile reads and parses a whole HTML document.
func ParseFile(path string) (*html.Node, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a whole HTML document from memory.
func Parse(data []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Render serializes a document.
func Render(doc *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile serializes doc and overwrites path.
func WriteFile(path string, doc *html.Node) error {
	data, err := Render(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) // #nosec G306 -- generated documentation is world-readable
}

// Attr retrieves an attribute value from an element node.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces an attribute on an element node.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Text returns the concatenated, trimmed text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == tag
}

// HasAncestor reports whether any ancestor of n is an element with one of the tags.
func HasAncestor(n *html.Node, tags ...atom.Atom) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		for _, t := range tags {
			if p.DataAtom == t {
				return true
			}
		}
	}
	return false
}

// Children returns the element children of n with the given tag.
func Children(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every node under root (root included) satisfying match, in document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// FirstAnchorText returns the text of the first <a> under n, or "" when n has none.
func FirstAnchorText(n *html.Node) string {
	if as := FindAll(n, func(c *html.Node) bool { return IsElement(c, atom.A) }); len(as) > 0 {
		return Text(as[0])
	}
	return ""
}

// FirstAnchorHref returns the href of the first <a> under n.
func FirstAnchorHref(n *html.Node) string {
	if as := FindAll(n, func(c *html.Node) bool { return IsElement(c, atom.A) }); len(as) > 0 {
		return Attr(as[0], "href")
	}
	return ""
}

// Selector is a compiled CSS selector.
type Selector struct {
	raw string
	sel cascadia.Selector
}

// Compile compiles a CSS selector.
func Compile(raw string) (Selector, error) {
	sel, err := cascadia.Compile(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("compile selector %q: %w", raw, err)
	}
	return Selector{raw: raw, sel: sel}, nil
}

// MustCompile compiles a selector known to be valid at build time.
func MustCompile(raw string) Selector {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s Selector) String() string { return s.raw }

// All returns every match under root in document order.
func (s Selector) All(root *html.Node) []*html.Node {
	return s.sel.MatchAll(root)
}

// First returns the first match under root or nil.
func (s Selector) First(root *html.Node) *html.Node {
	return s.sel.MatchFirst(root)
}

// ParseFragment parses markup in the context of parent and returns the
// resulting detached element nodes. Whitespace-only text between them is dropped.
func ParseFragment(markup string, parent *html.Node) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	var out []*html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}

// NewElement creates a detached element node.
func NewElement(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attrs}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ReplaceChildren detaches every child of parent and appends children in order.
func ReplaceChildren(parent *html.Node, children []*html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		c = next
	}
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		parent.AppendChild(c)
	}
}
