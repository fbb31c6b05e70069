package index

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
)

// Zebra row classes.
const (
	rowEven = "altColor"
	rowOdd  = "rowColor"
)

// sortByLinkText orders entries by the text of their first anchor, byte-wise
// ascending. Equal keys keep their relative order.
func sortByLinkText(entries []*html.Node) {
	keys := make(map[*html.Node]string, len(entries))
	for _, e := range entries {
		keys[e] = htmlutil.FirstAnchorText(e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return keys[entries[i]] < keys[entries[j]]
	})
}

// stripe assigns altColor to even and rowColor to odd positions.
func stripe(rows []*html.Node) {
	for i, r := range rows {
		if i%2 == 0 {
			htmlutil.SetAttr(r, "class", rowEven)
		} else {
			htmlutil.SetAttr(r, "class", rowOdd)
		}
	}
}

// relayout replaces the children of parent with lead followed by entries,
// one per line.
func relayout(parent *html.Node, lead, entries []*html.Node) {
	children := make([]*html.Node, 0, 2*(len(lead)+len(entries))+1)
	for _, n := range lead {
		children = append(children, htmlutil.NewText("\n"), n)
	}
	for _, n := range entries {
		children = append(children, htmlutil.NewText("\n"), n)
	}
	children = append(children, htmlutil.NewText("\n"))
	htmlutil.ReplaceChildren(parent, children)
}

// containsHref reports whether any entry's first anchor points at href.
func containsHref(entries []*html.Node, href string) bool {
	for _, e := range entries {
		if htmlutil.FirstAnchorHref(e) == href {
			return true
		}
	}
	return false
}

// splitRows separates header rows (no td cell) from data rows.
func splitRows(body *html.Node) (header, data []*html.Node) {
	for _, tr := range htmlutil.Children(body, atom.Tr) {
		if len(htmlutil.Children(tr, atom.Td)) == 0 {
			header = append(header, tr)
		} else {
			data = append(data, tr)
		}
	}
	return header, data
}

// rowBody returns the last tbody of table, appending one when absent.
func rowBody(table *html.Node) *html.Node {
	bodies := htmlutil.Children(table, atom.Tbody)
	if len(bodies) > 0 {
		return bodies[len(bodies)-1]
	}
	tbody := htmlutil.NewElement(atom.Tbody)
	table.AppendChild(tbody)
	return tbody
}

// captionHasPrefix reports whether table's caption text starts with prefix.
func captionHasPrefix(table *html.Node, prefix string) bool {
	for _, c := range htmlutil.Children(table, atom.Caption) {
		if strings.HasPrefix(htmlutil.Text(c), prefix) {
			return true
		}
	}
	return false
}
