// Package classdoc models one generated class page and the path conventions
// that encode package and class names in a documentation tree.
package classdoc

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
)

// Index page file names.
const (
	PackageSummary    = "package-summary.html"
	PackageFrame      = "package-frame.html"
	OverviewSummary   = "overview-summary.html"
	OverviewFrame     = "overview-frame.html"
	AllClassesFrame   = "allclasses-frame.html"
	AllClassesNoFrame = "allclasses-noframe.html"
)

// UnnamedPackage is the display name of the default package.
const UnnamedPackage = "<Unnamed>"

// Document describes one class page in a tree.
type Document struct {
	QualifiedName string
	SimpleName    string
	PackageName   string
	Kind          Kind
	RelPath       string // slash separated, relative to the tree root
}

// IsClassPage reports whether rel (slash or OS separated, relative to a tree
// root) names a class page: an .html file whose name starts with an upper-case
// letter, outside any class-use or doc-files directory.
func IsClassPage(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	if path.Ext(base) != ".html" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(base)
	if !unicode.IsUpper(r) {
		return false
	}
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if seg == "class-use" || seg == "doc-files" {
			return false
		}
	}
	return true
}

// FromPath derives the names of a class page from its relative path.
// Kind is left at its zero value; see Classify.
func FromPath(rel string) Document {
	rel = filepath.ToSlash(rel)
	noExt := strings.TrimSuffix(rel, path.Ext(rel))
	qualified := strings.ReplaceAll(noExt, "/", ".")
	pkg := ""
	if dir := path.Dir(rel); dir != "." {
		pkg = strings.ReplaceAll(dir, "/", ".")
	}
	return Document{
		QualifiedName: qualified,
		SimpleName:    path.Base(noExt),
		PackageName:   pkg,
		RelPath:       rel,
	}
}

// PackageDisplayName is the package name shown in index pages.
func (d Document) PackageDisplayName() string {
	if d.PackageName == "" {
		return UnnamedPackage
	}
	return d.PackageName
}

// Dir is the slash separated package directory, "." for the default package.
func (d Document) Dir() string { return path.Dir(d.RelPath) }

// FileName is the page's base name.
func (d Document) FileName() string { return path.Base(d.RelPath) }

// RelRoot returns the relative path from the page's directory back to the
// tree root: "." at the root, "../.." two packages deep.
func (d Document) RelRoot() string {
	return RelRoot(d.RelPath)
}

// RelRoot returns the path from the directory holding rel back to the root.
func RelRoot(rel string) string {
	dir := path.Dir(filepath.ToSlash(rel))
	if dir == "." {
		return "."
	}
	depth := strings.Count(dir, "/") + 1
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}

// LinkPrefix is RelRoot as an href prefix: "" at the root, "../../" otherwise.
func LinkPrefix(rel string) string {
	r := RelRoot(rel)
	if r == "." {
		return ""
	}
	return r + "/"
}

// Classify reads the page heading and returns the document's kind. Headings
// (h1 and h2) are tried in document order; the first resolvable one wins.
func Classify(doc *html.Node) (Kind, string, bool) {
	headings := htmlutil.FindAll(doc, func(n *html.Node) bool {
		return htmlutil.IsElement(n, atom.H2) || htmlutil.IsElement(n, atom.H1)
	})
	var texts []string
	for _, h := range headings {
		text := htmlutil.Text(h)
		if k, ok := KindFromHeading(text); ok {
			return k, text, true
		}
		texts = append(texts, text)
	}
	return 0, strings.Join(texts, " | "), false
}
