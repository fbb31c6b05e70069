// Package linker rewrites class-name mentions in the prose of class pages
// into anchors, resolving names against a catalog registry.
package linker

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/classdoc"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
)

// DefaultSelectors are the prose containers of a class page.
var DefaultSelectors = []string{
	"div.description dd",
	"div.description pre",
	"li.blockList code",
	"div.block",
}

// DefaultExternalSelectors are the regions scanned for platform and runtime
// class names: definitions, every preformatted signature and code span.
var DefaultExternalSelectors = []string{
	"body dd",
	"body pre",
	"body code",
	"body code strong",
}

// Options configures a Linker.
type Options struct {
	Selectors []string
	Workers   int
	Logger    *slog.Logger
}

// Stats summarizes one pass.
type Stats struct {
	Registry      string
	PagesScanned  int
	PagesChanged  int
	LinksInserted int
	Duration      time.Duration
}

// Linker runs one registry pass over a tree. It is safe for concurrent use;
// the registry is only read.
type Linker struct {
	reg       *catalog.Registry
	selectors []htmlutil.Selector
	workers   int
	logger    *slog.Logger
}

// New compiles the selectors for a pass over reg.
func New(reg *catalog.Registry, opts Options) (*Linker, error) {
	if reg == nil {
		return nil, errors.InternalError("linker requires a registry").Build()
	}
	raw := opts.Selectors
	if len(raw) == 0 {
		raw = DefaultSelectors
	}
	l := &Linker{reg: reg, workers: opts.Workers, logger: opts.Logger}
	if l.workers <= 0 {
		l.workers = runtime.NumCPU()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	for _, s := range raw {
		sel, err := htmlutil.Compile(s)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid link selector").
				WithContext("selector", s).Build()
		}
		l.selectors = append(l.selectors, sel)
	}
	return l, nil
}

// Apply links every class page under root.
func (l *Linker) Apply(ctx context.Context, root string) (Stats, error) {
	start := time.Now()
	stats := Stats{Registry: l.reg.Name()}
	if l.reg.Empty() {
		l.logger.Info("Registry empty; skipping link pass", logfields.Registry(l.reg.Name()))
		return stats, nil
	}
	pages, err := classPages(ctx, root)
	if err != nil {
		return stats, err
	}

	inserted := make([]int, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, rel := range pages {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := l.linkPage(root, rel)
			inserted[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.PagesScanned = len(pages)
	for _, n := range inserted {
		if n > 0 {
			stats.PagesChanged++
			stats.LinksInserted += n
		}
	}
	stats.Duration = time.Since(start)
	l.logger.Info("Link pass complete",
		logfields.Registry(l.reg.Name()),
		slog.Int("pages_scanned", stats.PagesScanned),
		slog.Int("pages_changed", stats.PagesChanged),
		slog.Int("links_inserted", stats.LinksInserted),
		logfields.DurationMS(float64(stats.Duration.Milliseconds())))
	return stats, nil
}

func classPages(ctx context.Context, root string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if classdoc.IsClassPage(rel) {
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk tree for linking").
			Fatal().WithContext("root", root).Build()
	}
	return pages, nil
}

// linkPage rewrites one page and returns the number of anchors inserted.
// Unchanged pages are not written.
func (l *Linker) linkPage(root, rel string) (int, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	doc, err := htmlutil.ParseFile(abs)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "read class page").
			Fatal().WithContext("page", rel).Build()
	}
	prefix := ""
	if l.reg.Relative() {
		prefix = classdoc.LinkPrefix(rel)
	}
	seen := make(map[*html.Node]struct{})
	total := 0
	for _, sel := range l.selectors {
		for _, el := range sel.All(doc) {
			if _, ok := seen[el]; ok {
				continue
			}
			seen[el] = struct{}{}
			if !linkable(el) {
				continue
			}
			total += l.linkElement(el, prefix)
		}
	}
	if total == 0 {
		return 0, nil
	}
	if err := htmlutil.WriteFile(abs, doc); err != nil {
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "write class page").
			Fatal().WithContext("page", rel).Build()
	}
	l.logger.Debug("Linked class names", logfields.Page(rel), logfields.Registry(l.reg.Name()), logfields.Count(total))
	return total, nil
}

var headings = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func linkable(el *html.Node) bool {
	for _, h := range headings {
		if el.DataAtom == h {
			return false
		}
	}
	return el.DataAtom != atom.A && !htmlutil.HasAncestor(el, atom.A)
}

// linkElement rewrites the direct text children of el. The new child list is
// assembled first and swapped in only when something matched.
func (l *Linker) linkElement(el *html.Node, prefix string) int {
	var children []*html.Node
	inserted := 0
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			children = append(children, c)
			continue
		}
		segs := Tokenize(c.Data, l.reg)
		if !HasMatch(segs) {
			children = append(children, c)
			continue
		}
		for _, s := range segs {
			if !s.Matched {
				children = append(children, htmlutil.NewText(s.Text))
				continue
			}
			a := htmlutil.NewElement(atom.A, html.Attribute{Key: "href", Val: prefix + s.Entry.Target})
			a.AppendChild(htmlutil.NewText(s.Entry.Display))
			children = append(children, a)
			inserted++
		}
	}
	if inserted > 0 {
		htmlutil.ReplaceChildren(el, children)
	}
	return inserted
}
