// Package index keeps the navigation pages of a merged documentation tree in
// step with class pages copied into it: package summaries and frames, the
// overview pages, and the all-classes lists.
package index

import (
	"context"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/classdoc"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/render"
)

var (
	selTypeSummary     = htmlutil.MustCompile("table.typeSummary")
	selContentList     = htmlutil.MustCompile("div.contentContainer > ul.blockList")
	selContentFallback = htmlutil.MustCompile("div.contentContainer")
	selIndexContainer  = htmlutil.MustCompile("div.indexContainer")
	selIndexList       = htmlutil.MustCompile("div.indexContainer ul")
	selOverviewSummary = htmlutil.MustCompile("table.overviewSummary")
)

// Stats summarizes what a Synthesizer did.
type Stats struct {
	PagesRegistered   int
	PackagesCreated   int
	EntriesInserted   int
	DuplicatesSkipped int
	PagesWritten      int
	CacheHits         int
	CacheMisses       int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCacheSize bounds the parsed page cache.
func WithCacheSize(n int) Option {
	return func(s *Synthesizer) { s.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// Synthesizer inserts entries for newly added class pages into the index
// pages of the tree rooted at root. Calls are serialized.
type Synthesizer struct {
	mu        sync.Mutex
	renderer  *render.Renderer
	logger    *slog.Logger
	cacheSize int
	pages     *pageStore
	stats     Stats
}

// New creates a Synthesizer for the tree at root.
func New(root string, renderer *render.Renderer, opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{renderer: renderer, logger: slog.Default(), cacheSize: DefaultCacheSize}
	for _, o := range opts {
		o(s)
	}
	if renderer == nil {
		return nil, errors.InternalError("index synthesizer requires a renderer").Build()
	}
	ps, err := newPageStore(root, s.cacheSize)
	if err != nil {
		return nil, err
	}
	s.pages = ps
	return s, nil
}

// Stats returns a snapshot of the counters.
func (s *Synthesizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.PagesWritten = s.pages.writes
	st.CacheHits = s.pages.hits
	st.CacheMisses = s.pages.misses
	return st
}

// RegisterNewPage adds doc, a class page already present in the tree, to its
// package pages, to the overview pages when its package is new, and to both
// all-classes lists. doc.Kind must be set.
func (s *Synthesizer) RegisterNewPage(ctx context.Context, doc classdoc.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.With(logfields.Class(doc.QualifiedName), logfields.Kind(doc.Kind.Label()))

	createdSummary, err := s.ensurePackagePage(doc, classdoc.PackageSummary, render.PackageSummary, log)
	if err != nil {
		return err
	}
	if err := s.updatePackageSummary(doc, log); err != nil {
		return err
	}
	createdFrame, err := s.ensurePackagePage(doc, classdoc.PackageFrame, render.PackageFrame, log)
	if err != nil {
		return err
	}
	if err := s.updatePackageFrame(doc, log); err != nil {
		return err
	}
	if createdSummary || createdFrame {
		s.stats.PackagesCreated++
		if err := s.updateOverviewSummary(doc, log); err != nil {
			return err
		}
		if err := s.updateOverviewFrame(doc, log); err != nil {
			return err
		}
	}
	for _, name := range []string{classdoc.AllClassesFrame, classdoc.AllClassesNoFrame} {
		if err := s.updateAllClasses(doc, name, log); err != nil {
			return err
		}
	}
	s.stats.PagesRegistered++
	return nil
}

// ensurePackagePage creates the package page name in doc's directory when
// it does not exist yet and reports whether it did.
func (s *Synthesizer) ensurePackagePage(doc classdoc.Document, name, fragment string, log *slog.Logger) (bool, error) {
	rel := path.Join(doc.Dir(), name)
	ok, err := s.pages.exists(rel)
	if err != nil || ok {
		return false, err
	}
	markup, err := s.renderer.Render(fragment, map[string]string{
		"packageName": doc.PackageDisplayName(),
		"rel":         doc.RelRoot(),
	})
	if err != nil {
		return false, err
	}
	if _, err := s.pages.create(rel, markup); err != nil {
		return false, err
	}
	log.Info("Created index page", logfields.Page(rel), logfields.Package(doc.PackageDisplayName()))
	return true, nil
}

func (s *Synthesizer) updatePackageSummary(doc classdoc.Document, log *slog.Logger) error {
	rel := path.Join(doc.Dir(), classdoc.PackageSummary)
	page, err := s.pages.load(rel)
	if err != nil {
		return err
	}
	table, err := s.summaryTable(page, doc.Kind, rel)
	if err != nil {
		return err
	}
	body := rowBody(table)
	header, rows := splitRows(body)
	href := doc.FileName()
	if containsHref(rows, href) {
		s.skipDuplicate(log, rel, href)
		return nil
	}
	added, err := s.renderEntries(render.PackageSummaryItem, map[string]string{
		"htmlLink":           href,
		"qualifiedClassName": doc.QualifiedName,
		"className":          doc.SimpleName,
		"rowClass":           rowOdd,
	}, body)
	if err != nil {
		return err
	}
	rows = append(rows, added...)
	sortByLinkText(rows)
	stripe(rows)
	relayout(body, header, rows)
	return s.save(rel, page, log)
}

// summaryTable finds the type summary table for kind, creating it from the
// summaryTable fragment when the page has none.
func (s *Synthesizer) summaryTable(page *html.Node, kind classdoc.Kind, rel string) (*html.Node, error) {
	caption := kind.SummaryCaption()
	find := func() *html.Node {
		for _, t := range selTypeSummary.All(page) {
			if captionHasPrefix(t, caption) {
				return t
			}
		}
		return nil
	}
	if t := find(); t != nil {
		return t, nil
	}
	container := selContentList.First(page)
	if container == nil {
		container = selContentFallback.First(page)
	}
	if container == nil {
		return nil, errors.StructureError("package summary has no content container").
			Fatal().WithContext("page", rel).Build()
	}
	nodes, err := s.renderNodes(render.SummaryTable, map[string]string{
		"caption":     caption,
		"columnTitle": kind.Label(),
	}, container)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
		container.AppendChild(htmlutil.NewText("\n"))
	}
	t := find()
	if t == nil {
		return nil, errors.RenderError("summary table fragment did not produce a table").
			Fatal().WithContext("page", rel).Build()
	}
	return t, nil
}

func (s *Synthesizer) updatePackageFrame(doc classdoc.Document, log *slog.Logger) error {
	rel := path.Join(doc.Dir(), classdoc.PackageFrame)
	page, err := s.pages.load(rel)
	if err != nil {
		return err
	}
	container := selIndexContainer.First(page)
	if container == nil {
		return errors.StructureError("package frame has no index container").
			Fatal().WithContext("page", rel).Build()
	}
	list := sectionList(container, doc.Kind.SectionTitle())
	href := doc.FileName()
	return s.insertListEntry(rel, page, list, href, render.PackageFrameItem, map[string]string{
		"htmlLink":           href,
		"qualifiedClassName": doc.QualifiedName,
		"className":          doc.SimpleName,
	}, log)
}

// sectionList returns the <ul title=title> of an index container, appending
// the heading and the list when the section does not exist.
func sectionList(container *html.Node, title string) *html.Node {
	found := htmlutil.FindAll(container, func(n *html.Node) bool {
		return htmlutil.IsElement(n, atom.Ul) && htmlutil.Attr(n, "title") == title
	})
	if len(found) > 0 {
		return found[0]
	}
	h2 := htmlutil.NewElement(atom.H2, html.Attribute{Key: "title", Val: title})
	h2.AppendChild(htmlutil.NewText(title))
	ul := htmlutil.NewElement(atom.Ul, html.Attribute{Key: "title", Val: title})
	container.AppendChild(h2)
	container.AppendChild(htmlutil.NewText("\n"))
	container.AppendChild(ul)
	container.AppendChild(htmlutil.NewText("\n"))
	return ul
}

func (s *Synthesizer) updateOverviewSummary(doc classdoc.Document, log *slog.Logger) error {
	rel := classdoc.OverviewSummary
	page, err := s.pages.load(rel)
	if err != nil {
		return err
	}
	table := selOverviewSummary.First(page)
	if table == nil {
		return errors.StructureError("overview summary has no package table").
			Fatal().WithContext("page", rel).Build()
	}
	body := rowBody(table)
	header, rows := splitRows(body)
	href := path.Join(doc.Dir(), classdoc.PackageSummary)
	if containsHref(rows, href) {
		s.skipDuplicate(log, rel, href)
		return nil
	}
	added, err := s.renderEntries(render.OverviewSummaryItem, map[string]string{
		"htmlLink":    href,
		"packageName": doc.PackageDisplayName(),
		"rowClass":    rowOdd,
	}, body)
	if err != nil {
		return err
	}
	rows = append(rows, added...)
	sortByLinkText(rows)
	stripe(rows)
	relayout(body, header, rows)
	return s.save(rel, page, log)
}

func (s *Synthesizer) updateOverviewFrame(doc classdoc.Document, log *slog.Logger) error {
	rel := classdoc.OverviewFrame
	page, err := s.pages.load(rel)
	if err != nil {
		return err
	}
	list := selIndexList.First(page)
	if list == nil {
		return errors.StructureError("overview frame has no package list").
			Fatal().WithContext("page", rel).Build()
	}
	href := path.Join(doc.Dir(), classdoc.PackageFrame)
	return s.insertListEntry(rel, page, list, href, render.OverviewFrameItem, map[string]string{
		"htmlLink":    href,
		"packageName": doc.PackageDisplayName(),
	}, log)
}

func (s *Synthesizer) updateAllClasses(doc classdoc.Document, rel string, log *slog.Logger) error {
	page, err := s.pages.load(rel)
	if err != nil {
		return err
	}
	list := selIndexList.First(page)
	if list == nil {
		return errors.StructureError("all-classes page has no class list").
			Fatal().WithContext("page", rel).Build()
	}
	return s.insertListEntry(rel, page, list, doc.RelPath, render.AllClassesItem, map[string]string{
		"htmlLink":      doc.RelPath,
		"qualifiedName": doc.QualifiedName,
		"className":     doc.SimpleName,
	}, log)
}

// insertListEntry renders one <li> into list, re-sorts the list and saves page.
func (s *Synthesizer) insertListEntry(rel string, page, list *html.Node, href, fragment string, fields map[string]string, log *slog.Logger) error {
	items := htmlutil.Children(list, atom.Li)
	if containsHref(items, href) {
		s.skipDuplicate(log, rel, href)
		return nil
	}
	added, err := s.renderEntries(fragment, fields, list)
	if err != nil {
		return err
	}
	items = append(items, added...)
	sortByLinkText(items)
	relayout(list, nil, items)
	return s.save(rel, page, log)
}

// renderNodes renders fragment and parses it in the context of parent. The
// returned nodes are detached.
func (s *Synthesizer) renderNodes(fragment string, fields map[string]string, parent *html.Node) ([]*html.Node, error) {
	markup, err := s.renderer.Render(fragment, fields)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlutil.ParseFragment(markup, parent)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "parse rendered fragment").
			Fatal().WithContext("fragment", fragment).Build()
	}
	return nodes, nil
}

// renderEntries is renderNodes for index entries.
func (s *Synthesizer) renderEntries(fragment string, fields map[string]string, parent *html.Node) ([]*html.Node, error) {
	nodes, err := s.renderNodes(fragment, fields, parent)
	if err != nil {
		return nil, err
	}
	s.stats.EntriesInserted += len(nodes)
	return nodes, nil
}

func (s *Synthesizer) skipDuplicate(log *slog.Logger, rel, href string) {
	s.stats.DuplicatesSkipped++
	log.Debug("Index entry already present", logfields.Page(rel), slog.String("href", href))
}

func (s *Synthesizer) save(rel string, page *html.Node, log *slog.Logger) error {
	if err := s.pages.save(rel, page); err != nil {
		return err
	}
	log.Info("Updated index page", logfields.Page(rel))
	return nil
}
