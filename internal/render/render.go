// Package render produces the HTML fragments the index synthesizer inserts
// into a merged documentation tree.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// Fragment names.
const (
	PackageSummary      = "packageSummary"
	PackageFrame        = "packageFrame"
	SummaryTable        = "summaryTable"
	PackageSummaryItem  = "packageSummaryItem"
	PackageFrameItem    = "packageFrameItem"
	OverviewSummaryItem = "overviewSummaryItem"
	OverviewFrameItem   = "overviewFrameItem"
	AllClassesItem      = "allClassesItem"
)

const fragmentExt = ".html.tmpl"

//go:embed fragments/*.html.tmpl
var embeddedFragments embed.FS

// Renderer holds the compiled fragments. It is immutable after construction
// and safe for concurrent use.
type Renderer struct {
	templates map[string]*template.Template
}

// New compiles the embedded fragments.
func New() (*Renderer, error) {
	sub, err := fs.Sub(embeddedFragments, "fragments")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "embedded fragments missing").Fatal().Build()
	}
	return NewFromFS(sub)
}

// NewFromFS compiles every *.html.tmpl file at the root of fsys.
// Every fragment name must be present.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "*"+fragmentExt)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "list fragments").Fatal().Build()
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "read fragment").
				Fatal().WithContext("fragment", f).Build()
		}
		name := strings.TrimSuffix(path.Base(f), fragmentExt)
		tpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "parse fragment").
				Fatal().WithContext("fragment", name).Build()
		}
		r.templates[name] = tpl
	}
	for _, want := range allFragments {
		if _, ok := r.templates[want]; !ok {
			return nil, errors.RenderError("fragment not defined").
				Fatal().WithContext("fragment", want).Build()
		}
	}
	return r, nil
}

var allFragments = []string{
	PackageSummary, PackageFrame, SummaryTable,
	PackageSummaryItem, PackageFrameItem,
	OverviewSummaryItem, OverviewFrameItem, AllClassesItem,
}

// Names returns the compiled fragment names in ascending order.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render executes a fragment. Field values are HTML-escaped; a field the
// fragment references but fields lacks is an error.
func (r *Renderer) Render(name string, fields map[string]string) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", errors.RenderError("unknown fragment").WithContext("fragment", name).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, fields); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "render fragment").
			WithContext("fragment", name).Build()
	}
	return buf.String(), nil
}
