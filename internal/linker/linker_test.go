package linker

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func projectRegistry(pages ...string) *catalog.Registry {
	b := catalog.NewBuilder(catalog.RegistryProject, true, quiet())
	for _, p := range pages {
		base := strings.TrimSuffix(p, ".html")
		simple := base[strings.LastIndexByte(base, '/')+1:]
		e := catalog.Entry{Target: p, Display: simple}
		b.AddQualified(strings.ReplaceAll(base, "/", "."), e)
		b.AddSimple(simple, e)
	}
	return b.Build()
}

func page(body string) string {
	return "<!DOCTYPE html>\n<html><head><title>T</title></head><body>\n" + body + "\n</body></html>\n"
}

func writePage(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

type anchor struct{ Href, Text string }

func anchors(t *testing.T, path string) []anchor {
	t.Helper()
	doc, err := htmlutil.ParseFile(path)
	require.NoError(t, err)
	var out []anchor
	for _, a := range htmlutil.FindAll(doc, func(n *html.Node) bool { return htmlutil.IsElement(n, atom.A) }) {
		out = append(out, anchor{htmlutil.Attr(a, "href"), htmlutil.Text(a)})
	}
	return out
}

func TestTokenize(t *testing.T) {
	reg := projectRegistry("a/Foo.html", "com/example/Bar.html", "com/example/Outer.Inner.html")
	tests := []struct {
		name string
		text string
		want []string // matched texts
	}{
		{"simple and qualified", "Returns a Foo or a com.example.Bar.", []string{"Foo", "com.example.Bar"}},
		{"qualified wins over simple", "com.example.Bar", []string{"com.example.Bar"}},
		{"longest qualified prefix", "see com.example.Bar.method()", []string{"com.example.Bar"}},
		{"nested page", "an com.example.Outer.Inner value", []string{"com.example.Outer.Inner"}},
		{"identifier boundary", "FooBar xFoo Foo_ Foo1", nil},
		{"member of simple", "Foo.bar() and baz.Foo", []string{"Foo"}},
		{"unknown chain skipped whole", "org.other.Foo then Foo", []string{"Foo"}},
		{"generic", "List<Foo>", []string{"Foo"}},
		{"no text", "", nil},
		{"no-break space after qualified", "(com.example.Bar\u00a0s)", []string{"com.example.Bar"}},
		{"no-break spaces around simple", "public\u00a0Foo\u00a0get()", []string{"Foo"}},
		{"no-break space before name", "Foo\u00a0x", []string{"Foo"}},
		{"non-ASCII letters stay in identifier", "Fooé Foo", []string{"Foo"}},
		{"em space separates", "a\u2003Foo", []string{"Foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Tokenize(tt.text, reg)
			var got []string
			var joined strings.Builder
			for _, s := range segs {
				joined.WriteString(s.Text)
				if s.Matched {
					got = append(got, s.Text)
				}
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, joined.String())
		})
	}
}

func TestTokenizeAlternates(t *testing.T) {
	reg := projectRegistry("a/Foo.html", "com/example/Bar.html")
	segs := Tokenize("Returns a Foo or a com.example.Bar.", reg)
	require.Len(t, segs, 5)
	assert.Equal(t, Segment{Text: "Returns a "}, segs[0])
	assert.Equal(t, "a/Foo.html", segs[1].Entry.Target)
	assert.Equal(t, " or a ", segs[2].Text)
	assert.Equal(t, catalog.Entry{Target: "com/example/Bar.html", Display: "Bar"}, segs[3].Entry)
	assert.Equal(t, ".", segs[4].Text)
}

func TestApplyRewritesProse(t *testing.T) {
	root := t.TempDir()
	reg := projectRegistry("a/Foo.html", "com/example/Bar.html", "com/example/Page.html")
	writePage(t, root, "a/Foo.html", page(`<div class="block">Plain.</div>`))
	writePage(t, root, "com/example/Bar.html", page(`<div class="block">Bar.</div>`))
	p := writePage(t, root, "com/example/Page.html", page(
		`<h2 class="title">Class Foo</h2>`+
			`<div class="block">Returns a Foo or a com.example.Bar.</div>`+
			`<div class="block"><a href="x.html">Foo</a> <code>Foo</code></div>`))

	l, err := New(reg, Options{Workers: 2, Logger: quiet()})
	require.NoError(t, err)
	st, err := l.Apply(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []anchor{
		{"../../a/Foo.html", "Foo"},
		{"../../com/example/Bar.html", "Bar"},
		{"x.html", "Foo"},
	}, anchors(t, p))

	doc, err := htmlutil.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, "Returns a Foo or a Bar.", htmlutil.Text(htmlutil.MustCompile("div.block").First(doc)))
	assert.Equal(t, "Class Foo", htmlutil.Text(htmlutil.MustCompile("h2").First(doc)))

	assert.Equal(t, catalog.RegistryProject, st.Registry)
	assert.Equal(t, 3, st.PagesScanned)
	assert.Equal(t, 2, st.PagesChanged)
	assert.Equal(t, 3, st.LinksInserted)
}

func TestApplyRootPageHasNoPrefix(t *testing.T) {
	root := t.TempDir()
	reg := projectRegistry("a/Foo.html")
	p := writePage(t, root, "Top.html", page(`<div class="block">Uses Foo.</div>`))

	l, err := New(reg, Options{Logger: quiet()})
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []anchor{{"a/Foo.html", "Foo"}}, anchors(t, p))
}

func TestApplyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	reg := projectRegistry("a/Foo.html", "com/example/Bar.html")
	p := writePage(t, root, "com/example/Page.html", page(
		`<div class="description"><dl><dd>Foo and com.example.Bar</dd></dl><pre>Foo f = new Foo();</pre></div>`))

	l, err := New(reg, Options{Logger: quiet()})
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), root)
	require.NoError(t, err)
	first, err := os.ReadFile(p)
	require.NoError(t, err)

	st, err := l.Apply(context.Background(), root)
	require.NoError(t, err)
	second, err := os.ReadFile(p)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Zero(t, st.LinksInserted)
	assert.Zero(t, st.PagesChanged)
	assert.Len(t, anchors(t, p), 4)
}

func TestApplyLeavesUnmatchedPagesUntouched(t *testing.T) {
	root := t.TempDir()
	raw := "<HTML><BODY><DIV CLASS=block>nothing here</DIV></BODY></HTML>"
	p := writePage(t, root, "a/Quiet.html", raw)

	l, err := New(projectRegistry("a/Foo.html"), Options{Logger: quiet()})
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), root)
	require.NoError(t, err)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, raw, string(got))
}

func TestApplySimpleNameCollision(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "a/Util.html", page(`<div class="block">A.</div>`))
	writePage(t, root, "b/Util.html", page(`<div class="block">B.</div>`))
	p := writePage(t, root, "c/User.html", page(`<div class="block">Calls Util.</div>`))

	reg, err := catalog.BuildProject(context.Background(), root, quiet())
	require.NoError(t, err)
	l, err := New(reg, Options{Logger: quiet()})
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), root)
	require.NoError(t, err)

	got := anchors(t, p)
	require.Len(t, got, 1)
	assert.Contains(t, []string{"../a/Util.html", "../b/Util.html"}, got[0].Href)
	assert.Equal(t, "Util", got[0].Text)
}

func TestApplyExternalRegistry(t *testing.T) {
	root := t.TempDir()
	reg, err := catalog.BuildExternal(context.Background(), catalog.ExternalOptions{
		PlatformVersion: "17",
		DynamicVersion:  "3.0.9",
		PlatformSources: []catalog.ClassSource{catalog.Names{"java.util.List"}},
		DynamicSources:  []catalog.ClassSource{catalog.Names{"groovy.lang.Closure"}},
	}, quiet())
	require.NoError(t, err)
	p := writePage(t, root, "a/b/Foo.html", page(`<div class="block">Takes a java.util.List and a groovy.lang.Closure, not a List.</div>`))

	l, err := New(reg, Options{Logger: quiet()})
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []anchor{
		{"https://docs.oracle.com/en/java/javase/17/docs/api/java/util/List.html", "List"},
		{"http://docs.groovy-lang.org/3.0.9/html/api/groovy/lang/Closure.html", "Closure"},
	}, anchors(t, p))
}

func TestApplyEmptyRegistry(t *testing.T) {
	l, err := New(projectRegistry(), Options{Logger: quiet()})
	require.NoError(t, err)
	st, err := l.Apply(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Zero(t, st.PagesScanned)
}

func TestApplyCanceled(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "a/Foo.html", page(`<div class="block">Foo</div>`))
	l, err := New(projectRegistry("a/Foo.html"), Options{Logger: quiet()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Apply(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadSelector(t *testing.T) {
	_, err := New(projectRegistry(), Options{Selectors: []string{"div[["}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
