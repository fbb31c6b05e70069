package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("<html></html>"), 0o644))
}

func TestBuilderIsolation(t *testing.T) {
	b := NewBuilder(RegistryProject, true, quietLogger())
	b.AddQualified("a.Foo", Entry{Target: "a/Foo.html", Display: "Foo"})
	reg := b.Build()
	b.AddQualified("a.Bar", Entry{Target: "a/Bar.html", Display: "Bar"})

	assert.Equal(t, 1, reg.Len())
	_, ok := reg.LookupQualified("a.Bar")
	assert.False(t, ok)
	assert.True(t, reg.Relative())
	assert.Equal(t, RegistryProject, reg.Name())
}

func TestBuildProject(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/Foo.html")
	touch(t, root, "com/example/Bar.html")
	touch(t, root, "com/example/Outer.Inner.html")
	touch(t, root, "com/example/package-summary.html")
	touch(t, root, "com/example/class-use/Bar.html")
	touch(t, root, "com/example/doc-files/Diagram.html")
	touch(t, root, "index.html")
	touch(t, root, "Top.html")

	reg, err := BuildProject(context.Background(), root, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"Top", "a.Foo", "com.example.Bar", "com.example.Outer.Inner"}, reg.QualifiedNames())

	e, ok := reg.LookupQualified("com.example.Bar")
	require.True(t, ok)
	assert.Equal(t, Entry{Target: "com/example/Bar.html", Display: "Bar"}, e)

	e, ok = reg.LookupSimple("Foo")
	require.True(t, ok)
	assert.Equal(t, "a/Foo.html", e.Target)

	e, ok = reg.LookupQualified("com.example.Outer.Inner")
	require.True(t, ok)
	assert.Equal(t, "com/example/Outer.Inner.html", e.Target)

	_, ok = reg.LookupSimple("Diagram")
	assert.False(t, ok)
	assert.Zero(t, reg.Collisions())
}

func TestBuildProjectSimpleNameCollision(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/Util.html")
	touch(t, root, "b/Util.html")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	reg, err := BuildProject(context.Background(), root, logger)
	require.NoError(t, err)

	e, ok := reg.LookupSimple("Util")
	require.True(t, ok)
	assert.Contains(t, []string{"a/Util.html", "b/Util.html"}, e.Target)
	assert.Equal(t, 1, reg.Collisions())
	assert.Contains(t, logs.String(), "Duplicated simple class name")

	for _, q := range []string{"a.Util", "b.Util"} {
		_, ok := reg.LookupQualified(q)
		assert.True(t, ok, q)
	}
}

func TestBuildProjectMissingRoot(t *testing.T) {
	_, err := BuildProject(context.Background(), filepath.Join(t.TempDir(), "nope"), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestResolveBinaryName(t *testing.T) {
	tests := []struct {
		bin  string
		want ClassName
	}{
		{"java.util.List", ClassName{"java.util.List", "List", "java/util/List.html"}},
		{"java.util.Map$Entry", ClassName{"java.util.Map.Entry", "Entry", "java/util/Map.Entry.html"}},
		{"groovy.lang.Closure", ClassName{"groovy.lang.Closure", "Closure", "groovy/lang/Closure.html"}},
		{"Top", ClassName{"Top", "Top", "Top.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.bin, func(t *testing.T) {
			got, err := ResolveBinaryName(tt.bin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bin := range []string{"java.lang.module-info", "java.util.package-info", "java.util.Foo$1", "java.util.Foo$1Local"} {
		_, err := ResolveBinaryName(bin)
		assert.ErrorIs(t, err, errSkip, bin)
	}

	for _, bin := range []string{"java.util.Foo$", "java..Foo", "java.1util.Foo", "java.util.Fo-o"} {
		_, err := ResolveBinaryName(bin)
		require.Error(t, err, bin)
		assert.NotErrorIs(t, err, errSkip, bin)
		assert.True(t, errors.HasCategory(err, errors.CategoryCatalog), bin)
	}
}

func TestPlatformBaseURL(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"8", "https://docs.oracle.com/javase/8/docs/api/"},
		{"1.8", "https://docs.oracle.com/javase/8/docs/api/"},
		{"1.8.0_202", "https://docs.oracle.com/javase/8/docs/api/"},
		{"10", "https://docs.oracle.com/javase/10/docs/api/"},
		{"11", "https://docs.oracle.com/en/java/javase/11/docs/api/"},
		{"17.0.2", "https://docs.oracle.com/en/java/javase/17/docs/api/"},
	}
	for _, tt := range tests {
		got, err := PlatformBaseURL(tt.version)
		require.NoError(t, err, tt.version)
		assert.Equal(t, tt.want, got, tt.version)
	}

	for _, bad := range []string{"", "eight", "1.x", "-3"} {
		_, err := PlatformBaseURL(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), bad)
	}
}

func TestDynamicBaseURL(t *testing.T) {
	got, err := DynamicBaseURL("2.5.14")
	require.NoError(t, err)
	assert.Equal(t, "http://docs.groovy-lang.org/2.5.14/html/api/", got)

	_, err = DynamicBaseURL(" ")
	assert.Error(t, err)
	_, err = DynamicBaseURL("2.5/../x")
	assert.Error(t, err)
}

func TestBuildExternal(t *testing.T) {
	opts := ExternalOptions{
		PlatformVersion: "8",
		DynamicVersion:  "2.4.21",
		PlatformSources: []ClassSource{Names{
			"java.util.List",
			"java.util.Map$Entry",
			"java.util.Foo$1",
			"java.lang.module-info",
			"sun.misc.Unsafe",
			"java.util.Bad-Name",
		}},
		DynamicSources: []ClassSource{Names{"groovy.lang.Closure", "org.codehaus.groovy.Internal"}},
	}
	var logs bytes.Buffer
	reg, err := BuildExternal(context.Background(), opts, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	assert.False(t, reg.Relative())
	assert.Equal(t, []string{"groovy.lang.Closure", "java.util.List", "java.util.Map.Entry"}, reg.QualifiedNames())
	assert.Zero(t, reg.SimpleLen())

	e, _ := reg.LookupQualified("java.util.Map.Entry")
	assert.Equal(t, Entry{Target: "https://docs.oracle.com/javase/8/docs/api/java/util/Map.Entry.html", Display: "Entry"}, e)
	e, _ = reg.LookupQualified("groovy.lang.Closure")
	assert.Equal(t, "http://docs.groovy-lang.org/2.4.21/html/api/groovy/lang/Closure.html", e.Target)

	assert.Contains(t, logs.String(), "Skipping external class")
	assert.Contains(t, logs.String(), "java.util.Bad-Name")
}

func TestBuildExternalInvalidVersion(t *testing.T) {
	_, err := BuildExternal(context.Background(), ExternalOptions{PlatformVersion: "latest", DynamicVersion: "2.5"}, quietLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func writeZip(t *testing.T, w io.Writer, names ...string) {
	t.Helper()
	zw := zip.NewWriter(w)
	for _, n := range names {
		f, err := zw.Create(n)
		require.NoError(t, err)
		_, err = f.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE})
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestArchiveSourceJar(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rt.jar")
	f, err := os.Create(p)
	require.NoError(t, err)
	writeZip(t, f, "java/util/List.class", "java/util/Map$Entry.class", "META-INF/MANIFEST.MF", "META-INF/versions/9/java/util/X.class")
	require.NoError(t, f.Close())

	names, err := ArchiveSource{Path: p}.ClassNames(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.util.List", "java.util.Map$Entry"}, names)
}

func TestArchiveSourceJmod(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{'J', 'M', 1, 0})
	writeZip(t, &buf, "classes/java/lang/String.class", "classes/module-info.class", "lib/libfoo.so", "bin/tool.class")
	p := filepath.Join(t.TempDir(), "java.base.jmod")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))

	names, err := ArchiveSource{Path: p}.ClassNames(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.lang.String", "module-info"}, names)
}

func TestDirAndListSources(t *testing.T) {
	dir := t.TempDir()
	classes := filepath.Join(dir, "classes")
	touch(t, classes, "groovy/lang/Closure.class")
	touch(t, classes, "groovy/lang/readme.txt")

	list := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(list, []byte("# platform\njava.util.List\n\n  java.util.Set  \n"), 0o644))

	srcs, err := OpenSources([]string{classes, list})
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.IsType(t, DirSource{}, srcs[0])
	assert.IsType(t, ListSource{}, srcs[1])

	names, err := srcs[0].ClassNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"groovy.lang.Closure"}, names)

	names, err = srcs[1].ClassNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"java.util.List", "java.util.Set"}, names)
}

func TestOpenSourcesArchiveDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.jmod", "a.jar"} {
		f, err := os.Create(filepath.Join(dir, n))
		require.NoError(t, err)
		writeZip(t, f, "x/Y.class")
		require.NoError(t, f.Close())
	}
	srcs, err := OpenSources([]string{dir})
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, filepath.Join(dir, "a.jar"), srcs[0].Name())
	assert.Equal(t, filepath.Join(dir, "b.jmod"), srcs[1].Name())

	_, err = OpenSources([]string{filepath.Join(dir, "missing")})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
