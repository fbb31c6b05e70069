package catalog

import (
	"archive/zip"
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// ClassSource enumerates binary class names (dot separated package, '$'
// separated nesting, e.g. "java.util.Map$Entry") from some introspectable
// place.
type ClassSource interface {
	Name() string
	ClassNames(ctx context.Context) ([]string, error)
}

// jmodHeaderLen is the magic prefix a .jmod file carries before its zip body.
const jmodHeaderLen = 4

// ArchiveSource reads class entries from a .jar, .zip or .jmod archive.
type ArchiveSource struct {
	Path string
}

func (s ArchiveSource) Name() string { return s.Path }

func (s ArchiveSource) ClassNames(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "open class archive").
			WithContext("path", s.Path).Build()
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "stat class archive").
			WithContext("path", s.Path).Build()
	}

	var (
		ra     io.ReaderAt = f
		size               = st.Size()
		prefix string
	)
	if strings.EqualFold(filepath.Ext(s.Path), ".jmod") {
		if size < jmodHeaderLen {
			return nil, errors.CatalogError("jmod file too short").WithContext("path", s.Path).Build()
		}
		ra = io.NewSectionReader(f, jmodHeaderLen, size-jmodHeaderLen)
		size -= jmodHeaderLen
		prefix = "classes/"
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "read class archive").
			WithContext("path", s.Path).Build()
	}
	var names []string
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := zf.Name
		if !strings.HasSuffix(name, ".class") {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			name = strings.TrimPrefix(name, prefix)
		}
		if strings.HasPrefix(name, "META-INF/") {
			continue
		}
		names = append(names, classFileToBinaryName(name))
	}
	return names, nil
}

// DirSource walks a directory of compiled .class files.
type DirSource struct {
	Root string
}

func (s DirSource) Name() string { return s.Root }

func (s DirSource) ClassNames(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		names = append(names, classFileToBinaryName(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "walk class directory").
			WithContext("path", s.Root).Build()
	}
	return names, nil
}

// ListSource reads one binary class name per line. Blank lines and lines
// starting with '#' are ignored.
type ListSource struct {
	Path string
}

func (s ListSource) Name() string { return s.Path }

func (s ListSource) ClassNames(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "open class list").
			WithContext("path", s.Path).Build()
	}
	defer func() { _ = f.Close() }()
	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCatalog, "read class list").
			WithContext("path", s.Path).Build()
	}
	return names, nil
}

// Names is an in-memory source.
type Names []string

func (n Names) Name() string { return "inline" }

func (n Names) ClassNames(context.Context) ([]string, error) {
	return append([]string(nil), n...), nil
}

// OpenSources turns configured paths into sources. A directory holding
// archives (a JDK jmods/ or a lib/ of jars) yields one ArchiveSource per
// archive; any other directory is walked for .class files. Files with an
// archive extension are read as archives, everything else as a name list.
func OpenSources(paths []string) ([]ClassSource, error) {
	var out []ClassSource
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "class source not accessible").
				WithContext("path", p).Build()
		}
		if !st.IsDir() {
			if isArchive(p) {
				out = append(out, ArchiveSource{Path: p})
			} else {
				out = append(out, ListSource{Path: p})
			}
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "read class source directory").
				WithContext("path", p).Build()
		}
		var archives []string
		for _, e := range entries {
			if !e.IsDir() && isArchive(e.Name()) {
				archives = append(archives, filepath.Join(p, e.Name()))
			}
		}
		if len(archives) == 0 {
			out = append(out, DirSource{Root: p})
			continue
		}
		sort.Strings(archives)
		for _, a := range archives {
			out = append(out, ArchiveSource{Path: a})
		}
	}
	return out, nil
}

func isArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".zip", ".jmod":
		return true
	}
	return false
}

func classFileToBinaryName(rel string) string {
	return strings.ReplaceAll(strings.TrimSuffix(rel, ".class"), "/", ".")
}

// ClassName is a binary class name resolved into its documentation form.
type ClassName struct {
	Qualified string // "java.util.Map.Entry"
	Simple    string // "Entry"
	PagePath  string // "java/util/Map.Entry.html"
}

// errSkip marks names that are silently not documented.
var errSkip = stderrors.New("not a documented class")

// ResolveBinaryName maps a binary name to its documented form. Module and
// package descriptors and anonymous or local classes return errSkip; names
// with invalid identifier segments return a catalog warning.
func ResolveBinaryName(bin string) (ClassName, error) {
	pkg, base := "", bin
	if i := strings.LastIndexByte(bin, '.'); i >= 0 {
		pkg, base = bin[:i], bin[i+1:]
	}
	if base == "module-info" || base == "package-info" {
		return ClassName{}, errSkip
	}
	parts := strings.Split(base, "$")
	for i, part := range parts {
		if i > 0 && part != "" && part[0] >= '0' && part[0] <= '9' {
			return ClassName{}, errSkip
		}
	}
	if pkg != "" {
		for _, seg := range strings.Split(pkg, ".") {
			if !isIdentifier(seg) {
				return ClassName{}, invalidName(bin)
			}
		}
	}
	for _, part := range parts {
		if !isIdentifier(part) {
			return ClassName{}, invalidName(bin)
		}
	}

	nested := strings.Join(parts, ".")
	cn := ClassName{Simple: parts[len(parts)-1]}
	if pkg == "" {
		cn.Qualified = nested
		cn.PagePath = nested + ".html"
	} else {
		cn.Qualified = pkg + "." + nested
		cn.PagePath = strings.ReplaceAll(pkg, ".", "/") + "/" + nested + ".html"
	}
	return cn, nil
}

func invalidName(bin string) error {
	return errors.CatalogError("invalid class name").WithContext("class", bin).Build()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r >= 0x80:
		default:
			return false
		}
	}
	return true
}
