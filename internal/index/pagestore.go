package index

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
)

// DefaultCacheSize bounds the number of parsed index pages kept per run.
const DefaultCacheSize = 64

// pageStore reads and writes index pages under root, keeping recently used
// DOMs in memory. Every save writes through to disk.
type pageStore struct {
	root  string
	cache *lru.Cache[string, *html.Node]

	hits, misses, writes int
}

func newPageStore(root string, size int) (*pageStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *html.Node](size)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create page cache").Build()
	}
	return &pageStore{root: root, cache: cache}, nil
}

func (s *pageStore) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *pageStore) exists(rel string) (bool, error) {
	if s.cache.Contains(rel) {
		return true, nil
	}
	_, err := os.Stat(s.abs(rel))
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errors.WrapError(err, errors.CategoryFileSystem, "stat index page").
			Fatal().WithContext("page", rel).Build()
	}
}

// load returns the parsed page. A missing page is a structural error.
func (s *pageStore) load(rel string) (*html.Node, error) {
	if doc, ok := s.cache.Get(rel); ok {
		s.hits++
		return doc, nil
	}
	s.misses++
	doc, err := htmlutil.ParseFile(s.abs(rel))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.StructureError("required index page is missing").
				Fatal().WithContext("page", rel).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read index page").
			Fatal().WithContext("page", rel).Build()
	}
	s.cache.Add(rel, doc)
	return doc, nil
}

// create parses markup as a new page and writes it.
func (s *pageStore) create(rel, markup string) (*html.Node, error) {
	doc, err := htmlutil.Parse([]byte(markup))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "parse rendered page").
			Fatal().WithContext("page", rel).Build()
	}
	if err := s.save(rel, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *pageStore) save(rel string, doc *html.Node) error {
	if err := htmlutil.WriteFile(s.abs(rel), doc); err != nil {
		s.cache.Remove(rel)
		return errors.WrapError(err, errors.CategoryFileSystem, "write index page").
			Fatal().WithContext("page", rel).Build()
	}
	s.writes++
	s.cache.Add(rel, doc)
	return nil
}
