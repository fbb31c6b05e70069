package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/classdoc"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
)

// BuildProject walks the merged tree and registers every class page under
// both its qualified and its simple name.
func BuildProject(ctx context.Context, root string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := NewBuilder(RegistryProject, true, logger)
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
		if !classdoc.IsClassPage(rel) {
			return nil
		}
		doc := classdoc.FromPath(rel)
		e := Entry{Target: doc.RelPath, Display: doc.SimpleName}
		b.AddQualified(doc.QualifiedName, e)
		b.AddSimple(doc.SimpleName, e)
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk merged tree").
			Fatal().
			WithContext("root", root).
			Build()
	}
	reg := b.Build()
	logger.Info("Built project class catalog",
		logfields.Catalog(RegistryProject),
		logfields.Count(reg.Len()),
		slog.Int("simple_names", reg.SimpleLen()),
		slog.Int("collisions", reg.Collisions()))
	return reg, nil
}
