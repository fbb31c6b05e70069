package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

// CatalogCmd implements the 'catalog' command.
type CatalogCmd struct {
	Dir string `arg:"" help:"Documentation tree to scan" type:"existingdir"`
}

func (c *CatalogCmd) Run(_ *Global, _ *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	return RunCatalog(ctx, c.Dir, os.Stdout, slog.Default())
}

// RunCatalog prints every class of the tree at dir with its page, sorted by
// qualified name.
func RunCatalog(ctx context.Context, dir string, out io.Writer, logger *slog.Logger) error {
	reg, err := catalog.BuildProject(ctx, dir, logger)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range reg.QualifiedNames() {
		e, _ := reg.LookupQualified(name)
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", name, e.Target)
	}
	if err := tw.Flush(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write catalog").Build()
	}
	if n := reg.Collisions(); n > 0 {
		logger.Warn("Simple class names are ambiguous", slog.Int("collisions", n))
	}
	return nil
}
