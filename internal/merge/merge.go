// Package merge runs a documentation merge: it copies the primary tree to the
// output, adds the secondary tree's missing class pages with their index
// entries, and links class names in the merged prose.
package merge

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/catalog"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/classdoc"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/config"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/htmlutil"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/index"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/linker"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/metrics"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/render"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/util/sets"
)

// Stage names, also used as metric labels.
const (
	StageCopy    = "copy"
	StageMerge   = "merge"
	StageCatalog = "catalog"
	StageLink    = "link"
)

// Service executes merge runs.
type Service struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	renderer *render.Renderer
	runID    func() string
}

// NewService creates a service with a no-op recorder and the default logger.
func NewService() *Service {
	return &Service{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		runID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the base logger; each run derives one carrying its run ID.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRenderer sets the fragment renderer used for index pages. When unset
// the embedded fragments are loaded on first use.
func (s *Service) WithRenderer(r *render.Renderer) *Service {
	s.renderer = r
	return s
}

// Run merges the trees named by cfg. cfg is expected to be validated. The
// returned report is never nil and describes the work done up to a failure.
func (s *Service) Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	start := time.Now()
	rep := newReport(s.runID())
	log := s.logger.With(logfields.RunID(rep.RunID))

	err := s.run(ctx, cfg, rep, log)

	rep.Duration = time.Since(start)
	rep.Status = statusFor(ctx, err)
	s.recorder.ObserveRunDuration(rep.Duration)
	s.recorder.IncRunOutcome(resultFor(ctx, err))
	s.recorder.AddPagesMerged(rep.PagesMerged)
	s.recorder.AddPackagesCreated(rep.PackagesCreated)
	for _, pass := range rep.Links {
		s.recorder.AddLinksInserted(pass.Registry, pass.LinksInserted)
	}
	s.recorder.SetCatalogSize(catalog.RegistryProject, rep.ProjectClasses)
	s.recorder.SetCatalogSize(catalog.RegistryExternal, rep.ExternalClasses)

	if err != nil {
		log.Error("Merge failed", logfields.Error(err),
			slog.String("status", string(rep.Status)),
			logfields.DurationMS(float64(rep.Duration.Milliseconds())))
	} else {
		rep.Log(log)
	}
	if werr := s.writeTextfile(cfg, log); werr != nil && err == nil {
		err = werr
	}
	return rep, err
}

func (s *Service) run(ctx context.Context, cfg *config.Config, rep *Report, log *slog.Logger) error {
	if cfg == nil {
		return errors.ConfigError("configuration required").Build()
	}
	if s.renderer == nil {
		r, err := render.New()
		if err != nil {
			return err
		}
		s.renderer = r
	}
	log.Info("Starting merge",
		slog.String("primary", cfg.PrimaryDir),
		slog.String("secondary", cfg.SecondaryDir),
		slog.String("output", cfg.OutputDir))

	if err := s.stage(ctx, rep, log, StageCopy, func(ctx context.Context, log *slog.Logger) error {
		return s.copyPrimary(ctx, cfg, rep, log)
	}); err != nil {
		return err
	}
	if err := s.stage(ctx, rep, log, StageMerge, func(ctx context.Context, log *slog.Logger) error {
		return s.mergeSecondary(ctx, cfg, rep, log)
	}); err != nil {
		return err
	}

	var registries []*catalog.Registry
	if err := s.stage(ctx, rep, log, StageCatalog, func(ctx context.Context, log *slog.Logger) error {
		var err error
		registries, err = s.buildCatalogs(ctx, cfg, rep, log)
		return err
	}); err != nil {
		return err
	}
	return s.stage(ctx, rep, log, StageLink, func(ctx context.Context, log *slog.Logger) error {
		return s.link(ctx, cfg, registries, rep, log)
	})
}

// stage times fn and records its result under name.
func (s *Service) stage(ctx context.Context, rep *Report, log *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	start := time.Now()
	stageLog := log.With(logfields.Stage(name))
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	err := fn(ctx, stageLog)
	d := time.Since(start)
	rep.StageDurations[name] = d
	s.recorder.ObserveStageDuration(name, d)
	s.recorder.IncStageResult(name, resultFor(ctx, err))
	if err == nil {
		stageLog.Debug("Stage complete", logfields.DurationMS(float64(d.Milliseconds())))
	}
	return err
}

func (s *Service) copyPrimary(ctx context.Context, cfg *config.Config, rep *Report, log *slog.Logger) error {
	if cfg.ShouldCleanOutput() {
		if err := resetDir(cfg.OutputDir); err != nil {
			return err
		}
	}
	n, err := copyTree(ctx, cfg.PrimaryDir, cfg.OutputDir)
	rep.FilesCopied = n
	if err != nil {
		return err
	}
	log.Info("Copied primary tree", logfields.Count(n), logfields.Path(cfg.OutputDir))
	return nil
}

// mergeSecondary copies each secondary class page the output lacks and
// registers it in the output's index pages. Pages are visited in lexical
// path order so index updates are deterministic.
func (s *Service) mergeSecondary(ctx context.Context, cfg *config.Config, rep *Report, log *slog.Logger) error {
	syn, err := index.New(cfg.OutputDir, s.renderer, index.WithLogger(log))
	if err != nil {
		return err
	}
	pages, err := classPages(ctx, cfg.SecondaryDir)
	if err != nil {
		return err
	}

	packages := sets.New[string]()
	for _, rel := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(cfg.OutputDir, filepath.FromSlash(rel))
		if _, err := os.Stat(dst); err == nil {
			rep.PagesSkipped++
			continue
		} else if !stderrors.Is(err, fs.ErrNotExist) {
			return fsError(err, "stat output page", dst)
		}

		if err := copyFile(filepath.Join(cfg.SecondaryDir, filepath.FromSlash(rel)), dst); err != nil {
			return err
		}
		doc, err := describePage(dst, rel)
		if err != nil {
			return err
		}
		if err := syn.RegisterNewPage(ctx, doc); err != nil {
			return err
		}
		rep.PagesMerged++
		packages.Add(doc.PackageDisplayName())
		log.Info("Merged class page", logfields.Page(rel), logfields.Kind(doc.Kind.Label()))
	}

	st := syn.Stats()
	rep.PackagesTouched = packages.Len()
	rep.PackagesCreated = st.PackagesCreated
	rep.IndexEntries = st.EntriesInserted
	rep.IndexPagesWritten = st.PagesWritten
	log.Info("Merged secondary tree",
		slog.Int("pages_merged", rep.PagesMerged),
		slog.Int("pages_skipped", rep.PagesSkipped),
		slog.Int("packages_created", rep.PackagesCreated),
		slog.Int("cache_hits", st.CacheHits),
		slog.Int("cache_misses", st.CacheMisses))
	return nil
}

// describePage derives the document for a copied page and reads its kind
// from the page heading.
func describePage(abs, rel string) (classdoc.Document, error) {
	doc := classdoc.FromPath(rel)
	node, err := htmlutil.ParseFile(abs)
	if err != nil {
		return doc, fsError(err, "parse class page", abs)
	}
	kind, heading, ok := classdoc.Classify(node)
	if !ok {
		return doc, errors.ValidationError("unrecognized class kind").Fatal().
			WithContext("page", rel).
			WithContext("heading", heading).
			Build()
	}
	doc.Kind = kind
	return doc, nil
}

func (s *Service) buildCatalogs(ctx context.Context, cfg *config.Config, rep *Report, log *slog.Logger) ([]*catalog.Registry, error) {
	project, err := catalog.BuildProject(ctx, cfg.OutputDir, log)
	if err != nil {
		return nil, err
	}
	rep.ProjectClasses = project.Len()
	rep.SimpleCollisions = project.Collisions()
	registries := []*catalog.Registry{project}

	if !cfg.ExternalLinking() {
		log.Info("External linking disabled")
		return registries, nil
	}
	platform, err := catalog.OpenSources(cfg.Platform.Sources)
	if err != nil {
		return nil, err
	}
	dynamic, err := catalog.OpenSources(cfg.Dynamic.Sources)
	if err != nil {
		return nil, err
	}
	external, err := catalog.BuildExternal(ctx, catalog.ExternalOptions{
		PlatformVersion:  cfg.Platform.Version,
		DynamicVersion:   cfg.Dynamic.Version,
		PlatformSources:  platform,
		DynamicSources:   dynamic,
		PlatformPackages: cfg.Platform.Packages,
		DynamicPackages:  cfg.Dynamic.Packages,
	}, log)
	if err != nil {
		return nil, err
	}
	rep.ExternalClasses = external.Len()
	return append(registries, external), nil
}

// link runs one pass per registry, in order. The project pass goes first so
// its anchors shield project names from the external pass.
func (s *Service) link(ctx context.Context, cfg *config.Config, registries []*catalog.Registry, rep *Report, log *slog.Logger) error {
	for _, reg := range registries {
		selectors := cfg.Linking.Selectors
		if !reg.Relative() {
			selectors = cfg.Linking.ExternalSelectors
		}
		l, err := linker.New(reg, linker.Options{
			Selectors: selectors,
			Workers:   cfg.Linking.Workers,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		st, err := l.Apply(ctx, cfg.OutputDir)
		if err != nil {
			return err
		}
		rep.Links = append(rep.Links, st)
	}
	return nil
}

type textfileWriter interface {
	WriteTextfile(path string) error
}

func (s *Service) writeTextfile(cfg *config.Config, log *slog.Logger) error {
	if cfg == nil || cfg.Metrics.Textfile == "" {
		return nil
	}
	w, ok := s.recorder.(textfileWriter)
	if !ok {
		log.Warn("Metrics recorder cannot export a textfile", logfields.Path(cfg.Metrics.Textfile))
		return nil
	}
	if err := w.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return err
	}
	log.Info("Wrote metrics textfile", logfields.Path(cfg.Metrics.Textfile))
	return nil
}

// classPages lists the class pages under root as sorted slash paths.
func classPages(ctx context.Context, root string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if classdoc.IsClassPage(rel) {
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fsError(err, "walk secondary tree", root)
	}
	return pages, nil
}

func resultFor(ctx context.Context, err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case ctx.Err() != nil || stderrors.Is(err, context.Canceled):
		return metrics.ResultCanceled
	}
	if ce, ok := errors.AsClassified(err); ok && ce.Severity() == errors.SeverityWarning {
		return metrics.ResultWarning
	}
	return metrics.ResultFatal
}
