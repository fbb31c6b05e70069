package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/config"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/merge"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/metrics"
)

// MergeCmd implements the 'merge' command.
type MergeCmd struct {
	Primary         string   `short:"p" help:"Primary (Javadoc) tree; overrides primary_dir"`
	Secondary       string   `short:"s" help:"Secondary (Groovydoc) tree; overrides secondary_dir"`
	Output          string   `short:"o" help:"Output directory; overrides output_dir"`
	PlatformVersion string   `name:"platform-version" help:"Platform (Java) version used for external links"`
	DynamicVersion  string   `name:"dynamic-version" help:"Dynamic language (Groovy) version used for external links"`
	PlatformSource  []string `name:"platform-source" help:"Platform class source: jmods dir, jar, class dir or name list (repeatable)"`
	DynamicSource   []string `name:"dynamic-source" help:"Dynamic language class source (repeatable)"`
	NoExternal      bool     `name:"no-external" help:"Skip the external link pass"`
	NoClean         bool     `name:"no-clean" help:"Keep existing output directory contents"`
	Workers         int      `help:"Parallel link workers (0 uses the configured value)"`
	MetricsTextfile string   `name:"metrics-textfile" help:"Write run metrics in Prometheus text format to this file"`
}

func (m *MergeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	m.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	level := cfg.Logging.Level
	if root.Verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(NewLogger(os.Stderr, level, cfg.Logging.Format))

	ctx, cancel := signalContext()
	defer cancel()
	return RunMerge(ctx, cfg, os.Stdout, slog.Default())
}

// apply overlays the flags that were given onto cfg.
func (m *MergeCmd) apply(cfg *config.Config) {
	if m.Primary != "" {
		cfg.PrimaryDir = m.Primary
	}
	if m.Secondary != "" {
		cfg.SecondaryDir = m.Secondary
	}
	if m.Output != "" {
		cfg.OutputDir = m.Output
	}
	if m.PlatformVersion != "" {
		cfg.Platform.Version = m.PlatformVersion
	}
	if m.DynamicVersion != "" {
		cfg.Dynamic.Version = m.DynamicVersion
	}
	if len(m.PlatformSource) > 0 {
		cfg.Platform.Sources = m.PlatformSource
	}
	if len(m.DynamicSource) > 0 {
		cfg.Dynamic.Sources = m.DynamicSource
	}
	if m.NoExternal {
		off := false
		cfg.Linking.External = &off
	}
	if m.NoClean {
		off := false
		cfg.CleanOutput = &off
	}
	if m.Workers > 0 {
		cfg.Linking.Workers = m.Workers
	}
	if m.MetricsTextfile != "" {
		cfg.Metrics.Textfile = m.MetricsTextfile
	}
}

// RunMerge executes one merge and prints a short summary to out.
func RunMerge(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	// Provide friendly user-facing messages on stdout for CLI integration tests.
	_, _ = fmt.Fprintln(out, "Starting apidoc merge")

	svc := merge.NewService().WithLogger(logger)
	if cfg.Metrics.Textfile != "" {
		svc.WithRecorder(metrics.NewPrometheusRecorder(nil))
	}
	rep, err := svc.Run(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Merge %s\n", rep.Status)
		return err
	}
	_, _ = fmt.Fprintf(out, "Merged %d pages (%d new packages), inserted %d links into %s\n",
		rep.PagesMerged, rep.PackagesCreated, rep.LinksInserted(), cfg.OutputDir)
	return nil
}
