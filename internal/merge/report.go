package merge

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/linker"
	"github.com/kota65535/javadoc-merger-maven-plugin/internal/logfields"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Report describes one merge run.
type Report struct {
	RunID  string
	Status Status

	FilesCopied       int // files copied from the primary tree
	PagesMerged       int // secondary class pages added to the output
	PagesSkipped      int // secondary class pages already present
	PackagesTouched   int
	PackagesCreated   int
	IndexEntries      int
	IndexPagesWritten int

	ProjectClasses   int
	SimpleCollisions int
	ExternalClasses  int

	Links          []linker.Stats
	StageDurations map[string]time.Duration
	Duration       time.Duration
}

func newReport(runID string) *Report {
	return &Report{RunID: runID, StageDurations: make(map[string]time.Duration)}
}

// LinksInserted sums the links of every pass.
func (r *Report) LinksInserted() int {
	n := 0
	for _, p := range r.Links {
		n += p.LinksInserted
	}
	return n
}

// Pass returns the stats of the pass over the named registry.
func (r *Report) Pass(registry string) (linker.Stats, bool) {
	for _, p := range r.Links {
		if p.Registry == registry {
			return p, true
		}
	}
	return linker.Stats{}, false
}

// Log writes the run summary.
func (r *Report) Log(log *slog.Logger) {
	attrs := []any{
		slog.String("status", string(r.Status)),
		slog.Int("files_copied", r.FilesCopied),
		slog.Int("pages_merged", r.PagesMerged),
		slog.Int("pages_skipped", r.PagesSkipped),
		slog.Int("packages_created", r.PackagesCreated),
		slog.Int("project_classes", r.ProjectClasses),
		slog.Int("external_classes", r.ExternalClasses),
		slog.Int("simple_name_collisions", r.SimpleCollisions),
	}
	for _, p := range r.Links {
		attrs = append(attrs, slog.Group("links_"+p.Registry,
			slog.Int("pages_changed", p.PagesChanged),
			slog.Int("inserted", p.LinksInserted)))
	}
	for _, stage := range []string{StageCopy, StageMerge, StageCatalog, StageLink} {
		if d, ok := r.StageDurations[stage]; ok {
			attrs = append(attrs, slog.Float64(stage+"_ms", float64(d.Milliseconds())))
		}
	}
	attrs = append(attrs, logfields.DurationMS(float64(r.Duration.Milliseconds())))
	log.Info("Merge complete", attrs...)
}

func statusFor(ctx context.Context, err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case ctx.Err() != nil || stderrors.Is(err, context.Canceled):
		return StatusCanceled
	}
	return StatusFailed
}
