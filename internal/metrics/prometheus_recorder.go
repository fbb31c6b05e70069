package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/kota65535/javadoc-merger-maven-plugin/internal/foundation/errors"
)

const namespace = "apidocmerge"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	stageDuration   *prom.HistogramVec
	runDuration     prom.Gauge
	stageResults    *prom.CounterVec
	runOutcome      *prom.CounterVec
	pagesMerged     prom.Counter
	packagesCreated prom.Counter
	linksInserted   *prom.CounterVec
	catalogSize     *prom.GaugeVec
}

// NewPrometheusRecorder creates the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual merge stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last merge run",
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Merge runs by final status",
		}, []string{"outcome"}),
		pagesMerged: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_merged_total",
			Help:      "Secondary class pages copied into the merged tree",
		}),
		packagesCreated: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "packages_created_total",
			Help:      "Packages that received new index pages",
		}),
		linksInserted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "links_inserted_total",
			Help:      "Class-name anchors inserted per registry pass",
		}, []string{"registry"}),
		catalogSize: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_classes",
			Help:      "Qualified class names per catalog",
		}, []string{"catalog"}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome,
		pr.pagesMerged, pr.packagesCreated, pr.linksInserted, pr.catalogSize)
	return pr
}

// Registry returns the backing registry.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Set(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(result ResultLabel) {
	p.runOutcome.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddPagesMerged(n int) { p.pagesMerged.Add(float64(n)) }

func (p *PrometheusRecorder) AddPackagesCreated(n int) { p.packagesCreated.Add(float64(n)) }

func (p *PrometheusRecorder) AddLinksInserted(registry string, n int) {
	p.linksInserted.WithLabelValues(registry).Add(float64(n))
}

func (p *PrometheusRecorder) SetCatalogSize(catalog string, n int) {
	p.catalogSize.WithLabelValues(catalog).Set(float64(n))
}

// WriteTextfile writes the registry in Prometheus text format. The file is
// replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write metrics textfile").
			WithContext("path", path).Build()
	}
	return nil
}
