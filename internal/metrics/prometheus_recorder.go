package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitekit"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	passDuration  prom.Histogram
	buildDuration prom.Histogram
	assets        *prom.CounterVec
	warnings      *prom.CounterVec
	pending       prom.Gauge
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg,
// or with a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		passDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of scheduler passes",
			Buckets:   prom.DefBuckets,
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		assets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assets_total",
			Help:      "Per-pass asset results by outcome",
		}, []string{"outcome"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "processor_warnings_total",
			Help:      "Processor failures that were skipped",
		}, []string{"processor"}),
		pending: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_assets",
			Help:      "Assets still pending after the last pass",
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.passDuration, pr.buildDuration, pr.assets, pr.warnings, pr.pending, pr.buildOutcome)
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncAssetOutcome(outcome AssetOutcome) {
	p.assets.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncProcessorWarning(processor string) {
	p.warnings.WithLabelValues(processor).Inc()
}

func (p *PrometheusRecorder) SetPending(n int) { p.pending.Set(float64(n)) }

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes all registered metrics to path in the text
// exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
