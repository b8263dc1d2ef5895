// Package metrics defines the Prometheus collectors for lexicon resolution and
// commentary rendering, and renders them as text for the CLI.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Lookup step labels.
const (
	StepExact       = "exact"
	StepFlipCase    = "flip_case"
	StepStripSuffix = "strip_suffix"
	StepMiss        = "miss"
	StepError       = "error"
)

// Metrics holds the collectors, registered on their own registry.
type Metrics struct {
	LookupsTotal           *prometheus.CounterVec
	LookupLatency          prometheus.Histogram
	VersesResolvedTotal    *prometheus.CounterVec
	CommentaryRendersTotal *prometheus.CounterVec
	SourceErrorsTotal      *prometheus.CounterVec
	LexiconAvailable       prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openword",
				Name:      "lexicon_lookups_total",
				Help:      "Strong's code lookups by the step that resolved them (exact, flip_case, strip_suffix, miss, error).",
			},
			[]string{"step"},
		),
		LookupLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "openword",
				Name:      "lexicon_lookup_seconds",
				Help:      "Latency of one Strong's code resolution, all steps included.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
		),
		VersesResolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openword",
				Name:      "verse_vocabulary_total",
				Help:      "Verse vocabulary resolutions by result (ok, unavailable).",
			},
			[]string{"result"},
		),
		CommentaryRendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openword",
				Name:      "commentary_renders_total",
				Help:      "Commentary bodies rendered by kind and cache status.",
			},
			[]string{"kind", "cache"},
		),
		SourceErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openword",
				Name:      "source_errors_total",
				Help:      "Data source failures that were skipped, by source.",
			},
			[]string{"source"},
		),
		LexiconAvailable: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "openword",
				Name:      "lexicon_available",
				Help:      "1 once the lexicon opened, 0 if it failed to open.",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.LookupsTotal,
		m.LookupLatency,
		m.VersesResolvedTotal,
		m.CommentaryRendersTotal,
		m.SourceErrorsTotal,
		m.LexiconAvailable,
	)
	return m
}

// ObserveRender records one commentary rendering.
func (m *Metrics) ObserveRender(kind string, cached bool) {
	status := "miss"
	if cached {
		status = "hit"
	}
	m.CommentaryRendersTotal.WithLabelValues(kind, status).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns a Prometheus scrape HTTP handler for the collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Sample is one gathered counter or gauge value.
type Sample struct {
	Name   string  `json:"name"`
	Labels string  `json:"labels,omitempty"`
	Value  float64 `json:"value"`
}

// Snapshot gathers the current counter and gauge values, sorted by name and
// labels. Histograms contribute their sample count under name_count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: formatLabels(metric.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Name += "_count"
				s.Value = float64(metric.GetHistogram().GetSampleCount())
			default:
				continue
			}
			samples = append(samples, s)
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

// Value returns the value of one sample, or 0 if it has not been recorded.
func (m *Metrics) Value(name, labels string) float64 {
	samples, err := m.Snapshot()
	if err != nil {
		return 0
	}
	for _, s := range samples {
		if s.Name == name && s.Labels == labels {
			return s.Value
		}
	}
	return 0
}

// WriteText writes the snapshot as aligned "name{labels} value" lines.
func (m *Metrics) WriteText(w io.Writer) error {
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}
	width := 0
	for _, s := range samples {
		if n := utf8.RuneCountInString(s.Name + s.Labels); n > width {
			width = n
		}
	}
	for _, s := range samples {
		key := s.Name + s.Labels
		if _, err := fmt.Fprintf(w, "%-*s %g\n", width, key, s.Value); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
