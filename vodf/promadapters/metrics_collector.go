// Package promadapters implements vodf.MetricsCollector with Prometheus client_golang vectors.
package promadapters

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vodfgo/vodf/vodf"
)

// metricDroppedSamples counts samples whose label names differ from those the vector was
// created with.
const metricDroppedSamples = "vodf_metrics_dropped_samples_total"

var help = map[string]string{
	vodf.MetricSplitDuration:       "Duration of splitting a composite observation",
	vodf.MetricSplitObservations:   "Number of observations produced by the last split",
	vodf.MetricSplitSkippedBundles: "Splits that skipped at least one bundle",
	vodf.MetricLoadDuration:        "Duration of loading response bundles from the component index",
	vodf.MetricLoadErrors:          "Failed bundle loads by error type",

	"vodf_sql_query_duration_seconds": "Duration of sqlengine statements",
	"vodf_sql_rows":                   "Rows returned or written by the last sqlengine operation",
	"vodf_sql_errors_total":           "Failed sqlengine operations by error type",
}

// MetricsCollector creates one vector per metric name on first use. Label names are taken
// from the first sample, sorted, and fixed from then on.
type MetricsCollector struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	labelNames map[string][]string
	dropped    prometheus.Counter
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithBuckets sets the histogram buckets in seconds. Default prometheus.DefBuckets.
func WithBuckets(buckets ...float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = slices.Clone(buckets)
	}
}

// NewMetricsCollector registers its vectors with registerer, prometheus.DefaultRegisterer when nil.
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		labelNames: make(map[string][]string),
	}

	for _, option := range options {
		option(m)
	}

	m.dropped = register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricDroppedSamples,
		Help: "Samples dropped because their label names did not match the metric",
	}))

	return m
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.histograms[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    helpFor(metric),
			Buckets: m.buckets,
		}, m.fixLabelNames(metric, labels)))
		m.histograms[metric] = vec
	}

	observer, err := vec.GetMetricWith(m.labelsFor(metric, labels))
	if err != nil {
		m.dropped.Inc()
		return
	}

	observer.Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.counters[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metric,
			Help: helpFor(metric),
		}, m.fixLabelNames(metric, labels)))
		m.counters[metric] = vec
	}

	counter, err := vec.GetMetricWith(m.labelsFor(metric, labels))
	if err != nil {
		m.dropped.Inc()
		return
	}

	counter.Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.gauges[metric]
	if !ok {
		vec = register(m.registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metric,
			Help: helpFor(metric),
		}, m.fixLabelNames(metric, labels)))
		m.gauges[metric] = vec
	}

	gauge, err := vec.GetMetricWith(m.labelsFor(metric, labels))
	if err != nil {
		m.dropped.Inc()
		return
	}

	gauge.Set(value)
}

func (m *MetricsCollector) fixLabelNames(metric string, labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	slices.Sort(names)
	m.labelNames[metric] = names

	return names
}

// labelsFor returns labels as prometheus.Labels. A label the vector was created with but
// missing from the sample is set to "".
func (m *MetricsCollector) labelsFor(metric string, labels map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(labels))
	for k, v := range labels {
		out[k] = v
	}

	for _, name := range m.labelNames[metric] {
		if _, ok := out[name]; !ok {
			out[name] = ""
		}
	}

	return out
}

func helpFor(metric string) string {
	if h, ok := help[metric]; ok {
		return h
	}

	return "vodf metric " + metric
}

// register registers c, or returns the collector already registered under the same descriptor.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}

	return c
}

var _ vodf.MetricsCollector = (*MetricsCollector)(nil)
