package testdoubles

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// MetricsCollectorSpy implements vodf.MetricsCollector and records every call.
type MetricsCollectorSpy struct {
	records []SpyMetricRecord
	mu      sync.Mutex
}

// SpyMetricKind tells the three recording methods apart.
type SpyMetricKind string

const (
	SpyDuration SpyMetricKind = "duration"
	SpyCounter  SpyMetricKind = "counter"
	SpyValue    SpyMetricKind = "value"
)

// SpyMetricRecord is one captured recording.
type SpyMetricRecord struct {
	Kind     SpyMetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyDuration, Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyCounter, Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.add(SpyMetricRecord{Kind: SpyValue, Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) add(r SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
}

// Records returns the captured recordings of one kind for metric.
func (s *MetricsCollectorSpy) Records(kind SpyMetricKind, metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.DeleteFunc(slices.Clone(s.records), func(r SpyMetricRecord) bool {
		return r.Kind != kind || r.Metric != metric
	})
}

// HasRecord starts a matcher for a recording of kind for metric.
func (s *MetricsCollectorSpy) HasRecord(kind SpyMetricKind, metric string) *MetricRecordMatcher {
	return &MetricRecordMatcher{candidates: s.Records(kind, metric)}
}

// Reset clears all captured recordings.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// MetricRecordMatcher narrows captured recordings by label.
type MetricRecordMatcher struct {
	candidates []SpyMetricRecord
}

// WithLabel keeps the recordings carrying key=value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	m.candidates = slices.DeleteFunc(m.candidates, func(r SpyMetricRecord) bool {
		return r.Labels[key] != value
	})

	return m
}

// Assert reports whether any recording is left.
func (m *MetricRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}

// Count returns the number of recordings left.
func (m *MetricRecordMatcher) Count() int {
	return len(m.candidates)
}
