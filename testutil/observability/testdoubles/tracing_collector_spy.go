package testdoubles

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/vodfgo/vodf/vodf"
)

// SpySpanContext implements vodf.SpanContext.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// TracingCollectorSpy implements vodf.TracingCollector and records every span.
type TracingCollectorSpy struct {
	spans []*SpySpanRecord
	mu    sync.Mutex
}

// SpySpanRecord is one captured span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool

	span *SpySpanContext
}

// NewTracingCollectorSpy creates an empty TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, vodf.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	span := &SpySpanContext{}
	s.spans = append(s.spans, &SpySpanRecord{Name: name, StartAttributes: maps.Clone(attrs), span: span})

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx vodf.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.spans {
		if r.span == span {
			r.Status = status
			r.EndAttributes = maps.Clone(attrs)
			r.Finished = true
		}
	}
}

// Spans returns copies of the captured spans named name.
func (s *TracingCollectorSpy) Spans(name string) []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, 0)
	for _, r := range s.spans {
		if r.Name == name {
			spans = append(spans, *r)
		}
	}

	return slices.Clip(spans)
}

// HasFinishedSpan reports whether a span named name was finished with status.
func (s *TracingCollectorSpy) HasFinishedSpan(name, status string) bool {
	return slices.ContainsFunc(s.Spans(name), func(r SpySpanRecord) bool {
		return r.Finished && r.Status == status
	})
}
