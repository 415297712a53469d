package testdoubles

import (
	"context"
	"slices"
	"sync"
)

// ContextualLoggerSpy implements vodf.ContextualLogger and records every call.
type ContextualLoggerSpy struct {
	records []SpyLogCall
	mu      sync.Mutex
}

// SpyLogCall is one captured log call.
type SpyLogCall struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Attr returns the value logged under key and whether it was present.
func (c SpyLogCall) Attr(key string) (any, bool) {
	for i := 0; i+1 < len(c.Args); i += 2 {
		if k, ok := c.Args[i].(string); ok && k == key {
			return c.Args[i+1], true
		}
	}

	return nil, false
}

// NewContextualLoggerSpy creates an empty ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogCall{Level: level, Message: msg, Args: slices.Clone(args), Context: ctx})
}

// Calls returns the captured calls of one level ("debug", "info", "warn", "error").
func (s *ContextualLoggerSpy) Calls(level string) []SpyLogCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]SpyLogCall, 0)
	for _, r := range s.records {
		if r.Level == level {
			calls = append(calls, r)
		}
	}

	return calls
}

// Find returns the first call with level and message.
func (s *ContextualLoggerSpy) Find(level, message string) (SpyLogCall, bool) {
	for _, c := range s.Calls(level) {
		if c.Message == message {
			return c, true
		}
	}

	return SpyLogCall{}, false
}

// HasLog reports whether a call with level and message was captured.
func (s *ContextualLoggerSpy) HasLog(level, message string) bool {
	_, ok := s.Find(level, message)

	return ok
}

// TotalCount returns the number of captured calls.
func (s *ContextualLoggerSpy) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Reset clears all captured calls.
func (s *ContextualLoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}
