package testdoubles

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// LogHandlerSpy is a slog.Handler capturing records for testing.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a LogHandlerSpy, optionally echoing records to stdout as JSON
// for debugging tests.
func NewLogHandlerSpy(logToStdOut bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdOut}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// Records returns a copy of the captured records.
func (s *LogHandlerSpy) Records() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

// HasLog reports whether a record with level and message was captured and, when attrKey is
// not empty, whether it carries that attribute.
func (s *LogHandlerSpy) HasLog(level slog.Level, message, attrKey string) bool {
	for _, r := range s.Records() {
		if r.Level != level || r.Message != message {
			continue
		}

		if attrKey == "" {
			return true
		}

		found := false
		r.Attrs(func(a slog.Attr) bool {
			found = a.Key == attrKey
			return !found
		})

		if found {
			return true
		}
	}

	return false
}
