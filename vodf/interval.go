package vodf

import (
	"fmt"
	"time"
)

// Interval is a validity time window (a GTI) with Start <= Stop.
type Interval struct {
	Start time.Time
	Stop  time.Time
}

// NewInterval builds an Interval and rejects reversed bounds.
func NewInterval(start, stop time.Time) (Interval, error) {
	if start.After(stop) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvalidInterval, start.Format(time.RFC3339Nano), stop.Format(time.RFC3339Nano))
	}

	return Interval{Start: start, Stop: stop}, nil
}

// MustInterval is like NewInterval but panics on reversed bounds.
// It is meant for literals in tests and fixtures.
func MustInterval(start, stop time.Time) Interval {
	iv, err := NewInterval(start, stop)
	if err != nil {
		panic(err)
	}

	return iv
}

// Duration returns Stop - Start.
func (iv Interval) Duration() time.Duration {
	return iv.Stop.Sub(iv.Start)
}

// SinceStart returns the signed offset t - Start.
func (iv Interval) SinceStart(t time.Time) time.Duration {
	return t.Sub(iv.Start)
}

// UntilStop returns the signed offset t - Stop.
func (iv Interval) UntilStop(t time.Time) time.Duration {
	return t.Sub(iv.Stop)
}

// ContainsOpen reports whether t lies strictly inside the interval.
// Both boundaries are excluded.
func (iv Interval) ContainsOpen(t time.Time) bool {
	return iv.SinceStart(t) > 0 && iv.UntilStop(t) < 0
}

// ContainsHalfOpen reports whether Start <= t < Stop.
func (iv Interval) ContainsHalfOpen(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.Stop)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.Stop) && other.Start.Before(iv.Stop)
}

// IsZero reports whether both bounds are the zero time.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.Stop.IsZero()
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.UTC().Format(time.RFC3339Nano), iv.Stop.UTC().Format(time.RFC3339Nano))
}
