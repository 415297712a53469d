package vodf

import (
	"errors"
	"maps"
	"math"
	"slices"
	"time"
)

var ErrUnknownEventColumn = errors.New("unknown event column")

const (
	ColumnTime      = "time"
	ColumnEventType = "event_type"
	ColumnEnergy    = "energy"
	ColumnRA        = "ra"
	ColumnDec       = "dec"
)

// Event is one recorded event.
//
// Category is kept as a float64 because event categories are stored on a continuous-looking
// column; selection by category uses a numeric band, not an exact compare.
type Event struct {
	ID       int64
	Time     time.Time
	Category float64
	Energy   float64 // TeV
	RA       float64 // deg
	Dec      float64 // deg
}

// Column returns the named numeric column of the event. Time is returned in Unix seconds.
func (e Event) Column(name string) (float64, error) {
	switch name {
	case ColumnTime:
		return UnixSeconds(e.Time), nil
	case ColumnEventType:
		return e.Category, nil
	case ColumnEnergy:
		return e.Energy, nil
	case ColumnRA:
		return e.RA, nil
	case ColumnDec:
		return e.Dec, nil
	default:
		return 0, ErrUnknownEventColumn
	}
}

// EventList is an event table together with its header keywords.
// Once shared by observations it must be treated as read-only.
type EventList struct {
	Header map[string]string
	Events []Event
}

// NewEventList copies header and events into a new EventList.
func NewEventList(header map[string]string, events ...Event) EventList {
	return EventList{Header: maps.Clone(header), Events: slices.Clone(events)}
}

// Len returns the number of events.
func (l EventList) Len() int {
	return len(l.Events)
}

// IsEmpty reports whether the list holds neither events nor header keywords.
func (l EventList) IsEmpty() bool {
	return len(l.Events) == 0 && len(l.Header) == 0
}

// Times returns the event times in list order.
func (l EventList) Times() []time.Time {
	times := make([]time.Time, 0, len(l.Events))
	for _, e := range l.Events {
		times = append(times, e.Time)
	}

	return times
}

// Select returns a new EventList holding the events for which keep returns true.
// The header is shared, the receiver is not modified.
func (l EventList) Select(keep func(Event) bool) EventList {
	selected := make([]Event, 0, len(l.Events))
	for _, e := range l.Events {
		if keep(e) {
			selected = append(selected, e)
		}
	}

	return EventList{Header: l.Header, Events: selected}
}

// UnixSeconds converts t to fractional seconds since the Unix epoch.
func UnixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// FromUnixSeconds converts fractional seconds since the Unix epoch to a UTC time, rounded to
// the nearest nanosecond. A float64 holds about 0.2µs at present-day epochs, so a
// UnixSeconds/FromUnixSeconds round trip is not exact; use UnixNano for storage.
func FromUnixSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)

	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// FromUnixNano converts nanoseconds since the Unix epoch to a UTC time.
func FromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
