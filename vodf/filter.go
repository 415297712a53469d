package vodf

import (
	"slices"
)

// FilterParameterString names the event column a ParameterBand applies to, e.g. "event_type".
type FilterParameterString = string

/***** ObservationFilter *****/

// ObservationFilter selects events by an optional time window and any number of
// numeric parameter bands. All clauses must match.
type ObservationFilter struct {
	timeWindow    Interval
	hasTimeWindow bool
	bands         []ParameterBand
}

// TimeWindow returns the time clause and whether one is set.
func (f ObservationFilter) TimeWindow() (Interval, bool) {
	return f.timeWindow, f.hasTimeWindow
}

// Bands returns the parameter band clauses.
func (f ObservationFilter) Bands() []ParameterBand {
	return f.bands
}

// IsEmpty reports whether the filter lets every event through.
func (f ObservationFilter) IsEmpty() bool {
	return !f.hasTimeWindow && len(f.bands) == 0
}

// WithTimeWindow returns a copy of the filter whose time clause is replaced by window.
func (f ObservationFilter) WithTimeWindow(window Interval) ObservationFilter {
	f.timeWindow = window
	f.hasTimeWindow = true
	f.bands = slices.Clone(f.bands)

	return f
}

// Matches reports whether e passes every clause.
//
// The time clause is half-open (Start <= t < Stop), as is every band (Lo <= v < Hi).
// An event lacking a banded column never matches.
func (f ObservationFilter) Matches(e Event) bool {
	if f.hasTimeWindow && !f.timeWindow.ContainsHalfOpen(e.Time) {
		return false
	}

	for _, band := range f.bands {
		if !band.Matches(e) {
			return false
		}
	}

	return true
}

// FilterEvents returns the events of list passing the filter. list is not modified.
func (f ObservationFilter) FilterEvents(list EventList) EventList {
	if f.IsEmpty() {
		return EventList{Header: list.Header, Events: slices.Clone(list.Events)}
	}

	return list.Select(f.Matches)
}

/***** ParameterBand *****/

// ParameterBand selects events whose named column lies in [Lo, Hi).
type ParameterBand struct {
	parameter FilterParameterString
	lo        float64
	hi        float64
}

// Band builds a ParameterBand.
func Band(parameter FilterParameterString, lo, hi float64) ParameterBand {
	return ParameterBand{parameter: parameter, lo: lo, hi: hi}
}

// Parameter returns the event column the band applies to.
func (pb ParameterBand) Parameter() FilterParameterString {
	return pb.parameter
}

// Lo returns the inclusive lower bound.
func (pb ParameterBand) Lo() float64 {
	return pb.lo
}

// Hi returns the exclusive upper bound.
func (pb ParameterBand) Hi() float64 {
	return pb.hi
}

// Matches reports whether the event's column value lies in [Lo, Hi).
func (pb ParameterBand) Matches(e Event) bool {
	v, err := e.Column(pb.parameter)
	if err != nil {
		return false
	}

	return v >= pb.lo && v < pb.hi
}

/***** FilterBuilder *****/

// FilterBuilder builds an ObservationFilter. It only allows the combinations that make
// sense for decomposing an observation:
//
//   - empty filter
//   - (time window)
//   - (parameter band AND parameter band...)
//   - (time window AND parameter band AND parameter band...)
type FilterBuilder interface {
	// WithinTimeWindow sets the time clause.
	WithinTimeWindow(window Interval) FilterBuilderWithTimeWindow

	// AnyParameterBand starts a filter without a time clause.
	AnyParameterBand(band ParameterBand, bands ...ParameterBand) CompletedFilterBuilder

	// MatchingAnyEvent directly creates an empty ObservationFilter.
	MatchingAnyEvent() ObservationFilter
}

type FilterBuilderWithTimeWindow interface {
	// AndParameterBand adds one or multiple band clauses.
	//
	// It sanitizes the input:
	//	- removing bands without a parameter name
	//	- removing bands with Lo > Hi
	AndParameterBand(band ParameterBand, bands ...ParameterBand) CompletedFilterBuilder

	// Finalize returns the ObservationFilter.
	Finalize() ObservationFilter
}

type CompletedFilterBuilder interface {
	// AndParameterBand adds further band clauses.
	AndParameterBand(band ParameterBand, bands ...ParameterBand) CompletedFilterBuilder

	// Finalize returns the ObservationFilter.
	Finalize() ObservationFilter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter ObservationFilter
}

// BuildObservationFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildObservationFilter() FilterBuilder {
	return filterBuilder{}
}

// WithinTimeWindow sets the time clause.
func (fb filterBuilder) WithinTimeWindow(window Interval) FilterBuilderWithTimeWindow {
	fb.filter.timeWindow = window
	fb.filter.hasTimeWindow = true

	return fb
}

// AnyParameterBand starts a filter without a time clause.
func (fb filterBuilder) AnyParameterBand(band ParameterBand, bands ...ParameterBand) CompletedFilterBuilder {
	return fb.AndParameterBand(band, bands...)
}

// AndParameterBand adds one or multiple band clauses.
func (fb filterBuilder) AndParameterBand(band ParameterBand, bands ...ParameterBand) CompletedFilterBuilder {
	fb.filter.bands = append(
		slices.Clone(fb.filter.bands),
		fb.sanitizeBands(band, bands...)...,
	)

	return fb
}

func (fb filterBuilder) sanitizeBands(band ParameterBand, bands ...ParameterBand) []ParameterBand {
	allBands := append([]ParameterBand{band}, bands...)
	allBands = slices.DeleteFunc(allBands, func(b ParameterBand) bool {
		return b.parameter == "" || b.lo > b.hi
	})

	return slices.Clip(allBands)
}

// MatchingAnyEvent directly creates an empty filter.
func (fb filterBuilder) MatchingAnyEvent() ObservationFilter {
	return ObservationFilter{}
}

// Finalize returns the ObservationFilter.
func (fb filterBuilder) Finalize() ObservationFilter {
	return fb.filter
}
