package vodf

import (
	"maps"
)

// CompositeObservation is an observation whose instrument response varies over time
// intervals and event categories (a VODF observation). It owns one event list, one
// pointing and one Registry of response bundles.
//
// It is built fully formed and only read afterwards: SelectTime returns a narrowed copy.
type CompositeObservation struct {
	obsID    int64
	meta     ObservationMeta
	metaSet  bool
	events   EventList
	pointing Pointing
	location EarthLocation
	registry *Registry
	filter   ObservationFilter
}

// CompositeOption configures a CompositeObservation under construction.
type CompositeOption func(*CompositeObservation)

// WithMeta supplies the metadata. Without it, metadata is derived from the event-list header.
func WithMeta(meta ObservationMeta) CompositeOption {
	return func(o *CompositeObservation) {
		o.meta = meta
		o.meta.Optional = maps.Clone(meta.Optional)
		o.metaSet = true
	}
}

// WithPointing sets the pointing shared by every split observation.
func WithPointing(p Pointing) CompositeOption {
	return func(o *CompositeObservation) { o.pointing = p }
}

// WithEarthLocation sets the observatory location.
func WithEarthLocation(l EarthLocation) CompositeOption {
	return func(o *CompositeObservation) { o.location = l }
}

// WithObservationFilter sets the active filter of the composite observation.
func WithObservationFilter(f ObservationFilter) CompositeOption {
	return func(o *CompositeObservation) { o.filter = f }
}

// NewCompositeObservation is the factory method for CompositeObservation.
//
// A nil registry is treated as an empty one. Unless WithMeta is given, the metadata is
// derived here, once, from the event-list header.
func NewCompositeObservation(obsID int64, registry *Registry, events EventList, options ...CompositeOption) CompositeObservation {
	if registry == nil {
		registry = NewRegistry()
	}

	o := CompositeObservation{
		obsID:    obsID,
		events:   events,
		registry: registry,
	}

	for _, option := range options {
		option(&o)
	}

	if !o.metaSet && len(events.Header) > 0 {
		o.meta = MetaFromHeader(events.Header)
		o.metaSet = true
	}

	return o
}

// ObsID returns the observation id.
func (o CompositeObservation) ObsID() int64 {
	return o.obsID
}

// Meta returns the observation metadata and whether any is available.
func (o CompositeObservation) Meta() (ObservationMeta, bool) {
	return o.meta, o.metaSet
}

// Events returns the full event list. The active filter is not applied.
func (o CompositeObservation) Events() EventList {
	return o.events
}

// SelectedEvents returns the events passing the active filter.
func (o CompositeObservation) SelectedEvents() EventList {
	return o.filter.FilterEvents(o.events)
}

// Pointing returns the pointing.
func (o CompositeObservation) Pointing() Pointing {
	return o.pointing
}

// Location returns the observatory location.
func (o CompositeObservation) Location() EarthLocation {
	return o.location
}

// Filter returns the active observation filter.
func (o CompositeObservation) Filter() ObservationFilter {
	return o.filter
}

// Registry returns the response registry. It must not be modified while the
// observation is in use.
func (o CompositeObservation) Registry() *Registry {
	return o.registry
}

// NBundles returns the number of response bundles.
func (o CompositeObservation) NBundles() int {
	return o.registry.Len()
}

// EventCategories returns the distinct event categories of the registry.
func (o CompositeObservation) EventCategories() []Category {
	return o.registry.EventCategories()
}

// SingleBundleField returns the component of the only bundle in the registry.
//
// It is a shortcut for the single-interval case and fails with *AmbiguousResponseError
// unless the registry holds exactly one bundle. The component itself may be nil.
// ComponentGTI is rejected with *InvalidComponentError: a bundle carries its validity as
// Bundle.Validity, read it with Registry().Get(0).
func (o CompositeObservation) SingleBundleField(kind ComponentKind) (*Component, error) {
	if n := o.registry.Len(); n != 1 {
		return nil, &AmbiguousResponseError{Count: n}
	}

	if _, err := ParseComponentKind(kind.String()); err != nil {
		return nil, err
	}

	if kind == ComponentGTI {
		return nil, &InvalidComponentError{Name: kind.String()}
	}

	bundle, err := o.registry.Get(0)
	if err != nil {
		return nil, err
	}

	return bundle.Component(kind), nil
}

// AEff returns the effective area of the only bundle.
func (o CompositeObservation) AEff() (*Component, error) {
	return o.SingleBundleField(ComponentAEff)
}

// EDisp returns the energy dispersion of the only bundle.
func (o CompositeObservation) EDisp() (*Component, error) {
	return o.SingleBundleField(ComponentEDisp)
}

// PSF returns the point spread function of the only bundle.
func (o CompositeObservation) PSF() (*Component, error) {
	return o.SingleBundleField(ComponentPSF)
}

// Bkg returns the background model of the only bundle.
func (o CompositeObservation) Bkg() (*Component, error) {
	return o.SingleBundleField(ComponentBkg)
}

// RadMax returns the RAD_MAX table of the only bundle.
func (o CompositeObservation) RadMax() (*Component, error) {
	return o.SingleBundleField(ComponentRadMax)
}

// FilterForBundle builds the time-window filter of the bundle at index.
func (o CompositeObservation) FilterForBundle(index int) (ObservationFilter, error) {
	bundle, err := o.registry.Get(index)
	if err != nil {
		return ObservationFilter{}, err
	}

	return BuildObservationFilter().
		WithinTimeWindow(bundle.Validity).
		Finalize(), nil
}

// EventsInBundle returns the events falling into the validity of the bundle at index.
// The underlying event list is not modified.
func (o CompositeObservation) EventsInBundle(index int) (EventList, error) {
	filter, err := o.FilterForBundle(index)
	if err != nil {
		return EventList{}, err
	}

	return filter.FilterEvents(o.events), nil
}

// SelectTime returns a copy of the observation whose active time filter is window.
// Only one contiguous interval is supported. The receiver is not modified.
func (o CompositeObservation) SelectTime(window Interval) CompositeObservation {
	selected := o
	selected.filter = o.filter.WithTimeWindow(window)
	selected.registry = NewRegistry(o.registry.Bundles()...)
	selected.meta.Optional = maps.Clone(o.meta.Optional)

	return selected
}
