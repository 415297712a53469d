// Package vodf provides the core abstractions for time-resolved instrument responses
// of astronomical observations.
//
// An observation whose instrument response changes across time windows and event
// categories is modelled as a CompositeObservation. It owns one EventList and one
// Registry of Bundles, each Bundle grouping the response components (effective area,
// energy dispersion, PSF, background, RAD_MAX) valid over one Interval for one Category.
//
// The central operation is Split, which decomposes a composite observation into
// simple, time- and category-homogeneous Observations:
//
//	composite := vodf.NewCompositeObservation(obsID, registry, events)
//
//	for _, obs := range composite.Split() {
//		selected := obs.Events() // filtered lazily by time window and category band
//		_ = selected
//	}
//
// Response components are opaque payloads. They are referenced by Location and are
// resolved explicitly through a ComponentResolver:
//
//	bundle, err := vodf.LoadBundle(ctx, index, obsID, vodf.RequirePreset(vodf.PresetPointLike))
//	if err != nil {
//		// handle error
//	}
//
//	loaded, err := bundle.Load(ctx, resolver)
//
// The package does not parse files, fit or compute response functions, or analyse events.
package vodf
