package sqlengine

import (
	"context"

	"github.com/vodfgo/vodf/vodf"
)

// LoadEventList returns the events of obsID passing filter together with the stored header.
func (e Engine) LoadEventList(ctx context.Context, obsID int64, filter vodf.ObservationFilter) (vodf.EventList, error) {
	header, _, err := e.LoadHeader(ctx, obsID)
	if err != nil {
		return vodf.EventList{}, err
	}

	events, err := e.QueryEvents(ctx, obsID, filter)
	if err != nil {
		return vodf.EventList{}, err
	}

	return vodf.EventList{Header: header, Events: events}, nil
}

// LoadComposite builds the composite observation of obsID from the stored index, events and
// header. The registry holds one bundle per group of index entries, see vodf.LoadRegistry.
func (e Engine) LoadComposite(
	ctx context.Context,
	obsID int64,
	req vodf.Requirement,
	loadOptions []vodf.LoadOption,
	options ...vodf.CompositeOption,
) (vodf.CompositeObservation, error) {
	registry, err := vodf.LoadRegistry(ctx, e, obsID, req, loadOptions...)
	if err != nil {
		return vodf.CompositeObservation{}, err
	}

	events, err := e.LoadEventList(ctx, obsID, vodf.BuildObservationFilter().MatchingAnyEvent())
	if err != nil {
		return vodf.CompositeObservation{}, err
	}

	return vodf.NewCompositeObservation(obsID, registry, events, options...), nil
}
