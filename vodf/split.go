package vodf

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"
)

var ErrEmptyBandParameter = errors.New("band parameter must not be empty")
var ErrInvalidBandHalfWidth = errors.New("band half width must be positive")

const (
	logMsgSplitCompleted = "split completed"
	logMsgSplitFailed    = "split failed"
	logMsgBundleSkipped  = "bundle skipped, category not requested"
	logAttrObsID         = "obs_id"
	logAttrBundleIndex   = "bundle_index"
	logAttrCategory      = "category"
	logAttrObservations  = "observations"
	logAttrSkipped       = "skipped"
	logAttrDurationMS    = "duration_ms"
	operationSplit       = "split"
)

// SplitConfig holds every tunable of Split. The zero value is not valid, start from
// DefaultSplitConfig.
type SplitConfig struct {
	// BandParameter is the event column the category band is applied to. Default "event_type".
	BandParameter string

	// BandHalfWidth is the half width of the band around a category tag. Default 0.5.
	BandHalfWidth float64

	// Logger, Metrics and Tracing are optional. Default nil.
	Logger  ContextualLogger
	Metrics MetricsCollector
	Tracing TracingCollector
}

// DefaultSplitConfig returns the configuration used by Split.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		BandParameter: ColumnEventType,
		BandHalfWidth: DefaultBandHalfWidth,
	}
}

// Validate checks the configuration.
func (c SplitConfig) Validate() error {
	if c.BandParameter == "" {
		return ErrEmptyBandParameter
	}

	if c.BandHalfWidth <= 0 {
		return ErrInvalidBandHalfWidth
	}

	return nil
}

func (c SplitConfig) observer() observer {
	return observer{logger: c.Logger, metrics: c.Metrics, tracing: c.Tracing}
}

// Split decomposes the observation into one Observation per bundle whose category is
// requested, in registry order.
//
// Without arguments every category present in the registry is requested. Each observation
// shares the full event list and selects its events with a filter made of the bundle's
// validity window and, for tagged bundles, the band [c-0.5, c+0.5) on the event_type column.
// The result is empty, not an error, when no bundle matches.
func (o CompositeObservation) Split(categories ...Category) Observations {
	return o.split(context.Background(), DefaultSplitConfig(), categories, observer{})
}

// SplitWithConfig is Split with an explicit configuration and observability.
func (o CompositeObservation) SplitWithConfig(ctx context.Context, cfg SplitConfig, categories ...Category) (Observations, error) {
	obs := cfg.observer()
	labels := map[string]string{LabelOperation: operationSplit}

	if err := cfg.Validate(); err != nil {
		obs.logError(ctx, logMsgSplitFailed, err, logAttrObsID, o.obsID)
		return nil, err
	}

	ctx, span := obs.startSpan(ctx, SpanSplit, map[string]string{LabelObsID: strconv.FormatInt(o.obsID, 10)})

	start := time.Now()
	result := o.split(ctx, cfg, categories, obs)
	duration := time.Since(start)

	labels[LabelStatus] = StatusSuccess
	obs.recordDuration(ctx, MetricSplitDuration, duration, labels)
	obs.recordValue(ctx, MetricSplitObservations, float64(result.Len()), labels)
	obs.info(ctx, logMsgSplitCompleted,
		logAttrObsID, o.obsID,
		logAttrObservations, result.Len(),
		logAttrDurationMS, toMilliseconds(duration))
	obs.finishSpan(span, StatusSuccess, map[string]string{"observations": strconv.Itoa(result.Len())})

	return result, nil
}

func (o CompositeObservation) split(ctx context.Context, cfg SplitConfig, categories []Category, obs observer) Observations {
	wanted := categories
	if len(wanted) == 0 {
		wanted = o.registry.EventCategories()
	}

	result := make(Observations, 0, o.registry.Len())
	skipped := 0

	for i, bundle := range o.registry.All() {
		if !slices.Contains(wanted, bundle.Category) {
			skipped++
			obs.debug(ctx, logMsgBundleSkipped, logAttrBundleIndex, i, logAttrCategory, bundle.Category.String())
			continue
		}

		result = append(result, o.observationFor(bundle, o.bundleFilter(bundle, cfg)))
	}

	if skipped > 0 {
		obs.incrementCounter(ctx, MetricSplitSkippedBundles, map[string]string{LabelOperation: operationSplit})
	}

	return result
}

func (o CompositeObservation) bundleFilter(bundle Bundle, cfg SplitConfig) ObservationFilter {
	builder := BuildObservationFilter().WithinTimeWindow(bundle.Validity)

	lo, hi, ok := bundle.Category.Band(cfg.BandHalfWidth)
	if !ok {
		return builder.Finalize()
	}

	return builder.
		AndParameterBand(Band(cfg.BandParameter, lo, hi)).
		Finalize()
}

func (o CompositeObservation) observationFor(bundle Bundle, filter ObservationFilter) Observation {
	return Observation{
		ObsID:     o.obsID,
		AEff:      bundle.AEff,
		EDisp:     bundle.EDisp,
		PSF:       bundle.PSF,
		Bkg:       bundle.Bkg,
		RadMax:    bundle.RadMax,
		GTI:       bundle.Validity,
		Category:  bundle.Category,
		PointLike: bundle.PointLike,
		Pointing:  o.pointing,
		Location:  o.location,
		Meta:      o.meta,
		Filter:    filter,
		events:    o.events,
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return float64(d.Round(time.Microsecond).Microseconds()) / 1000
}
