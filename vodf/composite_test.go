package vodf_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/testutil/observability/testdoubles"
	"github.com/vodfgo/vodf/vodf"
)

func eventTimes(list vodf.EventList) []time.Time {
	return list.Times()
}

func atAll(seconds ...float64) []time.Time {
	times := make([]time.Time, 0, len(seconds))
	for _, s := range seconds {
		times = append(times, fixtures.At(s))
	}

	return times
}

func Test_Split_TwoBundles_AllCategories(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	observations := composite.Split()

	require.Equal(t, 2, observations.Len())

	first, second := observations[0], observations[1]

	assert.Equal(t, fixtures.Window(0, 10), first.GTI)
	assert.Equal(t, vodf.CategoryOf(0), first.Category)
	assert.Equal(t, atAll(1, 2), eventTimes(first.Events()))

	assert.Equal(t, fixtures.Window(10, 20), second.GTI)
	assert.Equal(t, vodf.CategoryOf(1), second.Category)
	assert.Equal(t, atAll(11, 12, 19), eventTimes(second.Events()))

	for _, obs := range observations {
		assert.Equal(t, fixtures.ScenarioObsID, obs.ObsID)
		assert.Equal(t, 5, obs.AllEvents().Len(), "every observation shares the full event list")
		assert.Equal(t, composite.Pointing(), obs.Pointing)
		assert.NotNil(t, obs.AEff)
		assert.NotNil(t, obs.Bkg)
	}

	assert.Equal(t, 5, composite.Events().Len(), "splitting must not touch the composite's events")
}

func Test_Split_SingleCategory(t *testing.T) {
	observations := fixtures.ScenarioComposite().Split(vodf.CategoryOf(1))

	require.Equal(t, 1, observations.Len())
	assert.Equal(t, fixtures.Window(10, 20), observations[0].GTI)
	assert.Equal(t, 3, observations[0].Events().Len())
}

func Test_Split_AbsentCategory_IsEmpty(t *testing.T) {
	observations := fixtures.ScenarioComposite().Split(vodf.CategoryOf(7))

	assert.NotNil(t, observations)
	assert.Zero(t, observations.Len())
}

func Test_Split_EmptyRegistry_IsEmpty(t *testing.T) {
	composite := vodf.NewCompositeObservation(1, nil, fixtures.ScenarioEvents())

	assert.Zero(t, composite.Split().Len())
	assert.Zero(t, composite.NBundles())
}

func Test_Split_FilterHasTimeWindowAndCategoryBand(t *testing.T) {
	observations := fixtures.ScenarioComposite().Split(vodf.CategoryOf(1))
	require.Equal(t, 1, observations.Len())

	filter := observations[0].Filter

	window, ok := filter.TimeWindow()
	require.True(t, ok)
	assert.Equal(t, fixtures.Window(10, 20), window)

	require.Len(t, filter.Bands(), 1)
	band := filter.Bands()[0]
	assert.Equal(t, vodf.ColumnEventType, band.Parameter())
	assert.InDelta(t, 0.5, band.Lo(), 1e-12)
	assert.InDelta(t, 1.5, band.Hi(), 1e-12)
}

func Test_Split_CategoryBandExcludesOtherCategoriesInWindow(t *testing.T) {
	events := fixtures.EventsAt(
		[]float64{1, 2, 3, 4},
		[]float64{0, 1, 0, 2},
	)
	registry := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(0, 10, vodf.CategoryOf(1)),
	)
	composite := vodf.NewCompositeObservation(7, registry, events)

	observations := composite.Split()

	require.Equal(t, 2, observations.Len())
	assert.Equal(t, atAll(1, 3), eventTimes(observations[0].Events()))
	assert.Equal(t, atAll(2), eventTimes(observations[1].Events()))
	assert.Equal(t, 3, observations.TotalEvents(), "event tagged 2 belongs to no bundle")
}

func Test_Split_UntaggedBundle_UsesTimeWindowOnly(t *testing.T) {
	registry := vodf.NewRegistry(fixtures.BundleAt(0, 20, vodf.NoCategory))
	composite := vodf.NewCompositeObservation(8, registry, fixtures.ScenarioEvents())

	all := composite.Split()
	require.Equal(t, 1, all.Len())
	assert.Equal(t, 5, all[0].Events().Len())
	assert.Empty(t, all[0].Filter.Bands())

	assert.Equal(t, 1, composite.Split(vodf.NoCategory).Len())
	assert.Zero(t, composite.Split(vodf.CategoryOf(1)).Len())
}

func Test_Split_BoundaryEvent_BelongsToLaterBundle(t *testing.T) {
	events := fixtures.EventsAt([]float64{10}, []float64{1})
	composite := vodf.NewCompositeObservation(9, fixtures.TwoBundleRegistry(), events)

	_, found := composite.Registry().FindAt(fixtures.At(10))
	assert.False(t, found)

	observations := composite.Split()
	require.Equal(t, 2, observations.Len())
	assert.Zero(t, observations[0].Events().Len())
	assert.Equal(t, 1, observations[1].Events().Len())
}

func Test_SplitWithConfig_Observability(t *testing.T) {
	ctx := context.Background()
	logger := testdoubles.NewContextualLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()

	cfg := vodf.DefaultSplitConfig()
	cfg.Logger = logger
	cfg.Metrics = metrics
	cfg.Tracing = tracing

	observations, err := fixtures.ScenarioComposite().SplitWithConfig(ctx, cfg, vodf.CategoryOf(0))

	require.NoError(t, err)
	assert.Equal(t, 1, observations.Len())

	assert.True(t, metrics.HasRecord(testdoubles.SpyDuration, vodf.MetricSplitDuration).
		WithLabel(vodf.LabelStatus, vodf.StatusSuccess).
		Assert())

	values := metrics.Records(testdoubles.SpyValue, vodf.MetricSplitObservations)
	require.Len(t, values, 1)
	assert.InDelta(t, 1.0, values[0].Value, 1e-12)

	assert.True(t, metrics.HasRecord(testdoubles.SpyCounter, vodf.MetricSplitSkippedBundles).Assert())
	assert.True(t, tracing.HasFinishedSpan(vodf.SpanSplit, vodf.StatusSuccess))

	completed, found := logger.Find("info", "split completed")
	require.True(t, found)
	obsID, ok := completed.Attr("obs_id")
	require.True(t, ok)
	assert.Equal(t, fixtures.ScenarioObsID, obsID)

	assert.True(t, logger.HasLog("debug", "bundle skipped, category not requested"))
}

func Test_SplitWithConfig_InvalidConfig(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	cfg := vodf.DefaultSplitConfig()
	cfg.BandParameter = ""
	_, err := composite.SplitWithConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, vodf.ErrEmptyBandParameter)

	cfg = vodf.DefaultSplitConfig()
	cfg.BandHalfWidth = 0
	_, err = composite.SplitWithConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, vodf.ErrInvalidBandHalfWidth)
}

func Test_SplitWithConfig_CustomBand(t *testing.T) {
	cfg := vodf.DefaultSplitConfig()
	cfg.BandHalfWidth = 2

	observations, err := fixtures.ScenarioComposite().SplitWithConfig(context.Background(), cfg)

	require.NoError(t, err)
	require.Equal(t, 2, observations.Len())

	band := observations[0].Filter.Bands()[0]
	assert.InDelta(t, -2.0, band.Lo(), 1e-12)
	assert.InDelta(t, 2.0, band.Hi(), 1e-12)
}

func Test_SingleBundleField_Ambiguous(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	for range 2 {
		_, err := composite.AEff()

		var ambiguous *vodf.AmbiguousResponseError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, 2, ambiguous.Count)
		assert.ErrorIs(t, err, vodf.ErrAmbiguousResponse)
	}

	assert.Equal(t, 2, composite.NBundles(), "failed access must not change the registry")
}

func Test_SingleBundleField_EmptyRegistry(t *testing.T) {
	composite := vodf.NewCompositeObservation(1, vodf.NewRegistry(), vodf.EventList{})

	_, err := composite.PSF()

	var ambiguous *vodf.AmbiguousResponseError
	require.ErrorAs(t, err, &ambiguous)
	assert.Zero(t, ambiguous.Count)
}

func Test_SingleBundleField_SingleBundle(t *testing.T) {
	bundle := fixtures.BundleAt(0, 10, vodf.NoCategory)
	composite := vodf.NewCompositeObservation(1, vodf.NewRegistry(bundle), vodf.EventList{})

	aeff, err := composite.AEff()
	require.NoError(t, err)
	assert.True(t, aeff.Equal(bundle.AEff))

	radMax, err := composite.RadMax()
	require.NoError(t, err)
	assert.Nil(t, radMax)

	_, err = composite.SingleBundleField("events")
	assert.ErrorIs(t, err, vodf.ErrInvalidComponent)
}

func Test_SingleBundleField_RejectsValidity(t *testing.T) {
	bundle := fixtures.BundleAt(0, 10, vodf.NoCategory)
	composite := vodf.NewCompositeObservation(1, vodf.NewRegistry(bundle), vodf.EventList{})

	gti, err := composite.SingleBundleField(vodf.ComponentGTI)

	var invalid *vodf.InvalidComponentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "gti", invalid.Name)
	assert.Nil(t, gti)

	first, err := composite.Registry().Get(0)
	require.NoError(t, err)
	assert.Equal(t, bundle.Validity, first.Validity)
}

func Test_EventsInBundle(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	inSecond, err := composite.EventsInBundle(1)
	require.NoError(t, err)
	assert.Equal(t, atAll(11, 12, 19), eventTimes(inSecond))

	_, err = composite.EventsInBundle(5)
	assert.ErrorIs(t, err, vodf.ErrIndexOutOfRange)

	_, err = composite.FilterForBundle(-1)
	assert.ErrorIs(t, err, vodf.ErrIndexOutOfRange)

	assert.Equal(t, 5, composite.Events().Len())
}

func Test_SelectTime_LeavesReceiverUntouched(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	selected := composite.SelectTime(fixtures.Window(0, 5))

	window, ok := selected.Filter().TimeWindow()
	require.True(t, ok)
	assert.Equal(t, fixtures.Window(0, 5), window)
	assert.Equal(t, atAll(1, 2), eventTimes(selected.SelectedEvents()))

	assert.True(t, composite.Filter().IsEmpty())
	assert.Equal(t, 5, composite.SelectedEvents().Len())

	require.NoError(t, selected.Registry().Delete(0))
	assert.Equal(t, 2, composite.NBundles())
	assert.Equal(t, 1, selected.NBundles())
}

func Test_Meta_DerivedFromHeader(t *testing.T) {
	composite := fixtures.ScenarioComposite()

	meta, ok := composite.Meta()

	require.True(t, ok)
	assert.Equal(t, fixtures.ScenarioObsID, meta.ObsID)
	assert.Equal(t, "CTA", meta.Telescope)
	assert.Equal(t, "LST", meta.Instrument)
	assert.Equal(t, "Crab", meta.Object)
	assert.InDelta(t, 0.95, meta.LiveTimeFraction, 1e-12)
	assert.Equal(t, map[string]string{"ORIGIN": "fixtures"}, meta.Optional)

	observations := composite.Split()
	require.NotEmpty(t, observations)
	assert.Equal(t, "Crab", observations[0].Meta.Object)
}

func Test_Meta_ExplicitAndAbsent(t *testing.T) {
	explicit := vodf.NewCompositeObservation(
		3,
		nil,
		fixtures.ScenarioEvents(),
		vodf.WithMeta(vodf.ObservationMeta{ObsID: 3, Telescope: "HESS"}),
	)
	meta, ok := explicit.Meta()
	require.True(t, ok)
	assert.Equal(t, "HESS", meta.Telescope)

	_, ok = vodf.NewCompositeObservation(4, nil, vodf.EventList{}).Meta()
	assert.False(t, ok)
}
