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

func Test_Requirement_Kinds(t *testing.T) {
	kinds, err := vodf.RequirePreset(vodf.PresetPointLike).Kinds()
	require.NoError(t, err)
	assert.Equal(t, []vodf.ComponentKind{vodf.ComponentGTI, vodf.ComponentAEff, vodf.ComponentEDisp}, kinds)

	kinds, err = vodf.RequirePreset(vodf.PresetFullEnclosure).Kinds()
	require.NoError(t, err)
	assert.Len(t, kinds, 5)

	kinds, err = vodf.RequireComponents("bkg", "aeff", "bkg").Kinds()
	require.NoError(t, err)
	assert.Equal(t, []vodf.ComponentKind{vodf.ComponentAEff, vodf.ComponentBkg}, kinds)

	_, err = vodf.RequirePreset("magic").Kinds()
	assert.ErrorIs(t, err, vodf.ErrUnknownPreset)
}

func Test_LoadBundle_FullEnclosure(t *testing.T) {
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(42, 0, 10, vodf.CategoryOf(1))...)

	bundle, err := vodf.LoadBundle(context.Background(), index, 42, vodf.RequirePreset(vodf.PresetFullEnclosure))

	require.NoError(t, err)
	assert.Equal(t, fixtures.Window(0, 10), bundle.Validity)
	assert.Equal(t, vodf.CategoryOf(1), bundle.Category)
	assert.False(t, bundle.PointLike)
	require.Len(t, bundle.Components(), 4)
	assert.False(t, bundle.IsLoaded(), "components stay unloaded without eager resolution")
	assert.Equal(t, "PSF", bundle.PSF.Ref.HDU)
}

func Test_LoadBundle_PointLike(t *testing.T) {
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(42, 0, 10, vodf.NoCategory)...)

	bundle, err := vodf.LoadBundle(context.Background(), index, 42, vodf.RequirePreset(vodf.PresetPointLike))

	require.NoError(t, err)
	assert.True(t, bundle.PointLike)
	assert.NotNil(t, bundle.PSF, "components beyond the requirement are still attached")
}

func Test_LoadBundle_GroupsEqualWindowsAcrossLocations(t *testing.T) {
	zone := time.FixedZone("UTC+1", 3600)
	utcWindow := fixtures.Window(0, 10)
	zonedWindow := vodf.MustInterval(utcWindow.Start.In(zone), utcWindow.Stop.In(zone))
	key := fixtures.BlobKey()

	index := vodf.NewMemoryIndex(
		vodf.IndexEntry{ObsID: 1, Component: "gti", Location: vodf.Location{Key: key, HDU: "GTI"}, Validity: zonedWindow},
		vodf.IndexEntry{ObsID: 1, Component: "aeff", Location: vodf.Location{Key: key, HDU: "EFFECTIVE AREA"}, Validity: utcWindow},
		vodf.IndexEntry{ObsID: 1, Component: "edisp", Location: vodf.Location{Key: key, HDU: "ENERGY DISPERSION"}, Validity: utcWindow},
	)

	bundle, err := vodf.LoadBundle(context.Background(), index, 1, vodf.RequirePreset(vodf.PresetPointLike))

	require.NoError(t, err)
	assert.True(t, bundle.Validity.Start.Equal(utcWindow.Start))
	assert.True(t, bundle.Validity.Stop.Equal(utcWindow.Stop))
	assert.NotNil(t, bundle.AEff)
	assert.NotNil(t, bundle.EDisp)
}

func Test_LoadBundle_Errors(t *testing.T) {
	ctx := context.Background()
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(42, 0, 10, vodf.NoCategory)...)
	index.Add(vodf.IndexEntry{ObsID: 43, Component: "aeff", Location: vodf.Location{Key: "a.fits"}, Validity: fixtures.Window(0, 10)})

	t.Run("unknown_observation", func(t *testing.T) {
		_, err := vodf.LoadBundle(ctx, index, 99, vodf.RequirePreset(vodf.PresetPointLike))

		var unknown *vodf.UnknownObservationError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, int64(99), unknown.ObsID)
	})

	t.Run("invalid_component", func(t *testing.T) {
		_, err := vodf.LoadBundle(ctx, index, 42, vodf.RequireComponents("aeff", "sensitivity"))

		var invalid *vodf.InvalidComponentError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "sensitivity", invalid.Name)
	})

	t.Run("missing_components_are_all_listed", func(t *testing.T) {
		_, err := vodf.LoadBundle(ctx, index, 43, vodf.RequirePreset(vodf.PresetFullEnclosure))

		var missing *vodf.MissingRequiredComponentError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, int64(43), missing.ObsID)
		assert.Equal(t,
			[]vodf.ComponentKind{vodf.ComponentGTI, vodf.ComponentEDisp, vodf.ComponentPSF, vodf.ComponentBkg},
			missing.Missing)
		assert.ErrorIs(t, err, vodf.ErrMissingRequiredComponent)
	})

	t.Run("nil_index", func(t *testing.T) {
		_, err := vodf.LoadBundle(ctx, nil, 42, vodf.RequirePreset(vodf.PresetPointLike))
		assert.ErrorIs(t, err, vodf.ErrNilComponentIndex)
	})

	t.Run("several_groups", func(t *testing.T) {
		multi := vodf.NewMemoryIndex(fixtures.IndexEntries(44, 0, 10, vodf.CategoryOf(0))...)
		multi.Add(fixtures.IndexEntries(44, 10, 20, vodf.CategoryOf(0))...)

		_, err := vodf.LoadBundle(ctx, multi, 44, vodf.RequirePreset(vodf.PresetPointLike))

		var ambiguous *vodf.AmbiguousResponseError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, 2, ambiguous.Count)
	})
}

func Test_LoadBundle_EagerResolution(t *testing.T) {
	entries := fixtures.IndexEntries(42, 0, 10, vodf.NoCategory)
	resolver := &mapResolver{payloads: map[vodf.Location][]byte{}}
	for _, e := range entries {
		resolver.payloads[e.Location] = []byte(e.Component)
	}

	bundle, err := vodf.LoadBundle(
		context.Background(),
		vodf.NewMemoryIndex(entries...),
		42,
		vodf.RequirePreset(vodf.PresetFullEnclosure),
		vodf.WithEagerResolution(resolver),
	)

	require.NoError(t, err)
	assert.True(t, bundle.IsLoaded())

	payload, err := bundle.EDisp.MustPayload()
	require.NoError(t, err)
	assert.Equal(t, []byte("edisp"), payload)
}

func Test_LoadBundle_EagerResolutionFailure(t *testing.T) {
	_, err := vodf.LoadBundle(
		context.Background(),
		vodf.NewMemoryIndex(fixtures.IndexEntries(42, 0, 10, vodf.NoCategory)...),
		42,
		vodf.RequirePreset(vodf.PresetPointLike),
		vodf.WithEagerResolution(&mapResolver{}),
	)

	assert.ErrorIs(t, err, errResolve)
}

func Test_LoadRegistry(t *testing.T) {
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(44, 0, 10, vodf.CategoryOf(0))...)
	index.Add(fixtures.IndexEntries(44, 10, 20, vodf.CategoryOf(1))...)

	registry, err := vodf.LoadRegistry(context.Background(), index, 44, vodf.RequirePreset(vodf.PresetFullEnclosure))

	require.NoError(t, err)
	assert.Equal(t, []vodf.Interval{fixtures.Window(0, 10), fixtures.Window(10, 20)}, registry.TimeRanges())
	assert.Equal(t, []vodf.Category{vodf.CategoryOf(0), vodf.CategoryOf(1)}, registry.EventCategories())

	composite := vodf.NewCompositeObservation(44, registry, fixtures.ScenarioEvents())
	assert.Equal(t, 2, composite.Split().Len())
}

func Test_LoadBundle_Observability(t *testing.T) {
	ctx := context.Background()
	logger := testdoubles.NewContextualLoggerSpy()
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(42, 0, 10, vodf.NoCategory)...)
	options := []vodf.LoadOption{
		vodf.WithLoadLogger(logger),
		vodf.WithLoadMetrics(metrics),
		vodf.WithLoadTracing(tracing),
	}

	_, err := vodf.LoadBundle(ctx, index, 42, vodf.RequirePreset(vodf.PresetFullEnclosure), options...)
	require.NoError(t, err)

	assert.True(t, metrics.HasRecord(testdoubles.SpyDuration, vodf.MetricLoadDuration).
		WithLabel(vodf.LabelStatus, vodf.StatusSuccess).
		Assert())
	assert.True(t, tracing.HasFinishedSpan(vodf.SpanLoadBundle, vodf.StatusSuccess))
	assert.True(t, logger.HasLog("info", "bundle loaded"))

	_, err = vodf.LoadBundle(ctx, index, 7, vodf.RequirePreset(vodf.PresetFullEnclosure), options...)
	require.Error(t, err)

	assert.True(t, metrics.HasRecord(testdoubles.SpyCounter, vodf.MetricLoadErrors).
		WithLabel(vodf.LabelErrorType, "unknown_observation").
		Assert())
	assert.True(t, tracing.HasFinishedSpan(vodf.SpanLoadBundle, vodf.StatusError))
	assert.True(t, logger.HasLog("error", "loading bundle failed"))
}

func Test_MemoryIndex(t *testing.T) {
	index := vodf.NewMemoryIndex(fixtures.IndexEntries(2, 0, 1, vodf.NoCategory)...)
	index.Add(fixtures.IndexEntries(1, 0, 1, vodf.NoCategory)...)

	assert.Equal(t, []int64{1, 2}, index.ObsIDs())

	entries, err := index.Lookup(context.Background(), 1)
	require.NoError(t, err)
	entries[0].Component = "changed"

	again, err := index.Lookup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "events", again[0].Component)
}
