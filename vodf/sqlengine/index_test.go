package sqlengine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/testutil/sqlengine/wrapper"
	"github.com/vodfgo/vodf/vodf"
)

func Test_Lookup_ReturnsEntriesInInsertionOrder(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()

	entries := append(
		fixtures.IndexEntries(42, 0, 10, vodf.CategoryOf(0)),
		fixtures.IndexEntries(42, 10, 20, vodf.NoCategory)...,
	)
	entries[1].PointLike = true

	require.NoError(t, engine.PutIndexEntries(ctx, entries...))
	require.NoError(t, engine.PutIndexEntries(ctx, fixtures.IndexEntries(7, 0, 5, vodf.CategoryOf(3))...))

	found, err := engine.Lookup(ctx, 42)

	require.NoError(t, err)
	require.Len(t, found, len(entries))

	for i, entry := range found {
		assert.Equal(t, entries[i].Component, entry.Component)
		assert.Equal(t, entries[i].Location, entry.Location)
		assert.True(t, entries[i].Validity.Start.Equal(entry.Validity.Start))
		assert.True(t, entries[i].Validity.Stop.Equal(entry.Validity.Stop))
		assert.Equal(t, entries[i].Category, entry.Category)
		assert.Equal(t, entries[i].PointLike, entry.PointLike)
		assert.Equal(t, int64(42), entry.ObsID)
	}
}

func Test_Lookup_UnknownObservation(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	_, err := w.Engine().Lookup(context.Background(), 999)

	var unknown *vodf.UnknownObservationError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, int64(999), unknown.ObsID)
	assert.ErrorIs(t, err, vodf.ErrUnknownObservation)
}

func Test_ObsIDs(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()

	ids, err := engine.ObsIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, obsID := range []int64{30, 10, 20} {
		require.NoError(t, engine.PutIndexEntries(ctx, fixtures.IndexEntries(obsID, 0, 10, vodf.NoCategory)...))
	}

	ids, err = engine.ObsIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids)
}

func Test_PutIndexEntries_Empty(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	assert.NoError(t, w.Engine().PutIndexEntries(context.Background()))
}

func Test_Lookup_SubSecondValidityRoundTrip(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()
	base := time.Unix(1700000000, 0).UTC()
	validity := vodf.MustInterval(base.Add(time.Millisecond), base.Add(999*time.Millisecond))

	require.NoError(t, engine.PutIndexEntries(ctx, vodf.IndexEntry{
		ObsID:     5,
		Component: vodf.ComponentAEff.String(),
		Location:  vodf.Location{Key: fixtures.BlobKey(), HDU: "EFFECTIVE AREA"},
		Validity:  validity,
	}))

	found, err := engine.Lookup(ctx, 5)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, validity, found[0].Validity)
}
