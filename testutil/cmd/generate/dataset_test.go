package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/blobstore"
	"github.com/vodfgo/vodf/vodf/blobstore/memory"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

func smallParams() Params {
	return Params{
		Observations:    2,
		Bundles:         3,
		Categories:      2,
		EventsPerBundle: 7,
		BundleDuration:  time.Minute,
		Seed:            42,
	}
}

func Test_BuildDataset_Shape(t *testing.T) {
	dataset := BuildDataset(smallParams())

	require.Len(t, dataset, 2)
	assert.Equal(t, firstObsID, dataset[0].ObsID)
	assert.Equal(t, 2*3*2*7, dataset.TotalEvents())

	for _, obs := range dataset {
		assert.Len(t, obs.Entries, 3*2*5)
		assert.Len(t, obs.Payloads, 3*2*5)

		for i, ev := range obs.Events {
			assert.Equal(t, int64(i+1), ev.ID)
			if i > 0 {
				assert.False(t, ev.Time.Before(obs.Events[i-1].Time))
			}
		}
	}
}

func Test_BuildDataset_SameSeedSameEvents(t *testing.T) {
	a := BuildDataset(smallParams())
	b := BuildDataset(smallParams())

	assert.Equal(t, a[1].Events, b[1].Events)
}

func Test_BuildDataset_Untagged(t *testing.T) {
	params := smallParams()
	params.Categories = 0

	dataset := BuildDataset(params)

	assert.Equal(t, 2*3*7, dataset.TotalEvents())
	for _, e := range dataset[0].Entries {
		assert.False(t, e.Category.IsSet())
	}
}

func Test_Store_SplitsBackIntoGeneratedBundles(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "gen.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	engine, err := sqlengine.NewEngineFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
	require.NoError(t, err)
	require.NoError(t, engine.Migrate(ctx))

	store := memory.New()
	dataset := BuildDataset(smallParams())
	require.NoError(t, Store(ctx, engine, store, dataset))

	resolver, err := blobstore.NewResolver(store)
	require.NoError(t, err)

	composite, err := engine.LoadComposite(
		ctx,
		dataset[1].ObsID,
		vodf.RequirePreset(vodf.PresetFullEnclosure),
		[]vodf.LoadOption{vodf.WithEagerResolution(resolver)},
	)
	require.NoError(t, err)

	observations := composite.Split()
	require.Equal(t, 3*2, observations.Len())
	assert.Equal(t, 3*2*7, observations.TotalEvents())

	for _, o := range observations {
		assert.Equal(t, 7, o.Events().Len())
		assert.True(t, o.AEff.IsLoaded())
	}
}
