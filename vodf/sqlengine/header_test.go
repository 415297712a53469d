package sqlengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/testutil/sqlengine/wrapper"
)

func Test_Header_RoundTrip(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()

	_, ok, err := engine.LoadHeader(ctx, fixtures.ScenarioObsID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, engine.PutHeader(ctx, fixtures.ScenarioObsID, fixtures.ScenarioHeader()))

	header, ok, err := engine.LoadHeader(ctx, fixtures.ScenarioObsID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixtures.ScenarioHeader(), header)
}

func Test_PutHeader_Replaces(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()

	require.NoError(t, engine.PutHeader(ctx, 1, map[string]string{"OBJECT": "Crab"}))
	require.NoError(t, engine.PutHeader(ctx, 1, map[string]string{"OBJECT": "Vela"}))

	header, ok, err := engine.LoadHeader(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"OBJECT": "Vela"}, header)
}

func Test_PutHeader_Nil(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	ctx := context.Background()
	engine := w.Engine()

	require.NoError(t, engine.PutHeader(ctx, 1, nil))

	header, ok, err := engine.LoadHeader(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, header)
}
