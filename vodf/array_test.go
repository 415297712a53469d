package vodf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/vodf"
)

func Test_Axis(t *testing.T) {
	axis, err := vodf.NewAxis("energy", 1, 10, 100)
	require.NoError(t, err)

	assert.Equal(t, 2, axis.NBins())
	assert.InDelta(t, 5.5, axis.Center(0), 1e-12)

	tests := []struct {
		x       float64
		wantBin int
		wantOK  bool
	}{
		{0.5, 0, false},
		{1, 0, true},
		{9.99, 0, true},
		{10, 1, true},
		{99, 1, true},
		{100, 0, false},
	}

	for _, tc := range tests {
		bin, ok := axis.Bin(tc.x)
		assert.Equal(t, tc.wantOK, ok, "x=%v", tc.x)
		if tc.wantOK {
			assert.Equal(t, tc.wantBin, bin, "x=%v", tc.x)
		}
	}

	_, err = vodf.NewAxis("energy", 1)
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)

	_, err = vodf.NewAxis("energy", 1, 1)
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)
}

func Test_CreateObservationsArray(t *testing.T) {
	reference := fixtures.ScenarioComposite().Split()[0]
	axis, err := vodf.NewAxis("energy", 1, 10, 100)
	require.NoError(t, err)

	array, err := vodf.CreateObservationsArray(reference, axis)

	require.NoError(t, err)
	assert.Equal(t, []string{"23523_energy_5.5", "23523_energy_55"}, array.Names())

	entry, ok := array.GetByCoord(50)
	require.True(t, ok)
	assert.Equal(t, "23523_energy_55", entry.Name)
	assert.Equal(t, reference.GTI, entry.Observation.GTI)

	_, ok = array.GetByCoord(1000)
	assert.False(t, ok)

	_, err = vodf.CreateObservationsArray(reference, vodf.Axis{})
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)
}

func Test_ArrayFromSplit(t *testing.T) {
	observations := fixtures.ScenarioComposite().Split()

	array, err := vodf.ArrayFromSplit(observations)

	require.NoError(t, err)
	assert.Equal(t, vodf.AxisEventCategory, array.Axis().Name())
	assert.Equal(t, []string{"23523_event_category_0", "23523_event_category_1"}, array.Names())

	entry, ok := array.GetByCoord(1.2)
	require.True(t, ok)
	assert.Equal(t, vodf.CategoryOf(1), entry.Observation.Category)
	assert.Equal(t, 2, array.Observations().Len())
}

func Test_ArrayFromSplit_Rejects(t *testing.T) {
	_, err := vodf.ArrayFromSplit(nil)
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)

	untagged := vodf.NewCompositeObservation(1, vodf.NewRegistry(fixtures.BundleAt(0, 10, vodf.NoCategory)), fixtures.ScenarioEvents())
	_, err = vodf.ArrayFromSplit(untagged.Split())
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)

	repeated := vodf.NewCompositeObservation(1, vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(10, 20, vodf.CategoryOf(0)),
	), fixtures.ScenarioEvents())
	_, err = vodf.ArrayFromSplit(repeated.Split())
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)

	gapped := vodf.NewCompositeObservation(1, vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(10, 20, vodf.CategoryOf(2)),
	), fixtures.ScenarioEvents())
	_, err = vodf.ArrayFromSplit(gapped.Split())
	assert.ErrorIs(t, err, vodf.ErrInvalidAxis)
}
