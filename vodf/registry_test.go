package vodf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/vodf"
)

func Test_Registry_PositionalAccess(t *testing.T) {
	registry := fixtures.TwoBundleRegistry()

	first, err := registry.Get(0)
	require.NoError(t, err)
	assert.Equal(t, vodf.CategoryOf(0), first.Category)

	replacement := fixtures.BundleAt(0, 10, vodf.CategoryOf(3))
	require.NoError(t, registry.Set(0, replacement))

	got, err := registry.Get(0)
	require.NoError(t, err)
	assert.Equal(t, vodf.CategoryOf(3), got.Category)

	require.NoError(t, registry.Insert(1, fixtures.BundleAt(20, 30, vodf.CategoryOf(2))))
	require.NoError(t, registry.Insert(registry.Len(), fixtures.BundleAt(30, 40, vodf.CategoryOf(4))))
	assert.Equal(t, 4, registry.Len())

	require.NoError(t, registry.Delete(0))
	assert.Equal(t, 3, registry.Len())

	head, err := registry.Get(0)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Window(20, 30), head.Validity)
}

func Test_Registry_IndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		call func(r *vodf.Registry) error
	}{
		{"get_negative", func(r *vodf.Registry) error { _, err := r.Get(-1); return err }},
		{"get_len", func(r *vodf.Registry) error { _, err := r.Get(r.Len()); return err }},
		{"set_len", func(r *vodf.Registry) error { return r.Set(2, vodf.Bundle{}) }},
		{"delete_len", func(r *vodf.Registry) error { return r.Delete(2) }},
		{"insert_beyond_len", func(r *vodf.Registry) error { return r.Insert(3, vodf.Bundle{}) }},
		{"slice_reversed", func(r *vodf.Registry) error { _, err := r.Slice(2, 1); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry := fixtures.TwoBundleRegistry()

			err := tc.call(registry)

			assert.ErrorIs(t, err, vodf.ErrIndexOutOfRange)

			var rangeErr *vodf.IndexOutOfRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, 2, rangeErr.Len)
			assert.Equal(t, 2, registry.Len(), "failed mutation must leave the registry untouched")
		})
	}
}

func Test_Registry_TimeRanges_RoundTrip(t *testing.T) {
	registry := fixtures.TwoBundleRegistry()

	ranges := registry.TimeRanges()

	assert.Equal(t, []vodf.Interval{fixtures.Window(0, 10), fixtures.Window(10, 20)}, ranges)

	for i, iv := range ranges {
		b, err := registry.Get(i)
		require.NoError(t, err)
		assert.Equal(t, b.Validity, iv)
	}
}

func Test_Registry_EventCategories(t *testing.T) {
	registry := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(2)),
		fixtures.BundleAt(0, 10, vodf.CategoryOf(1)),
		fixtures.BundleAt(10, 20, vodf.CategoryOf(2)),
		fixtures.BundleAt(20, 30, vodf.NoCategory),
	)

	assert.Equal(t, []vodf.Category{vodf.NoCategory, vodf.CategoryOf(1), vodf.CategoryOf(2)}, registry.EventCategories())
	assert.Empty(t, vodf.NewRegistry().EventCategories())
}

func Test_Registry_FindAt(t *testing.T) {
	registry := fixtures.TwoBundleRegistry()

	tests := []struct {
		name      string
		at        float64
		wantFound bool
		wantStart float64
	}{
		{"inside_first", 5, true, 0},
		{"inside_second", 15, true, 10},
		{"before_all", -1, false, 0},
		{"after_all", 25, false, 0},
		// Boundary-exact times match no bundle, even where two bundles touch.
		// TODO: open question for the VODF format authors: should a time on a shared boundary
		// belong to the later bundle? These cases pin the current open-interval behaviour.
		{"first_start_boundary", 0, false, 0},
		{"shared_boundary", 10, false, 0},
		{"last_stop_boundary", 20, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, found := registry.FindAt(fixtures.At(tc.at))

			assert.Equal(t, tc.wantFound, found)
			if tc.wantFound {
				assert.Equal(t, fixtures.At(tc.wantStart), b.Validity.Start)
			}
		})
	}
}

func Test_Registry_FindAt_ReturnsFirstMatch(t *testing.T) {
	registry := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(0, 10, vodf.CategoryOf(1)),
	)

	b, found := registry.FindAt(fixtures.At(5))

	require.True(t, found)
	assert.Equal(t, vodf.CategoryOf(0), b.Category)
}

func Test_Registry_SliceAndIteration(t *testing.T) {
	registry := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(10, 20, vodf.CategoryOf(1)),
		fixtures.BundleAt(20, 30, vodf.CategoryOf(2)),
	)

	sliced, err := registry.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, sliced.Len())

	require.NoError(t, sliced.Delete(0))
	assert.Equal(t, 3, registry.Len(), "slices do not share storage with their source")

	visited := make([]int, 0)
	for i := range registry.All() {
		visited = append(visited, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, visited)
}

func Test_Registry_Validate(t *testing.T) {
	assert.NoError(t, fixtures.TwoBundleRegistry().Validate())

	disjointCategories := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(0, 10, vodf.CategoryOf(1)),
	)
	assert.NoError(t, disjointCategories.Validate())

	overlapping := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.CategoryOf(0)),
		fixtures.BundleAt(5, 15, vodf.CategoryOf(0)),
	)
	assert.ErrorIs(t, overlapping.Validate(), vodf.ErrOverlappingBundles)

	untagged := vodf.NewRegistry(
		fixtures.BundleAt(0, 10, vodf.NoCategory),
		fixtures.BundleAt(5, 15, vodf.CategoryOf(1)),
	)
	assert.ErrorIs(t, untagged.Validate(), vodf.ErrOverlappingBundles)
}
