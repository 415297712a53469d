package vodf_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/vodf"
)

var errResolve = errors.New("resolve failed")

// mapResolver serves payloads from memory and counts calls.
type mapResolver struct {
	payloads map[vodf.Location][]byte
	calls    int
}

func (r *mapResolver) Resolve(_ context.Context, loc vodf.Location) ([]byte, error) {
	r.calls++

	payload, ok := r.payloads[loc]
	if !ok {
		return nil, errResolve
	}

	return payload, nil
}

func Test_ParseComponentKind(t *testing.T) {
	for _, kind := range vodf.ComponentKinds() {
		parsed, err := vodf.ParseComponentKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := vodf.ParseComponentKind("AEFF")

	var invalid *vodf.InvalidComponentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "AEFF", invalid.Name)
	assert.Contains(t, err.Error(), "rad_max")
}

func Test_Component_Load(t *testing.T) {
	ref := vodf.Location{Key: "irf.fits", HDU: "PSF"}
	resolver := &mapResolver{payloads: map[vodf.Location][]byte{ref: []byte("psf-table")}}
	unloaded := vodf.UnloadedComponent(vodf.ComponentPSF, ref)

	loaded, err := unloaded.Load(context.Background(), resolver)

	require.NoError(t, err)
	assert.True(t, loaded.IsLoaded())
	payload, ok := loaded.Payload()
	require.True(t, ok)
	assert.Equal(t, []byte("psf-table"), payload)

	assert.False(t, unloaded.IsLoaded(), "Load must not mutate the receiver")
	_, err = unloaded.MustPayload()
	assert.ErrorIs(t, err, vodf.ErrComponentNotLoaded)

	again, err := loaded.Load(context.Background(), resolver)
	require.NoError(t, err)
	assert.Same(t, loaded, again)
	assert.Equal(t, 1, resolver.calls)
}

func Test_Component_LoadErrors(t *testing.T) {
	unloaded := vodf.UnloadedComponent(vodf.ComponentAEff, vodf.Location{Key: "missing.fits"})

	_, err := unloaded.Load(context.Background(), nil)
	assert.ErrorIs(t, err, vodf.ErrNilComponentResolver)

	_, err = unloaded.Load(context.Background(), &mapResolver{})
	assert.ErrorIs(t, err, errResolve)
}

func Test_Bundle_Load(t *testing.T) {
	bundle := fixtures.BundleAt(0, 10, vodf.CategoryOf(0))
	resolver := &mapResolver{payloads: map[vodf.Location][]byte{}}
	for _, c := range bundle.Components() {
		resolver.payloads[c.Ref] = []byte(c.Kind.String())
	}

	loaded, err := bundle.Load(context.Background(), resolver)

	require.NoError(t, err)
	assert.True(t, loaded.IsLoaded())
	assert.False(t, bundle.IsLoaded())

	payload, err := loaded.Bkg.MustPayload()
	require.NoError(t, err)
	assert.Equal(t, []byte("bkg"), payload)
	assert.Nil(t, loaded.RadMax)
}

func Test_Bundle_WithComponent(t *testing.T) {
	radMax := vodf.LoadedComponent(vodf.ComponentRadMax, []byte{1})

	bundle := vodf.BuildBundle(
		fixtures.Window(0, 1),
		vodf.WithComponent(radMax),
		vodf.WithComponent(vodf.LoadedComponent(vodf.ComponentGTI, nil)),
		vodf.WithComponent(nil),
		vodf.WithPointLike(true),
	)

	assert.Same(t, radMax, bundle.RadMax)
	assert.Nil(t, bundle.Component(vodf.ComponentGTI))
	assert.Len(t, bundle.Components(), 1)
	assert.True(t, bundle.PointLike)
}
