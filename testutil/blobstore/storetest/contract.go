// Package storetest holds behavior every blobstore.Store driver must show.
package storetest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/fixtures"
	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/blobstore"
)

// Run exercises a fresh Store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) blobstore.Store) {
	t.Run("put_get_head", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		info, err := store.Put(ctx, "irf/a.fits", bytes.NewReader([]byte("payload")))
		require.NoError(t, err)
		assert.Equal(t, "irf/a.fits", info.Key)
		assert.Equal(t, int64(7), info.Size)

		got, body, err := store.Get(ctx, "irf/a.fits")
		require.NoError(t, err)
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
		assert.Equal(t, int64(7), got.Size)

		head, err := store.Head(ctx, "irf/a.fits")
		require.NoError(t, err)
		assert.Equal(t, int64(7), head.Size)
		assert.NotEmpty(t, head.ETag)
	})

	t.Run("put_is_create_only", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "k", bytes.NewReader([]byte("one")))
		require.NoError(t, err)

		_, err = store.Put(ctx, "k", bytes.NewReader([]byte("two")))
		assert.ErrorIs(t, err, blobstore.ErrAlreadyExists)
	})

	t.Run("missing_key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, _, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		_, err = store.Head(ctx, "nope")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		existed, err := store.Delete(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("invalid_keys", func(t *testing.T) {
		store := newStore(t)

		for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
			_, err := store.Put(context.Background(), key, bytes.NewReader(nil))
			assert.ErrorIs(t, err, blobstore.ErrInvalidKey, key)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Put(ctx, "d", bytes.NewReader([]byte("x")))
		require.NoError(t, err)

		existed, err := store.Delete(ctx, "d")
		require.NoError(t, err)
		assert.True(t, existed)

		_, err = store.Head(ctx, "d")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("list_is_sorted_and_prefixed", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, key := range []string{"irf/c", "irf/a", "events/x", "irf/b"} {
			_, err := store.Put(ctx, key, bytes.NewReader([]byte(key)))
			require.NoError(t, err)
		}

		infos, err := store.List(ctx, "irf/")
		require.NoError(t, err)

		keys := make([]string, 0, len(infos))
		for _, info := range infos {
			keys = append(keys, info.Key)
		}
		assert.Equal(t, []string{"irf/a", "irf/b", "irf/c"}, keys)
	})

	t.Run("resolves_components", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		loc := vodf.Location{Key: fixtures.BlobKey(), HDU: "EFFECTIVE AREA"}
		_, err := blobstore.Upload(ctx, store, loc, []byte("aeff"))
		require.NoError(t, err)

		resolver, err := blobstore.NewResolver(store)
		require.NoError(t, err)

		component, err := vodf.UnloadedComponent(vodf.ComponentAEff, loc).Load(ctx, resolver)
		require.NoError(t, err)

		payload, ok := component.Payload()
		assert.True(t, ok)
		assert.Equal(t, []byte("aeff"), payload)
	})
}
