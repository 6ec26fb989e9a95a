package blobstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("Get missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Put and Get round-trip", func(t *testing.T) {
		err := store.Put(ctx, "alpha", strings.NewReader("alpha-data"))
		require.NoError(t, err)

		rc, err := store.Get(ctx, "alpha")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "alpha-data", string(data))
	})

	t.Run("Put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "beta", strings.NewReader("v1")))
		require.NoError(t, store.Put(ctx, "beta", strings.NewReader("v2")))

		rc, err := store.Get(ctx, "beta")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(data))
	})

	t.Run("List filters by prefix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "snap-1", strings.NewReader("a")))
		require.NoError(t, store.Put(ctx, "snap-2", strings.NewReader("b")))
		require.NoError(t, store.Put(ctx, "other", strings.NewReader("c")))

		names, err := store.List(ctx, "snap-")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"snap-1", "snap-2"}, names)
	})

	t.Run("Delete removes blob", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "gamma", strings.NewReader("x")))
		require.NoError(t, store.Delete(ctx, "gamma"))

		_, err := store.Get(ctx, "gamma")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete missing is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	testStore(t, store)
}

func TestLocalStore_ListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, ".put-leftover", strings.NewReader("partial")))
	require.NoError(t, store.Put(ctx, "complete", strings.NewReader("data")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"complete"}, names)
}

func TestRateLimitedStore(t *testing.T) {
	ctx := context.Background()

	inner := NewMemoryStore()
	store := NewRateLimitedStore(inner, 1024*1024)

	payload := bytes.Repeat([]byte{0xAB}, 64*1024)
	require.NoError(t, store.Put(ctx, "blob", bytes.NewReader(payload)))

	rc, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestRateLimitedStore_Throttles(t *testing.T) {
	ctx := context.Background()

	inner := NewMemoryStore()
	store := NewRateLimitedStore(inner, 32*1024)

	// One full burst beyond the initial token allowance must take at
	// least one limiter interval.
	payload := bytes.Repeat([]byte{0x01}, 64*1024)

	start := time.Now()
	require.NoError(t, store.Put(ctx, "big", bytes.NewReader(payload)))
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}
