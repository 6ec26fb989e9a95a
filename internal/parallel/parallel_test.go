package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForCoversRangeExactlyOnce(t *testing.T) {
	const n = 10_000

	hits := make([]atomic.Int32, n)
	err := For(context.Background(), 8, n, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})
	require.NoError(t, err)

	for i := range hits {
		require.Equal(t, int32(1), hits[i].Load(), "index %d", i)
	}
}

func TestForEmptyRange(t *testing.T) {
	called := false
	err := For(context.Background(), 4, 0, func(int, int) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestForSingleWorker(t *testing.T) {
	var sum int
	err := For(context.Background(), 1, 100, func(start, end int) {
		for i := start; i < end; i++ {
			sum += i
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 4950, sum)
}

func TestForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := For(ctx, 4, 1_000_000, func(int, int) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEachCoversRangeExactlyOnce(t *testing.T) {
	const n = 10_000

	hits := make([]atomic.Int32, n)
	Each(8, n, func(i int) {
		hits[i].Add(1)
	})

	for i := range hits {
		require.Equal(t, int32(1), hits[i].Load(), "index %d", i)
	}
}

func TestEachEmptyRange(t *testing.T) {
	called := false
	Each(4, 0, func(int) { called = true })
	assert.False(t, called)
}

func TestForEach(t *testing.T) {
	var count atomic.Int64
	err := ForEach(context.Background(), 0, 1234, func(i int) {
		count.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), count.Load())
}
