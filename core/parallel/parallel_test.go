package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversRange(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000} {
		seen := make([]int32, items)
		err := Parallelize(context.Background(), items, func(_ context.Context, start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for i, c := range seen {
			assert.Equal(t, int32(1), c, "index %d visited %d times", i, c)
		}
	}
}

func TestParallelizeReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := Parallelize(context.Background(), 100, func(_ context.Context, start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	err := ParallelizeWithThreshold(context.Background(), 10, 50, func(_ context.Context, start, end int) error {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
