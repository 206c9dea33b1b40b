package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrawl/crawl"
)

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("returns first success without retrying", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := crawl.Do(context.Background(), []time.Duration{time.Millisecond}, func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries once per delay then returns last error", func(t *testing.T) {
		t.Parallel()

		calls := 0
		delays := []time.Duration{time.Millisecond, time.Millisecond}
		_, err := crawl.Do(context.Background(), delays, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("boom")
		})

		require.Error(t, err)
		assert.Equal(t, "boom", err.Error())
		assert.Equal(t, 3, calls)
	})

	t.Run("succeeds on a later attempt", func(t *testing.T) {
		t.Parallel()

		calls := 0
		delays := []time.Duration{time.Millisecond, time.Millisecond}
		got, err := crawl.Do(context.Background(), delays, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("not yet")
			}
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancellation aborts the backoff wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := crawl.Do(ctx, []time.Duration{time.Hour}, func(context.Context) (int, error) {
			return 0, errors.New("boom")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
