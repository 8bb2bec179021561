package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesEveryRecord(t *testing.T) {
	records := make([]int, 250)
	for i := range records {
		records[i] = i
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	cfg := DefaultLoaderConfig("ints")
	cfg.ProgressEvery = 100

	res, err := Load(context.Background(), cfg, records, func(_ context.Context, r *int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[*r] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 250, res.Loaded)
	assert.Zero(t, res.Retried)
	assert.Len(t, seen, 250)
}

func TestLoadRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	cfg := LoaderConfig{Name: "flaky", WorkerCount: 1, RetryAttempts: 2, RetryBackoff: time.Millisecond}

	res, err := Load(context.Background(), cfg, []string{"a"}, func(context.Context, *string) error {
		if calls.Add(1) < 3 {
			return errors.New("deadlock detected")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Loaded)
	assert.Equal(t, 2, res.Retried)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoadStopsOnPermanentFailure(t *testing.T) {
	boom := errors.New("constraint violation")
	cfg := LoaderConfig{Name: "orders", WorkerCount: 2, RetryAttempts: 1, RetryBackoff: time.Millisecond}

	records := make([]int, 50)
	for i := range records {
		records[i] = i
	}
	res, err := Load(context.Background(), cfg, records, func(_ context.Context, r *int) error {
		if *r == 3 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "orders record 3")
	assert.Less(t, res.Loaded, len(records))
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, DefaultLoaderConfig("cancelled"), []int{1, 2, 3}, func(context.Context, *int) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadEmpty(t *testing.T) {
	res, err := Load(context.Background(), DefaultLoaderConfig("empty"), []int(nil), func(context.Context, *int) error {
		return errors.New("never called")
	})
	require.NoError(t, err)
	assert.Zero(t, res.Loaded)
}
