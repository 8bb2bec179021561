package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// LoaderConfig controls how parsed records are written to the store.
type LoaderConfig struct {
	Name          string
	WorkerCount   int           // Number of concurrent writers
	RetryAttempts int           // Extra attempts per record after the first failure
	RetryBackoff  time.Duration // Backoff between attempts, doubled each retry
	ProgressEvery int           // Log progress every N records, 0 disables
}

// DefaultLoaderConfig returns sensible defaults.
func DefaultLoaderConfig(name string) LoaderConfig {
	return LoaderConfig{
		Name:          name,
		WorkerCount:   4,
		RetryAttempts: 2,
		RetryBackoff:  200 * time.Millisecond,
		ProgressEvery: 1000,
	}
}

// LoadResult summarises a Load run.
type LoadResult struct {
	Loaded   int
	Retried  int
	Duration time.Duration
}

// Load writes every record through write using a pool of workers. The first
// record that still fails after its retries cancels the remaining work.
func Load[T any](ctx context.Context, cfg LoaderConfig, records []T, write func(context.Context, *T) error) (LoadResult, error) {
	start := time.Now()
	workerCount := cfg.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, workerCount)
	errs := make(chan error, workerCount)
	var (
		wg      sync.WaitGroup
		loaded  atomic.Int64
		retried atomic.Int64
	)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				attempts, err := writeWithRetry(ctx, cfg, &records[idx], write)
				retried.Add(int64(attempts - 1))
				if err != nil {
					log.Error().Err(err).Str("loader", cfg.Name).Int("worker", workerID).Int("record", idx).Msg("record failed")
					select {
					case errs <- fmt.Errorf("%s record %d: %w", cfg.Name, idx, err):
					default:
					}
					cancel()
					continue
				}

				n := loaded.Add(1)
				if cfg.ProgressEvery > 0 && n%int64(cfg.ProgressEvery) == 0 {
					log.Info().Str("loader", cfg.Name).Int64("count", n).Msg("loading")
				}
			}
		}(i)
	}

enqueue:
	for idx := range records {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break enqueue
		case jobs <- idx:
		}
	}
	close(jobs)

	wg.Wait()
	close(errs)

	result := LoadResult{
		Loaded:   int(loaded.Load()),
		Retried:  int(retried.Load()),
		Duration: time.Since(start),
	}
	if err := <-errs; err != nil {
		return result, err
	}
	// Parent cancellation without a record failure.
	if result.Loaded < len(records) {
		return result, context.Cause(ctx)
	}
	return result, nil
}

func writeWithRetry[T any](ctx context.Context, cfg LoaderConfig, record *T, write func(context.Context, *T) error) (int, error) {
	backoff := cfg.RetryBackoff
	attempt := 0
	for {
		attempt++
		err := write(ctx, record)
		if err == nil || attempt > cfg.RetryAttempts {
			return attempt, err
		}

		select {
		case <-ctx.Done():
			return attempt, err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
