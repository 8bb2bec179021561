package main

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stockpilot/backend-go/internal/cache"
	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type cacheOpener func(config.CacheConfig) (cache.AnalyticsCache, error)

// invalidateAnalytics drops cached analytics results so the API recomputes
// them from the freshly seeded rows.
func invalidateAnalytics(ctx context.Context, cfg config.CacheConfig, open cacheOpener) error {
	if !cfg.Enabled {
		return nil
	}

	c, err := open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open analytics cache: %w", err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}
	return nil
}

// withCacheRefresh runs action and, once it succeeds, invalidates the
// analytics cache. A failed invalidation is logged; the seeded data stays.
func withCacheRefresh(action cli.ActionFunc, cacheCfg func() config.CacheConfig, open cacheOpener) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := action(c); err != nil {
			return err
		}

		cfg := cacheCfg()
		if err := invalidateAnalytics(c.Context, cfg, open); err != nil {
			logger.Log.Warn().Err(err).Msg("analytics cache may serve stale results until its TTL expires")
			return nil
		}
		if cfg.Enabled {
			logger.Log.Info().Msg("analytics cache invalidated")
		}
		return nil
	}
}

func loadCacheConfig() config.CacheConfig {
	return config.Load().Cache
}
