package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL  = time.Minute
	redisDialTimeout = 5 * time.Second
)

// dialRedis opens a client for cfg and fails fast when the server does not
// answer a ping within redisDialTimeout.
func dialRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr, err)
	}
	return client, nil
}

// redisOptions prefers REDIS_URL and falls back to host/port/db fields.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func analyticsTTL(cfg config.CacheConfig) time.Duration {
	if cfg.AnalyticsTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.AnalyticsTTLSeconds) * time.Second
}

// purgePrefix walks the keyspace with SCAN and deletes every key under
// prefix. It returns how many keys were removed.
func purgePrefix(ctx context.Context, client redis.Cmdable, prefix string, batch int64) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", batch).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s*: %w", prefix, err)
		}
		if len(keys) > 0 {
			n, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("delete %d keys under %s: %w", len(keys), prefix, err)
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
