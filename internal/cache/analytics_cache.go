package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	analyticsKeyPrefix     = "analytics:"
	salesKeyPrefix         = analyticsKeyPrefix + "sales"
	inventoryKey           = analyticsKeyPrefix + "inventory"
	recommendationsKey     = analyticsKeyPrefix + "reorder"
	analyticsScanBatchSize = 100
)

// AnalyticsCache stores computed analytics results for a short TTL. A miss is
// reported through the bool return, never as an error.
type AnalyticsCache interface {
	GetSales(ctx context.Context, query domain.SalesQuery) (*domain.SalesAnalyticsResult, bool, error)
	SetSales(ctx context.Context, query domain.SalesQuery, result *domain.SalesAnalyticsResult) error
	GetInventory(ctx context.Context) (*domain.InventoryAnalyticsResult, bool, error)
	SetInventory(ctx context.Context, result *domain.InventoryAnalyticsResult) error
	GetRecommendations(ctx context.Context) ([]domain.StockRecommendation, bool, error)
	SetRecommendations(ctx context.Context, recs []domain.StockRecommendation) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, err := dialRedis(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisAnalyticsCache(client, analyticsTTL(cfg)), nil
}

func NewRedisAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisAnalyticsCache{client: client, ttl: ttl}
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetSales(ctx context.Context, query domain.SalesQuery) (*domain.SalesAnalyticsResult, bool, error) {
	var result domain.SalesAnalyticsResult
	ok, err := c.get(ctx, buildSalesKey(query), &result)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &result, true, nil
}

func (c *redisAnalyticsCache) SetSales(ctx context.Context, query domain.SalesQuery, result *domain.SalesAnalyticsResult) error {
	return c.set(ctx, buildSalesKey(query), result)
}

func (c *redisAnalyticsCache) GetInventory(ctx context.Context) (*domain.InventoryAnalyticsResult, bool, error) {
	var result domain.InventoryAnalyticsResult
	ok, err := c.get(ctx, inventoryKey, &result)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &result, true, nil
}

func (c *redisAnalyticsCache) SetInventory(ctx context.Context, result *domain.InventoryAnalyticsResult) error {
	return c.set(ctx, inventoryKey, result)
}

func (c *redisAnalyticsCache) GetRecommendations(ctx context.Context) ([]domain.StockRecommendation, bool, error) {
	var recs []domain.StockRecommendation
	ok, err := c.get(ctx, recommendationsKey, &recs)
	if err != nil || !ok {
		return nil, ok, err
	}
	if recs == nil {
		recs = []domain.StockRecommendation{}
	}
	return recs, true, nil
}

func (c *redisAnalyticsCache) SetRecommendations(ctx context.Context, recs []domain.StockRecommendation) error {
	return c.set(ctx, recommendationsKey, recs)
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	removed, err := purgePrefix(ctx, c.client, analyticsKeyPrefix, analyticsScanBatchSize)
	if err != nil {
		return err
	}
	log.Debug().Int64("keys", removed).Msg("analytics cache invalidated")
	return nil
}

func (c *redisAnalyticsCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", key, err)
	}
	return true, nil
}

func (c *redisAnalyticsCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopAnalyticsCache) GetSales(ctx context.Context, query domain.SalesQuery) (*domain.SalesAnalyticsResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetSales(ctx context.Context, query domain.SalesQuery, result *domain.SalesAnalyticsResult) error {
	return nil
}

func (n *noopAnalyticsCache) GetInventory(ctx context.Context) (*domain.InventoryAnalyticsResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetInventory(ctx context.Context, result *domain.InventoryAnalyticsResult) error {
	return nil
}

func (n *noopAnalyticsCache) GetRecommendations(ctx context.Context) ([]domain.StockRecommendation, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetRecommendations(ctx context.Context, recs []domain.StockRecommendation) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSalesKey(query domain.SalesQuery) string {
	return fmt.Sprintf("%s:%s", salesKeyPrefix, salesQueryHash(query))
}

func salesQueryHash(query domain.SalesQuery) string {
	parts := []string{"group_by=" + strings.ToLower(strings.TrimSpace(string(query.GroupBy)))}

	if query.StartDate != nil {
		parts = append(parts, "start="+query.StartDate.UTC().Format(time.RFC3339))
	}
	if query.EndDate != nil {
		parts = append(parts, "end="+query.EndDate.UTC().Format(time.RFC3339))
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
