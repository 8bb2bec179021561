package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/cache"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/notification"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Analyzer is the analytics façade the service fronts.
type Analyzer interface {
	SalesAnalytics(ctx context.Context, q domain.SalesQuery) (*domain.SalesAnalyticsResult, error)
	InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalyticsResult, error)
	ReorderRecommendations(ctx context.Context) ([]domain.StockRecommendation, error)
}

type AnalyticsService struct {
	engine     Analyzer
	cache      cache.AnalyticsCache
	emitter    notification.Emitter
	recipients []string
	group      singleflight.Group
}

func NewAnalyticsService(engine Analyzer, cacheImpl cache.AnalyticsCache, emitter notification.Emitter, recipients []string) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	if emitter == nil {
		emitter = notification.NewEmitter(notification.NewNoopPublisher())
	}
	return &AnalyticsService{
		engine:     engine,
		cache:      cacheImpl,
		emitter:    emitter,
		recipients: recipients,
	}
}

func (s *AnalyticsService) SalesAnalytics(ctx context.Context, q domain.SalesQuery) (*domain.SalesAnalyticsResult, error) {
	if result, ok, err := s.cache.GetSales(ctx, q); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get sales failed")
	}

	v, err, _ := s.group.Do(salesFlightKey(q), func() (interface{}, error) {
		result, err := s.engine.SalesAnalytics(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetSales(ctx, q, result); err != nil {
			log.Warn().Err(err).Msg("analytics: cache set sales failed")
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SalesAnalyticsResult), nil
}

func (s *AnalyticsService) InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalyticsResult, error) {
	if result, ok, err := s.cache.GetInventory(ctx); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get inventory failed")
	}

	v, err, _ := s.group.Do("inventory", func() (interface{}, error) {
		result, err := s.engine.InventoryAnalytics(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetInventory(ctx, result); err != nil {
			log.Warn().Err(err).Msg("analytics: cache set inventory failed")
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.InventoryAnalyticsResult), nil
}

// ReorderRecommendations returns the ranked recommendations. Freshly computed
// critical recommendations raise a low_stock notification each; cached
// results do not notify again.
func (s *AnalyticsService) ReorderRecommendations(ctx context.Context) ([]domain.StockRecommendation, error) {
	if recs, ok, err := s.cache.GetRecommendations(ctx); err == nil && ok {
		return recs, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get recommendations failed")
	}

	v, err, _ := s.group.Do("reorder", func() (interface{}, error) {
		recs, err := s.engine.ReorderRecommendations(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetRecommendations(ctx, recs); err != nil {
			log.Warn().Err(err).Msg("analytics: cache set recommendations failed")
		}
		s.notifyCritical(ctx, recs)
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.StockRecommendation), nil
}

func (s *AnalyticsService) notifyCritical(ctx context.Context, recs []domain.StockRecommendation) {
	if len(s.recipients) == 0 {
		return
	}

	for _, rec := range recs {
		if rec.Urgency != domain.UrgencyCritical {
			continue
		}

		_, err := s.emitter.Emit(ctx, domain.NotificationRequest{
			Type:         domain.NotificationLowStock,
			Title:        fmt.Sprintf("Low stock: %s", rec.Product.Name),
			Message:      lowStockMessage(rec),
			RecipientIDs: s.recipients,
			RelatedEntity: &domain.EntityRef{
				Kind: "product",
				ID:   rec.Product.ID,
			},
		})
		if err != nil {
			log.Error().Err(err).Str("product_id", rec.Product.ID).Msg("analytics: low stock notification failed")
		}
	}
}

func lowStockMessage(rec domain.StockRecommendation) string {
	return fmt.Sprintf("%s. %s (SKU %s) has %d units in stock against a reorder point of %d; recommended order quantity is %d.",
		rec.Reason, rec.Product.Name, rec.Product.SKU, rec.Product.CurrentStock, rec.ReorderPoint, rec.RecommendedQuantity)
}

func salesFlightKey(q domain.SalesQuery) string {
	key := "sales:" + string(q.GroupBy)
	if q.StartDate != nil {
		key += ":" + q.StartDate.UTC().Format(time.RFC3339)
	}
	key += "|"
	if q.EndDate != nil {
		key += q.EndDate.UTC().Format(time.RFC3339)
	}
	return key
}
