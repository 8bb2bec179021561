package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/analytics"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

type AnalyticsService interface {
	SalesAnalytics(ctx context.Context, q domain.SalesQuery) (*domain.SalesAnalyticsResult, error)
	InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalyticsResult, error)
	ReorderRecommendations(ctx context.Context) ([]domain.StockRecommendation, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
	timeout time.Duration
	loc     *time.Location
}

func NewAnalyticsHandler(service AnalyticsService, timeout time.Duration, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{service: service, timeout: timeout, loc: loc}
}

func (h *AnalyticsHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// GetSalesAnalytics handles GET /analytics/sales?startDate=&endDate=&groupBy=
func (h *AnalyticsHandler) GetSalesAnalytics(c *gin.Context) {
	query, err := h.parseSalesQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.SalesAnalytics(ctx, query)
	if err != nil {
		respondError(c, "failed to fetch sales analytics", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) GetInventoryAnalytics(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.service.InventoryAnalytics(ctx)
	if err != nil {
		respondError(c, "failed to fetch inventory analytics", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) GetReorderRecommendations(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	recs, err := h.service.ReorderRecommendations(ctx)
	if err != nil {
		respondError(c, "failed to fetch reorder recommendations", err)
		return
	}
	if recs == nil {
		recs = make([]domain.StockRecommendation, 0)
	}

	c.JSON(http.StatusOK, recs)
}

func (h *AnalyticsHandler) parseSalesQuery(c *gin.Context) (domain.SalesQuery, error) {
	query := domain.SalesQuery{
		GroupBy: analytics.NormalizeGroupBy(strings.ToLower(strings.TrimSpace(c.Query("groupBy")))),
	}

	if raw := strings.TrimSpace(c.Query("startDate")); raw != "" {
		start, _, err := parseDate(raw, h.loc)
		if err != nil {
			return query, fmt.Errorf("startDate: %w", err)
		}
		query.StartDate = &start
	}

	if raw := strings.TrimSpace(c.Query("endDate")); raw != "" {
		end, dateOnly, err := parseDate(raw, h.loc)
		if err != nil {
			return query, fmt.Errorf("endDate: %w", err)
		}
		// A bare date covers the whole day.
		if dateOnly {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		query.EndDate = &end
	}

	return query, nil
}

// parseDate accepts YYYY-MM-DD (interpreted in loc) or RFC3339.
func parseDate(raw string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC3339", raw)
	}
	return t, false, nil
}

func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
