package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAnalytics struct{}

func (stubAnalytics) SalesAnalytics(ctx context.Context, q domain.SalesQuery) (*domain.SalesAnalyticsResult, error) {
	return &domain.SalesAnalyticsResult{}, nil
}

func (stubAnalytics) InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalyticsResult, error) {
	return &domain.InventoryAnalyticsResult{}, nil
}

func (stubAnalytics) ReorderRecommendations(ctx context.Context) ([]domain.StockRecommendation, error) {
	return []domain.StockRecommendation{}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&Services{Analytics: stubAnalytics{}, DB: stubPinger{}}, Options{})

	for _, path := range []string{
		"/health",
		"/api/v1/analytics/sales",
		"/api/v1/analytics/inventory",
		"/api/v1/analytics/reorder-recommendations",
	} {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/ws/notifications", nil).Code)
}

func TestNewRouterGuardsAPIWhenSecretSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&Services{Analytics: stubAnalytics{}}, Options{JWTSecret: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/analytics/inventory", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&Services{DB: stubPinger{err: errors.New("refused")}}, Options{})
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/health", nil).Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&Services{Analytics: stubAnalytics{}}, Options{AllowedOrigins: []string{"https://app.example.com, https://ops.example.com"}})

	w := serve(r, http.MethodGet, "/api/v1/analytics/inventory", map[string]string{"Origin": "https://ops.example.com"})
	assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"a.com, b.com", " ", "*"})
	assert.Equal(t, []string{"a.com", "b.com"}, origins)
	assert.True(t, all)
}
