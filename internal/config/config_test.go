package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsMatchReorderConstants(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, 7.0, cfg.Analytics.LeadTimeDays)
	assert.Equal(t, 14.0, cfg.Analytics.SafetyStockDays)
	assert.Equal(t, 50.0, cfg.Analytics.OrderingCost)
	assert.Equal(t, 0.2, cfg.Analytics.HoldingCostRate)
	assert.Equal(t, 30, cfg.Analytics.DemandWindowDays)
	assert.Equal(t, 30, cfg.Analytics.SalesRangeDays)
	assert.Equal(t, 10, cfg.Analytics.TopProductsLimit)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "inventory.notifications", cfg.Notification.Exchange)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("ANALYTICS_LEAD_TIME_DAYS", "10")
	t.Setenv("SERVER_PORT", "9090")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	cfg := fromViper(v)

	assert.Equal(t, 10.0, cfg.Analytics.LeadTimeDays)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestAnalyticsLocation(t *testing.T) {
	assert.Equal(t, time.UTC, AnalyticsConfig{}.Location())
	assert.Equal(t, time.UTC, AnalyticsConfig{Timezone: "Not/AZone"}.Location())
}
