// backend-go/internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Cache        CacheConfig
	Analytics    AnalyticsConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	Storage      StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
	ProductLookupSize   int
	ProductLookupTTL    int
}

// AnalyticsConfig holds the business constants of the reorder engine.
type AnalyticsConfig struct {
	LeadTimeDays      float64
	SafetyStockDays   float64
	OrderingCost      float64
	HoldingCostRate   float64
	DemandWindowDays  int
	SalesRangeDays    int
	ExpiryWarningDays int
	TopProductsLimit  int
	LookupConcurrency int
	Timezone          string
}

type AuthConfig struct {
	JWTSecret string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type NotificationConfig struct {
	RabbitMQURL  string
	Exchange     string
	RecipientIDs []string
	WebSocket    bool
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Location resolves the configured analytics timezone, falling back to UTC.
func (c AnalyticsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		setDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = fromViper(v)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", 20)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "stockpilot")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)
	v.SetDefault("CACHE_PRODUCT_LOOKUP_SIZE", 512)
	v.SetDefault("CACHE_PRODUCT_LOOKUP_TTL_SECONDS", 30)
	v.SetDefault("ANALYTICS_LEAD_TIME_DAYS", 7)
	v.SetDefault("ANALYTICS_SAFETY_STOCK_DAYS", 14)
	v.SetDefault("ANALYTICS_ORDERING_COST", 50)
	v.SetDefault("ANALYTICS_HOLDING_COST_RATE", 0.2)
	v.SetDefault("ANALYTICS_DEMAND_WINDOW_DAYS", 30)
	v.SetDefault("ANALYTICS_SALES_RANGE_DAYS", 30)
	v.SetDefault("ANALYTICS_EXPIRY_WARNING_DAYS", 30)
	v.SetDefault("ANALYTICS_TOP_PRODUCTS_LIMIT", 10)
	v.SetDefault("ANALYTICS_LOOKUP_CONCURRENCY", 4)
	v.SetDefault("ANALYTICS_TIMEZONE", "UTC")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("NOTIFICATION_EXCHANGE", "inventory.notifications")
	v.SetDefault("NOTIFICATION_RECIPIENT_IDS", []string{})
	v.SetDefault("NOTIFICATION_WEBSOCKET", true)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			RequestTimeout: v.GetInt("SERVER_REQUEST_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			AnalyticsTTLSeconds: v.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
			ProductLookupSize:   v.GetInt("CACHE_PRODUCT_LOOKUP_SIZE"),
			ProductLookupTTL:    v.GetInt("CACHE_PRODUCT_LOOKUP_TTL_SECONDS"),
		},
		Analytics: AnalyticsConfig{
			LeadTimeDays:      v.GetFloat64("ANALYTICS_LEAD_TIME_DAYS"),
			SafetyStockDays:   v.GetFloat64("ANALYTICS_SAFETY_STOCK_DAYS"),
			OrderingCost:      v.GetFloat64("ANALYTICS_ORDERING_COST"),
			HoldingCostRate:   v.GetFloat64("ANALYTICS_HOLDING_COST_RATE"),
			DemandWindowDays:  v.GetInt("ANALYTICS_DEMAND_WINDOW_DAYS"),
			SalesRangeDays:    v.GetInt("ANALYTICS_SALES_RANGE_DAYS"),
			ExpiryWarningDays: v.GetInt("ANALYTICS_EXPIRY_WARNING_DAYS"),
			TopProductsLimit:  v.GetInt("ANALYTICS_TOP_PRODUCTS_LIMIT"),
			LookupConcurrency: v.GetInt("ANALYTICS_LOOKUP_CONCURRENCY"),
			Timezone:          v.GetString("ANALYTICS_TIMEZONE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Notification: NotificationConfig{
			RabbitMQURL:  v.GetString("RABBITMQ_URL"),
			Exchange:     v.GetString("NOTIFICATION_EXCHANGE"),
			RecipientIDs: v.GetStringSlice("NOTIFICATION_RECIPIENT_IDS"),
			WebSocket:    v.GetBool("NOTIFICATION_WEBSOCKET"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
	}
}
