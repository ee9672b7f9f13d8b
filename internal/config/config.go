package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string

	AccessTokenTTL time.Duration
	ClockSkew      time.Duration

	CatalogCacheTTL     time.Duration
	DashboardCacheTTL   time.Duration
	CatalogDefaultLimit int
	CatalogMaxLimit     int

	CartTTL        time.Duration
	IdempotencyTTL time.Duration

	CurrencyCode    string
	DeliveryFlatFee int64
	WhatsAppPhone   string

	MediaDir       string
	MediaBaseURL   string
	MaxUploadBytes int64
	BodyLimitBytes int64

	QuoteRateLimit    string
	CheckoutRateLimit string

	AutoMigrate bool
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		AccessTokenTTL: parseDuration(k.String("ACCESS_TOKEN_TTL"), "12h"),
		ClockSkew:      parseDuration(k.String("JWT_CLOCK_SKEW"), "30s"),

		CatalogCacheTTL:     parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		DashboardCacheTTL:   parseDuration(k.String("DASHBOARD_CACHE_TTL"), "1m"),
		CatalogDefaultLimit: intOrDefault(k.String("CATALOG_DEFAULT_LIMIT"), 20),
		CatalogMaxLimit:     intOrDefault(k.String("CATALOG_MAX_LIMIT"), 100),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		CurrencyCode:    valueOrDefault(k.String("CURRENCY_CODE"), "XAF"),
		DeliveryFlatFee: int64OrDefault(k.String("DELIVERY_FLAT_FEE"), 5000),
		WhatsAppPhone:   k.String("WHATSAPP_PHONE"),

		MediaDir:       valueOrDefault(k.String("MEDIA_DIR"), "./media"),
		MediaBaseURL:   valueOrDefault(k.String("MEDIA_BASE_URL"), "/media"),
		MaxUploadBytes: int64OrDefault(k.String("MEDIA_MAX_UPLOAD_BYTES"), 10<<20),
		BodyLimitBytes: int64OrDefault(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20),

		QuoteRateLimit:    valueOrDefault(k.String("QUOTE_RATE_LIMIT"), "10-H"),
		CheckoutRateLimit: valueOrDefault(k.String("CHECKOUT_RATE_LIMIT"), "30-H"),

		AutoMigrate: parseBool(valueOrDefault(k.String("DB_AUTO_MIGRATE"), "true")),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.WhatsAppPhone == "" {
		return nil, errors.New("WHATSAPP_PHONE is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func intOrDefault(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func int64OrDefault(value string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
