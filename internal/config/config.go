package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	ShopName     string
	ShopCurrency string
	ShopLocale   string

	// TaxRateBps is the flat tax rate in basis points (1000 = 10%).
	TaxRateBps int64
	// CatalogPricesIncludeTax records the taxness of stored catalog prices.
	CatalogPricesIncludeTax bool
	// PriceDisplayMode is the shop display default: "with_taxes",
	// "without_taxes", or empty to follow the tax engine.
	PriceDisplayMode *bool
	HidePrices       bool

	DeliveryFee       string
	DeliveryFreeAbove string

	BasketTTL        time.Duration
	CatalogCacheTTL  time.Duration
	CatalogListLimit int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	mode, err := parseDisplayMode(k.String("PRICE_DISPLAY_MODE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:       valueOrDefault(k.String("APP_ENV"), "development"),
		Port:         valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:  k.String("DATABASE_URL"),
		RedisURL:     k.String("REDIS_URL"),
		ShopName:     valueOrDefault(k.String("SHOP_NAME"), "Storefront"),
		ShopCurrency: valueOrDefault(k.String("SHOP_CURRENCY"), "USD"),
		ShopLocale:   valueOrDefault(k.String("SHOP_LOCALE"), "en-US"),

		TaxRateBps:              parseInt64(k.String("TAX_RATE_BPS"), 0),
		CatalogPricesIncludeTax: parseBool(k.String("CATALOG_PRICES_INCLUDE_TAX")),
		PriceDisplayMode:        mode,
		HidePrices:              parseBool(k.String("HIDE_PRICES")),

		DeliveryFee:       valueOrDefault(k.String("DELIVERY_FEE"), "0"),
		DeliveryFreeAbove: strings.TrimSpace(k.String("DELIVERY_FREE_ABOVE")),

		BasketTTL:        parseDuration(k.String("BASKET_TTL"), "720h"),
		CatalogCacheTTL:  parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CatalogListLimit: int(parseInt64(k.String("CATALOG_LIST_LIMIT"), 50)),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.TaxRateBps < 0 {
		return nil, errors.New("TAX_RATE_BPS must not be negative")
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

func parseDisplayMode(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return nil, nil
	case "with_taxes":
		v := true
		return &v, nil
	case "without_taxes":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("PRICE_DISPLAY_MODE must be empty, with_taxes or without_taxes, got %q", value)
	}
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

func parseInt64(value string, fallback int64) int64 {
	base := strings.TrimSpace(value)
	if base == "" {
		return fallback
	}
	n, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
