package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-storefront/internal/basket"
	"github.com/noah-isme/backend-storefront/internal/catalog"
	"github.com/noah-isme/backend-storefront/internal/config"
	"github.com/noah-isme/backend-storefront/internal/display"
	"github.com/noah-isme/backend-storefront/internal/health"
	"github.com/noah-isme/backend-storefront/internal/money"
	"github.com/noah-isme/backend-storefront/internal/obs"
	"github.com/noah-isme/backend-storefront/internal/taxing"
	"github.com/noah-isme/backend-storefront/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "storefront")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "storefront"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if tracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Source: &catalog.Repo{Pool: pool, PricesIncludeTax: cfg.CatalogPricesIncludeTax},
		Cache: &catalog.Cache{
			Client: redisClient,
			TTL:    cfg.CatalogCacheTTL,
			Log:    logger,
		},
		ListLimit: cfg.CatalogListLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	formatter, err := money.NewFormatter(cfg.ShopLocale, cfg.ShopCurrency)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise money formatter")
	}
	var renderMetrics *obs.RenderMetrics
	if metricsEnabled {
		renderMetrics = obs.NewRenderMetrics(metricsNamespace, nil)
	}
	registry, err := display.NewRegistry(display.RegistryConfig{
		Converter: taxing.RateConverter{
			RateBps:       cfg.TaxRateBps,
			DisplayTaxful: cfg.CatalogPricesIncludeTax,
		},
		Formatter: formatter,
		Metrics:   renderMetrics,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise display registry")
	}

	delivery, err := deliveryMethod(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse delivery configuration")
	}

	webHandler, err := web.NewHandler(web.HandlerConfig{
		Catalog:  catalogService,
		Baskets:  &basket.Store{Client: redisClient, TTL: cfg.BasketTTL},
		Registry: registry,
		Delivery: delivery,
		Validate: validator.New(),
		Shop: web.ShopSettings{
			Name:         cfg.ShopName,
			Currency:     cfg.ShopCurrency,
			HidePrices:   cfg.HidePrices,
			IncludeTaxes: cfg.PriceDisplayMode,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise web handler")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		DB:      health.PingerFunc(func(ctx context.Context) error { return pool.Ping(ctx) }),
		Redis:   health.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		Timeout: envDurationMillis("HEALTH_READY_TIMEOUT_MS", 500),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Mount("/", webHandler.Routes())

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func deliveryMethod(cfg *config.Config) (basket.DeliveryMethod, error) {
	fee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil {
		return basket.DeliveryMethod{}, err
	}
	method := basket.DeliveryMethod{
		Name: "standard",
		Fee:  money.NewPrice(fee, cfg.ShopCurrency, cfg.CatalogPricesIncludeTax),
	}
	if cfg.DeliveryFreeAbove != "" {
		threshold, err := decimal.NewFromString(cfg.DeliveryFreeAbove)
		if err != nil {
			return basket.DeliveryMethod{}, err
		}
		m := money.New(threshold, cfg.ShopCurrency)
		method.FreeAbove = &m
	}
	return method, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
