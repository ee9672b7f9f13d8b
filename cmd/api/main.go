package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/nkg-services/backend-electro/internal/analytics"
	"github.com/nkg-services/backend-electro/internal/auth"
	"github.com/nkg-services/backend-electro/internal/cart"
	"github.com/nkg-services/backend-electro/internal/catalog"
	"github.com/nkg-services/backend-electro/internal/checkout"
	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/config"
	"github.com/nkg-services/backend-electro/internal/customer"
	"github.com/nkg-services/backend-electro/internal/db"
	"github.com/nkg-services/backend-electro/internal/health"
	"github.com/nkg-services/backend-electro/internal/install"
	"github.com/nkg-services/backend-electro/internal/media"
	"github.com/nkg-services/backend-electro/internal/obs"
	"github.com/nkg-services/backend-electro/internal/order"
	"github.com/nkg-services/backend-electro/internal/pricing"
	"github.com/nkg-services/backend-electro/internal/quote"
	"github.com/nkg-services/backend-electro/internal/ratelimit"
	"github.com/nkg-services/backend-electro/internal/security"
	"github.com/nkg-services/backend-electro/internal/stock"
	"github.com/nkg-services/backend-electro/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "electro")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "electro-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
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

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for task queue")
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task queue client")
		}
	}()

	catalogStore := catalog.NewStore(pool)
	catalogCache := catalog.Cache{R: redisClient, TTL: cfg.CatalogCacheTTL}
	catalogService := catalog.NewService(catalogStore, catalogCache, logger)
	catalogHandler := &catalog.Handler{
		Service:      catalogService,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}
	catalogAdmin := &catalog.AdminHandler{
		Store:        catalogStore,
		Cache:        catalogCache,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}

	authService, err := auth.NewService(auth.Config{
		Pool:           pool,
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		ClockSkew:      cfg.ClockSkew,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService}
	authMiddleware := auth.Middleware{Service: authService}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	cartStore := cart.Store{R: redisClient, TTL: cfg.CartTTL}
	cartService := cart.NewService(cartStore, catalogStore, pricing.Money(cfg.DeliveryFlatFee), logger)
	cartHandler := &cart.Handler{Service: cartService}

	installStore := install.NewStore(pool)
	installHandler := &install.Handler{Store: installStore}

	analyticsService := analytics.NewService(pool, redisClient, cfg.DashboardCacheTTL, logger)
	analyticsHandler := &analytics.Handler{Service: analyticsService}

	checkoutService := checkout.NewService(pool, cartService, installStore, asynqClient, analyticsService, checkout.Config{
		DeliveryFlatFee: pricing.Money(cfg.DeliveryFlatFee),
		CurrencyCode:    cfg.CurrencyCode,
		WhatsAppPhone:   cfg.WhatsAppPhone,
	}, logger)
	checkoutHandler := &checkout.Handler{Service: checkoutService}

	orderStore := order.NewStore(pool)
	orderHandler := &order.Handler{
		Store:        orderStore,
		Dashboard:    analyticsService,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}

	quoteService := quote.NewService(pool, asynqClient, logger)
	quoteHandler := &quote.Handler{
		Service:      quoteService,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}

	customerStore := customer.NewStore(pool)
	customerHandler := &customer.Handler{
		Store:        customerStore,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}

	supplierStore := supplier.NewStore(pool)
	supplierHandler := &supplier.Handler{Store: supplierStore}

	stockService := stock.NewService(pool, asynqClient, logger)
	stockHandler := &stock.Handler{
		Service:      stockService,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	}

	mediaService, err := media.NewService(cfg.MediaDir, cfg.MediaBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise media storage")
	}
	mediaHandler := &media.Handler{Service: mediaService}

	limiterStore, err := ratelimit.NewStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter store")
	}
	onLimiterError := func(err error) {
		logger.Error().Err(err).Msg("rate limiter store error")
	}
	quoteLimiter, err := ratelimit.New(limiterStore, cfg.QuoteRateLimit, onLimiterError)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse quote rate limit")
	}
	checkoutLimiter, err := ratelimit.New(limiterStore, cfg.CheckoutRateLimit, onLimiterError)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse checkout rate limit")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
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
	r.Use(security.Headers{
		Enable:     envBool("SECURE_HEADERS", true),
		EnableHSTS: envBool("SECURE_HSTS", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", cart.SessionHeader},
		ExposedHeaders:   []string{cart.SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	mediaPrefix := strings.TrimRight(cfg.MediaBaseURL, "/")
	if strings.HasPrefix(mediaPrefix, "/") {
		r.Handle(mediaPrefix+"/*", http.StripPrefix(mediaPrefix+"/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/categories/tree", catalogHandler.CategoryTree)
		v.Get("/categories", catalogHandler.Categories)
		v.Get("/categories/{slug}", catalogHandler.CategoryBySlug)
		v.Get("/brands", catalogHandler.Brands)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{slug}", catalogHandler.ProductBySlug)
		v.Get("/installation-services", installHandler.List)
		v.Get("/orders/{orderNumber}", orderHandler.Track)

		v.Route("/cart", func(c chi.Router) {
			c.Get("/", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/items", cartHandler.AddItem)
				g.Patch("/items/{variantID}", cartHandler.UpdateItem)
				g.Delete("/items/{variantID}", cartHandler.RemoveItem)
				g.Delete("/", cartHandler.Clear)
			})
		})

		v.With(checkoutLimiter.Middleware, idem.Middleware).Post("/checkout", checkoutHandler.Submit)
		v.With(quoteLimiter.Middleware).Post("/quotes", quoteHandler.Create)

		v.Post("/auth/login", authHandler.Login)

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)

			admin.Get("/me", authHandler.Me)
			admin.Post("/me/password", authHandler.ChangePassword)

			admin.Get("/dashboard", analyticsHandler.Dashboard)

			admin.Route("/categories", func(c chi.Router) {
				c.Get("/", catalogAdmin.ListCategories)
				c.Post("/", catalogAdmin.CreateCategory)
				c.Put("/{categoryID}", catalogAdmin.UpdateCategory)
				c.Delete("/{categoryID}", catalogAdmin.DeleteCategory)
			})
			admin.Route("/brands", func(b chi.Router) {
				b.Get("/", catalogAdmin.ListBrands)
				b.Post("/", catalogAdmin.CreateBrand)
				b.Put("/{brandID}", catalogAdmin.UpdateBrand)
				b.Delete("/{brandID}", catalogAdmin.DeleteBrand)
			})
			admin.Route("/products", func(p chi.Router) {
				p.Get("/", catalogAdmin.ListProducts)
				p.Post("/", catalogAdmin.CreateProduct)
				p.Get("/{productID}", catalogAdmin.GetProduct)
				p.Put("/{productID}", catalogAdmin.UpdateProduct)
				p.Delete("/{productID}", catalogAdmin.DeleteProduct)
				p.Post("/{productID}/variants", catalogAdmin.CreateVariant)
				p.Post("/{productID}/images", catalogAdmin.AddProductImage)
				p.Delete("/{productID}/images/{imageID}", catalogAdmin.DeleteProductImage)
			})
			admin.Route("/variants", func(va chi.Router) {
				va.Put("/{variantID}", catalogAdmin.UpdateVariant)
				va.Delete("/{variantID}", catalogAdmin.DeleteVariant)
				va.Put("/{variantID}/price", catalogAdmin.UpsertPrice)
			})

			admin.Route("/orders", func(o chi.Router) {
				o.Get("/", orderHandler.List)
				o.Get("/export", orderHandler.Export)
				o.Get("/{orderID}", orderHandler.Get)
				o.Patch("/{orderID}/status", orderHandler.UpdateStatus)
				o.Patch("/{orderID}/discount", orderHandler.ApplyDiscount)
			})

			admin.Route("/quotes", func(q chi.Router) {
				q.Get("/", quoteHandler.List)
				q.Post("/{quoteID}/respond", quoteHandler.Respond)
				q.Post("/{quoteID}/close", quoteHandler.Close)
			})

			admin.Route("/customers", func(c chi.Router) {
				c.Get("/", customerHandler.List)
				c.Post("/", customerHandler.Create)
				c.Get("/{customerID}", customerHandler.Get)
				c.Put("/{customerID}", customerHandler.Update)
				c.Delete("/{customerID}", customerHandler.Delete)
				c.Post("/{customerID}/addresses", customerHandler.AddAddress)
				c.Delete("/{customerID}/addresses/{addressID}", customerHandler.DeleteAddress)
			})

			admin.Route("/suppliers", func(sp chi.Router) {
				sp.Get("/", supplierHandler.List)
				sp.Post("/", supplierHandler.Create)
				sp.Put("/{supplierID}", supplierHandler.Update)
				sp.Delete("/{supplierID}", supplierHandler.Delete)
			})

			admin.Route("/stock", func(st chi.Router) {
				st.Get("/", stockHandler.Levels)
				st.Get("/{variantID}/movements", stockHandler.Movements)
				st.Post("/{variantID}/movements", stockHandler.Apply)
				st.Put("/{variantID}/reorder-level", stockHandler.SetReorderLevel)
			})

			admin.Route("/installation-services", func(is chi.Router) {
				is.Get("/", installHandler.AdminList)
				is.Put("/{serviceID}", installHandler.Update)
			})

			admin.Post("/media", mediaHandler.Upload)
			admin.Delete("/media/{fileName}", mediaHandler.Delete)

			admin.Route("/users", func(u chi.Router) {
				u.Use(auth.RequireRole("root"))
				u.Get("/", authHandler.ListAdmins)
				u.Post("/", authHandler.CreateAdmin)
				u.Patch("/{adminID}/active", authHandler.SetAdminActive)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
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
