package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/justgold/justgold-backend/api/routes"
	authsvc "github.com/justgold/justgold-backend/internal/auth"
	category "github.com/justgold/justgold-backend/internal/categories"
	"github.com/justgold/justgold-backend/internal/media"
	"github.com/justgold/justgold-backend/internal/orders"
	product "github.com/justgold/justgold-backend/internal/products"
	"github.com/justgold/justgold-backend/internal/users"
	"github.com/justgold/justgold-backend/pkg/cache"
	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/db"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/justgold/justgold-backend/pkg/metrics"
	"github.com/justgold/justgold-backend/pkg/migrate"
	"github.com/justgold/justgold-backend/pkg/storage/cloudinary"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// A broken cache only disables the listing optimization, never the API.
	cacheClient := cache.New(context.Background(), cfg.Redis, logg)
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cache", err)
		}
	}()

	mediaStore, err := cloudinary.NewClient(context.Background(), cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap media store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	listingMetrics := metrics.NewListingCacheMetrics(registry)

	resolver := media.NewResolver(cfg.Media.BaseURL)
	reconciler, err := media.NewReconciler(mediaStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create media reconciler", err)
		os.Exit(1)
	}

	productService, err := product.NewService(
		product.NewRepository(dbClient.DB()),
		dbClient,
		cacheClient,
		cfg.Media.ListingCacheTTL,
		resolver,
		reconciler,
		listingMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	categoryService, err := category.NewService(category.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(users.NewRepository(dbClient.DB()), cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Cache:           cacheClient,
		Uploader:        mediaStore,
		HTTPMetrics:     httpMetrics,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthService:     authService,
		ProductService:  productService,
		CategoryService: categoryService,
		OrderService:    orderService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
