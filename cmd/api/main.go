package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smoralesc/verdeo-backend/api/routes"
	"github.com/smoralesc/verdeo-backend/internal/checkout"
	"github.com/smoralesc/verdeo-backend/internal/coupons"
	"github.com/smoralesc/verdeo-backend/internal/orders"
	"github.com/smoralesc/verdeo-backend/internal/products"
	"github.com/smoralesc/verdeo-backend/internal/shipping"
	"github.com/smoralesc/verdeo-backend/internal/users"
	mpwebhook "github.com/smoralesc/verdeo-backend/internal/webhooks/mercadopago"
	"github.com/smoralesc/verdeo-backend/pkg/config"
	"github.com/smoralesc/verdeo-backend/pkg/db"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
	"github.com/smoralesc/verdeo-backend/pkg/mercadopago"
	"github.com/smoralesc/verdeo-backend/pkg/metrics"
	"github.com/smoralesc/verdeo-backend/pkg/migrate"
	"github.com/smoralesc/verdeo-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mpClient, err := mercadopago.NewClient(context.Background(), cfg.MercadoPago, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mercado pago client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	usersRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	couponRepo := coupons.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	productsSvc, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	couponsSvc, err := coupons.NewService(couponRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(dbClient, orderRepo, productRepo, couponRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	quoter, err := shipping.NewQuoter(cfg.Shipping)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping quoter", err)
		os.Exit(1)
	}

	checkoutSvc, err := checkout.NewService(
		dbClient,
		orderRepo,
		productRepo,
		couponsSvc,
		quoter,
		mpClient,
		checkout.URLsFromSiteBase(cfg.MercadoPago.SiteBaseURL),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookGuard, err := mpwebhook.NewIdempotencyGuard(redisClient, cfg.MercadoPago.WebhookDedupTTL, "mp-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	webhookSvc, err := mpwebhook.NewService(mpwebhook.ServiceParams{
		Payments: mpClient,
		Orders:   ordersSvc,
		Guard:    webhookGuard,
		Metrics:  paymentMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			usersRepo,
			productsSvc,
			couponsSvc,
			checkoutSvc,
			ordersSvc,
			webhookSvc,
			metricsHandler,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
