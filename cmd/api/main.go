package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/brooklynnepley/brookskitchen-backend/api/routes"
	"github.com/brooklynnepley/brookskitchen-backend/internal/cart"
	"github.com/brooklynnepley/brookskitchen-backend/internal/catalog"
	"github.com/brooklynnepley/brookskitchen-backend/internal/checkout"
	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/config"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/db"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/metrics"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/migrate"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/redis"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/stripe"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	var payments *stripe.Client
	if strings.TrimSpace(cfg.Stripe.APIKey) != "" {
		payments, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe api key not set, prepaid checkout disabled")
	}

	relayClient, err := formrelay.NewClient(cfg.Relay.Endpoint, formrelay.WithTimeout(cfg.Relay.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create form relay client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(redisClient, cfg.Checkout.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartStore, catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	notifyService, err := notify.NewService(relayClient, notify.EmailConfig{
		OwnerEmail: cfg.Relay.OwnerEmail,
		OwnerName:  cfg.Relay.OwnerName,
		OwnerPhone: cfg.Relay.OwnerPhone,
		SiteHost:   siteHost(cfg.Checkout.SiteURL),
	}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	pendingStore, err := checkout.NewPendingStore(redisClient, cfg.Checkout.PendingOrderTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create pending order store", err)
		os.Exit(1)
	}

	var checkoutService checkout.Service
	if payments != nil {
		checkoutService, err = checkout.NewService(cartStore, payments, notifyService, pendingStore, cfg.Checkout, logg)
	} else {
		checkoutService, err = checkout.NewService(cartStore, nil, notifyService, pendingStore, cfg.Checkout, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Registry:    registry,
			HTTPMetrics: httpMetrics,
			Catalog:     catalogService,
			Cart:        cartService,
			Checkout:    checkoutService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)
		if serveErr := <-errCh; serveErr != nil && serveErr != http.ErrServerClosed {
			shutdownErr = multierr.Append(shutdownErr, serveErr)
		}
		if shutdownErr != nil {
			logg.Error(ctx, "api server shutdown incomplete", shutdownErr)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

// siteHost strips the storefront URL down to its bare host for email copy.
func siteHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(raw, "https://")
	}
	return u.Host
}
