package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/routes"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/authz"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/checkout"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/notify"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/promotions"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/auth/session"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/metrics"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/migrate"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/redis"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	stockRepo := stock.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	promoRepo := promotions.NewRepository(dbClient.DB())

	ledger, err := stock.NewLedger(stockRepo, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock ledger", err)
		os.Exit(1)
	}

	stockService, err := stock.NewService(dbClient, stockRepo, ledger)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.Deps{
		Tx:      dbClient,
		Repo:    orderRepo,
		Stock:   stockRepo,
		Ledger:  ledger,
		Logger:  logg,
		Metrics: orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.Deps{
		Tx:         dbClient,
		Orders:     orderRepo,
		Promotions: promoRepo,
		Ledger:     ledger,
		Mailer:     notify.NewLogMailer(logg),
		Logger:     logg,
		Metrics:    orderMetrics,
		Config:     cfg.Checkout,
		Now:        time.Now,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	authorizer, err := authz.NewCachedAuthorizer(authz.NewRoleAuthorizer(dbClient.DB()), cfg.Authz, time.Now)
	if err != nil {
		logg.Error(context.Background(), "failed to create authorizer", err)
		os.Exit(1)
	}

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
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Sessions:   sessionManager,
			Authorizer: authorizer,
			Orders:     orderService,
			Stock:      stockService,
			Checkout:   checkoutService,
			Registry:   registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		err = multierr.Append(err, redisClient.Close())
		err = multierr.Append(err, dbClient.Close())
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
