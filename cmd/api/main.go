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

	"github.com/warelogic/ims-backend/api/routes"
	"github.com/warelogic/ims-backend/internal/backorders"
	"github.com/warelogic/ims-backend/internal/bins"
	"github.com/warelogic/ims-backend/internal/cyclecount"
	"github.com/warelogic/ims-backend/internal/inbound"
	"github.com/warelogic/ims-backend/internal/movement"
	"github.com/warelogic/ims-backend/internal/stockops"
	"github.com/warelogic/ims-backend/pkg/config"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/logger"
	"github.com/warelogic/ims-backend/pkg/metrics"
	"github.com/warelogic/ims-backend/pkg/migrate"
	"github.com/warelogic/ims-backend/pkg/redis"
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured; idempotency and rate limits disabled")
	}

	gormDB := dbClient.DB()
	movementRepo := movement.NewRepository(gormDB)
	stockRepo := stockops.NewStockRepository(gormDB)
	floorRepo := stockops.NewFloorStockRepository(gormDB)
	stagingRepo := stockops.NewStagingRepository(gormDB)

	stockMetrics := metrics.NewStockOpsMetrics(prometheus.DefaultRegisterer)

	// One lock table for every engine that rewrites stock records.
	locks := stockops.NewKeyLock()

	stockService, err := stockops.NewService(stockops.ServiceParams{
		Client:    dbClient,
		Stock:     stockRepo,
		Floor:     floorRepo,
		Staging:   stagingRepo,
		Movements: movementRepo,
		Logger:    logg,
		Metrics:   stockMetrics,
		Timeout:   cfg.Inventory.BatchTimeout,
		Locks:     locks,
	})
	requireService(logg, "stock operations", err)

	binService, err := bins.NewService(bins.NewRepository(gormDB), movementRepo, cfg.Inventory.LowStockRatio)
	requireService(logg, "bins", err)

	backorderService, err := backorders.NewService(backorders.ServiceParams{
		Client:      dbClient,
		Backorders:  backorders.NewRepository(gormDB),
		Allocations: backorders.NewAllocationRepository(gormDB),
		Logger:      logg,
		Metrics:     stockMetrics,
	})
	requireService(logg, "backorders", err)

	cycleCountService, err := cyclecount.NewService(cyclecount.ServiceParams{
		Client:     dbClient,
		Repo:       cyclecount.NewRepository(gormDB),
		Movements:  movementRepo,
		Locks:      locks,
		Logger:     logg,
		WindowDays: cfg.Inventory.ReportWindowDays,
	})
	requireService(logg, "cycle count", err)

	inboundService, err := inbound.NewService(inbound.ServiceParams{
		Client:            dbClient,
		Receipts:          inbound.NewRepository(gormDB),
		Stock:             stockRepo,
		Staging:           stagingRepo,
		Movements:         movementRepo,
		Backorders:        backorderService,
		Logger:            logg,
		StagingAreaPrefix: cfg.Inventory.StagingAreaPrefix,
	})
	requireService(logg, "inbound", err)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			stockService,
			binService,
			cycleCountService,
			inboundService,
			backorderService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
