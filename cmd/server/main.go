package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/north212wangbo/portfolio-gains/internal/api"
	"github.com/north212wangbo/portfolio-gains/internal/config"
	"github.com/north212wangbo/portfolio-gains/internal/database"
	"github.com/north212wangbo/portfolio-gains/internal/ibkr"
	"github.com/north212wangbo/portfolio-gains/internal/logging"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/price"
	"github.com/north212wangbo/portfolio-gains/internal/repository"
	"github.com/north212wangbo/portfolio-gains/internal/scheduler"
	"github.com/north212wangbo/portfolio-gains/internal/service"
	"github.com/north212wangbo/portfolio-gains/internal/version"
	"github.com/north212wangbo/portfolio-gains/internal/yahoo"
)

const snapshotTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	zlog.Logger = log

	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().
		Str("path", cfg.Database.Path).
		Str("version", version.Version).
		Msg("Connected to database")

	m := metrics.New()

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	provider := newPriceProvider(cfg.Price, m)

	// Create services
	systemService := service.NewSystemService(db)
	transactionService := service.NewTransactionService(transactionRepo, m, log)
	reportService := service.NewReportService(transactionRepo, provider, cfg.Price.MaxConcurrency, m, log)
	snapshotService := service.NewSnapshotService(reportService, snapshotRepo, log)
	brokerService := service.NewBrokerService(
		ibkr.NewClient(nil, cfg.IBKR.BaseURL),
		cfg.IBKR.Token,
		cfg.IBKR.QueryID,
		transactionService,
		log,
	)

	var sched *scheduler.Scheduler
	if cfg.Snapshot.Schedule != "" {
		sched = scheduler.New(log)
		if err := sched.AddJob(cfg.Snapshot.Schedule, scheduler.NewSnapshotJob(snapshotService, snapshotTimeout)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Snapshot.Schedule).Msg("Invalid snapshot schedule")
		}
		sched.Start()
	}

	router := api.NewRouter(api.Services{
		System:      systemService,
		Transaction: transactionService,
		Report:      reportService,
		Snapshot:    snapshotService,
		Broker:      brokerService,
	}, cfg, m, logging.Component(log, "http"))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("priceProvider", cfg.Price.Provider).Bool("brokerImport", brokerService.Enabled()).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func newPriceProvider(cfg config.PriceConfig, m *metrics.Metrics) price.Provider {
	client := &http.Client{Timeout: cfg.Timeout}

	var next price.Provider
	switch cfg.Provider {
	case config.ProviderYahoo:
		next = yahoo.NewFinanceClient(client, "")
	default:
		next = price.NewHTTPProvider(client, cfg.URLTemplate, cfg.FieldPath, cfg.APIKey)
	}

	return price.NewGuard(cfg.Provider, next, price.GuardConfig{
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Timeout:       cfg.Timeout,
	}, m)
}

