package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/north212wangbo/portfolio-gains/internal/api/handlers"
	custommiddleware "github.com/north212wangbo/portfolio-gains/internal/api/middleware"
	"github.com/north212wangbo/portfolio-gains/internal/config"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/service"
)

// Services groups the services the router dispatches to.
type Services struct {
	System      *service.SystemService
	Transaction *service.TransactionService
	Report      *service.ReportService
	Snapshot    *service.SnapshotService
	Broker      *service.BrokerService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log, m))
	r.Use(middleware.Recoverer)

	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
			r.Get("/", transactionHandler.ListTransactions)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Put("/", transactionHandler.ReplaceTransactions)
			r.Post("/import", transactionHandler.ImportTransactions)
			r.Post("/import/ibkr", handlers.NewBrokerHandler(svc.Broker).ImportStatement)
			r.Get("/export", transactionHandler.ExportTransactions)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDMiddleware)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(svc.Report, svc.Snapshot)
			r.Get("/", reportHandler.Report)
			r.Get("/snapshots", reportHandler.Snapshots)
			r.Post("/snapshots", reportHandler.TakeSnapshot)
			r.Get("/snapshots/latest", reportHandler.LatestSnapshot)
		})
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}
