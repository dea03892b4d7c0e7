package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Fund-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/config"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// Services bundles the services the router exposes.
type Services struct {
	System   *service.SystemService
	Holding  *service.HoldingService
	Record   *service.RecordService
	NAV      *service.NAVService
	Analysis *service.AnalysisService
	Backup   *service.BackupService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(services.System)
	holdingHandler := handlers.NewHoldingHandler(services.Holding)
	recordHandler := handlers.NewRecordHandler(services.Record)
	navHandler := handlers.NewNAVHandler(services.NAV)
	analysisHandler := handlers.NewAnalysisHandler(services.Analysis)
	backupHandler := handlers.NewBackupHandler(services.Backup)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/holding", func(r chi.Router) {
			r.Get("/", holdingHandler.Holdings)
			r.Post("/", holdingHandler.CreateHolding)

			r.Route("/{code}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateFundCodeMiddleware)
				r.Get("/", holdingHandler.GetHolding)
				r.Put("/", holdingHandler.UpdateHolding)
				r.Delete("/", holdingHandler.DeleteHolding)

				r.Get("/record", recordHandler.RecordsPerHolding)
				r.Post("/record", recordHandler.CreateRecord)
				r.Post("/record/confirm", recordHandler.ConfirmHoldingRecords)
			})
		})

		r.Route("/record/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", recordHandler.GetRecord)
			r.Delete("/", recordHandler.DeleteRecord)
			r.Post("/confirm", recordHandler.ConfirmRecord)
		})

		r.Route("/nav", func(r chi.Router) {
			r.Get("/quote", navHandler.Quotes)

			r.Route("/{code}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateFundCodeMiddleware)
				r.Get("/", navHandler.NAVHistory)
				r.Put("/", navHandler.UpsertNAV)
			})
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/snapshot", analysisHandler.Snapshots)
			r.Get("/snapshot/{date}", analysisHandler.Snapshot)
			r.Get("/holding", analysisHandler.Holdings)
			r.Get("/tag", analysisHandler.Tags)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)
			r.Get("/export", backupHandler.Export)
			r.Post("/import", backupHandler.Import)
		})
	})

	return r
}
