package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/config"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/logging"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database", zap.String("path", cfg.Database.Path))

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", zap.Int64s("versions", applied))
	}

	// Create services
	recordService := service.NewRecordService(db, logger)
	loader := service.NewDataLoaderService(db, cfg.Analysis.RecentWindowDays, logger)
	backupService, err := service.NewBackupService(db, cfg.Backup.Key, logger)
	if err != nil {
		logger.Fatal("failed to create backup service", zap.Error(err))
	}
	if !backupService.Configured() {
		logger.Warn("BACKUP_KEY not set, backup endpoints are disabled")
	}

	services := api.Services{
		System:   service.NewSystemService(db),
		Holding:  service.NewHoldingService(db, logger),
		Record:   recordService,
		NAV:      service.NewNAVService(db, cfg.Analysis.RecentWindowDays, logger),
		Analysis: service.NewAnalysisService(loader, logger),
		Backup:   backupService,
	}

	var scheduler *service.ConfirmationScheduler
	if cfg.Confirm.Enabled {
		scheduler, err = service.NewConfirmationScheduler(cfg.Confirm.Schedule, recordService, logger)
		if err != nil {
			logger.Fatal("failed to create confirmation scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	// Create router
	router := api.NewRouter(services, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("version", version.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited")
}
