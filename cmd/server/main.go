package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/internal/config"
	"github.com/mamadbah2/fishtrace/internal/repository"
	"github.com/mamadbah2/fishtrace/internal/repository/firestore"
	"github.com/mamadbah2/fishtrace/internal/repository/memory"
	"github.com/mamadbah2/fishtrace/internal/repository/mongodb"
	"github.com/mamadbah2/fishtrace/internal/repository/sheets"
	"github.com/mamadbah2/fishtrace/internal/scheduler"
	"github.com/mamadbah2/fishtrace/internal/server/handlers"
	"github.com/mamadbah2/fishtrace/internal/server/router"
	adminsvc "github.com/mamadbah2/fishtrace/internal/service/admin"
	authsvc "github.com/mamadbah2/fishtrace/internal/service/auth"
	"github.com/mamadbah2/fishtrace/internal/service/availability"
	marketsvc "github.com/mamadbah2/fishtrace/internal/service/marketplace"
	reportingsvc "github.com/mamadbah2/fishtrace/internal/service/reporting"
	vendorsvc "github.com/mamadbah2/fishtrace/internal/service/vendors"
	"github.com/mamadbah2/fishtrace/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	engine := availability.NewEngine(cfg.Presence.Threshold)

	sessions := authsvc.NewSessionManager(cfg.Auth.SessionTTL, time.Now)
	authService := authsvc.NewService(cfg.Auth, store, sessions, baseLogger)
	marketService := marketsvc.NewService(store, store, store, engine, time.Now, baseLogger)
	vendorService := vendorsvc.NewService(store, store, store, store, engine, time.Now, baseLogger)
	adminService := adminsvc.NewService(store, authService, engine, time.Now, baseLogger)

	var reportingService *reportingsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger)
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			baseLogger.Fatal("failed to load timezone", zap.Error(err))
		}
		reportingService = reportingsvc.NewService(sheetsRepo, store, engine, cfg.Sheets.StockRange, loc, time.Now, baseLogger)
	} else {
		baseLogger.Warn("google sheets not configured, stock reports disabled")
	}

	var exporter scheduler.StockExporter
	var reportHandlerExporter handlers.StockExporter
	if reportingService != nil {
		exporter = reportingService
		reportHandlerExporter = reportingService
	}

	h := router.Handlers{
		Buyer:  handlers.NewBuyerHandler(marketService, baseLogger),
		Auth:   handlers.NewAuthHandler(authService, baseLogger),
		Vendor: handlers.NewVendorHandler(vendorService, baseLogger),
		Admin:  handlers.NewAdminHandler(adminService, reportHandlerExporter, baseLogger),
		Device: handlers.NewDeviceHandler(vendorService, baseLogger),
		Health: handlers.NewHealthHandler(store, baseLogger),
	}
	ginEngine := router.New(h, authService, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, vendorService, sessions, exporter, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsPath)
		if err != nil {
			return nil, err
		}
		return firestore.NewRepository(client, log), nil
	case config.BackendMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
