package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/safar/shop-ledger/internal/api"
	"github.com/safar/shop-ledger/internal/config"
	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/logger"
	"github.com/safar/shop-ledger/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Connected to database successfully")

	if cfg.Database.MigrateOnStart {
		applied, err := database.MigrateUp(context.Background(), db, migrations.Files)
		if err != nil {
			appLogger.Fatal("Run migrations", zap.Error(err))
		}
		appLogger.Info("Migrations applied", zap.Int64s("versions", applied))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(db, appLogger, cfg.Log.IsDevelopment()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Log.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
