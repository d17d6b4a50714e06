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

	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/anonto42/yatube/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.L().Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := config.Migrate(db.SQL); err != nil {
		logger.L().Fatal("failed to migrate", zap.Error(err))
	}

	pageCache, closeCache, err := router.NewCache(cfg)
	if err != nil {
		logger.L().Fatal("failed to initialize page cache", zap.Error(err))
	}
	defer closeCache()

	storage, err := router.NewStorage(cfg, db)
	if err != nil {
		logger.L().Fatal("failed to initialize media storage", zap.Error(err))
	}

	deps := router.Deps{DB: db.SQL, Cache: pageCache, Storage: storage}

	// Initialize Firebase
	ctx := context.Background()
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.L().Fatal("failed to initialize firebase", zap.Error(err))
		}
		deps.Firebase = firebaseApp.AuthClient
	}

	e, err := router.New(cfg, deps)
	if err != nil {
		logger.L().Fatal("failed to build server", zap.Error(err))
	}

	// Start server
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
