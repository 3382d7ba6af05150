package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/eIIka/tour-agency/internal/stub"
	"github.com/eIIka/tour-agency/pkg/config"
	"github.com/eIIka/tour-agency/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	backend := stub.NewServer(cfg.Stub.JWTSecret, cfg.Stub.TokenTTL)
	backend.SeedDemoData()

	srv := &http.Server{
		Addr:         ":" + cfg.Stub.Port,
		Handler:      backend.Handler(),
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
		IdleTimeout:  cfg.Stub.IdleTimeout,
	}

	go func() {
		logger.Info("stub backend listening", "port", cfg.Stub.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stub.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
