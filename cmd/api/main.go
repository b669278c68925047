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

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:    cfg.App.LogLevel,
		Encoding: cfg.App.LogEncoding,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck
	zlog = zlog.With(zap.String("service", cfg.App.ServiceName), zap.String("env", cfg.App.Environment))
	zap.ReplaceGlobals(zlog)

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to start application", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	gracefulShutdown(server, app, cfg.Server.ShutdownTimeout, zlog)
}

// gracefulShutdown waits for SIGINT or SIGTERM, drains in-flight requests and
// then releases the store and event broker.
func gracefulShutdown(server *http.Server, app *bootstrap.App, timeout time.Duration, zlog *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	if err := app.Close(); err != nil {
		zlog.Error("failed to release dependencies", zap.Error(err))
	}

	zlog.Info("server stopped gracefully")
}
