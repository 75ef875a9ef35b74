package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"carvedrock/internal/client"
	"carvedrock/internal/config"
	"carvedrock/internal/logger"
	"carvedrock/internal/web"

	"go.uber.org/zap"
)

func gracefulShutdown(webServer *web.Server, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := webServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := webServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, "catalog-web")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	products, err := client.NewProductClient(cfg.Web.APIBaseURL, cfg.Web.APITimeout, log)
	if err != nil {
		log.Fatal("Failed to create API client", zap.Error(err))
	}

	log.Info("Starting catalog web front-end",
		zap.String("port", cfg.Web.Port),
		zap.String("api", cfg.Web.APIBaseURL),
	)

	srv := web.NewServer(cfg, log, products)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
