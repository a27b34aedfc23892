// Command docfmt-server serves the formatting API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tsawler/docfmt/api"
	"github.com/tsawler/docfmt/api/handler"
	"github.com/tsawler/docfmt/config"
	"github.com/tsawler/docfmt/internal/logging"
	"github.com/tsawler/docfmt/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	logger := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	logger.Info("Starting docfmt server...")

	svc, cleanup, err := services.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}
	defer cleanup()

	h := handler.NewFormattingHandler(svc, cfg.Server.MaxUploadSize, logger)
	router := api.SetupRouter(h, logger)
	router.MaxMultipartMemory = cfg.Server.MaxUploadSize

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server is listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
