package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	perchhttp "github.com/perchlabs/perch/internal/adapter/http"
	"github.com/perchlabs/perch/internal/adapter/otel"
	"github.com/perchlabs/perch/internal/config"
	"github.com/perchlabs/perch/internal/dataservice"
	"github.com/perchlabs/perch/internal/logger"
	"github.com/perchlabs/perch/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	log.Info("config loaded",
		"port", cfg.Server.Port,
		"demo_mode", cfg.DemoMode,
		"operator_url", cfg.Operator.BaseURL,
		"metrics_url", cfg.Metrics.BaseURL,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := otel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Data service ---
	svc, err := dataservice.New(*cfg, log)
	if err != nil {
		return fmt.Errorf("data service: %w", err)
	}
	log.Info("data service ready", "mode", svc.Mode())

	// --- HTTP ---
	handlers := perchhttp.NewHandlers(svc, log)

	r := chi.NewRouter()
	r.Use(perchhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(perchhttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(perchhttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	perchhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", addr, "mode", svc.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
		}
	}()

	<-done
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
