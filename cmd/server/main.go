package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jusunglee/mtr-progress/api/handlers"
	"github.com/jusunglee/mtr-progress/internal/config"
	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/pkg/mtr"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yml", "Config file")
		port           = flag.Int("port", 0, "Server port (overrides config)")
		updateInterval = flag.Duration("update-interval", 0, "Map refresh interval (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *updateInterval != 0 {
		cfg.Source.RefreshInterval = *updateInterval
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Error("Invalid log level", "error", err)
		os.Exit(1)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level, cfg.Log.Format)
	slog.SetDefault(logger)

	clientConfig := mtr.ConfigFromApp(*cfg)
	clientConfig.Logger = logger

	client, err := mtr.NewLocal(context.Background(), clientConfig)
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logging.LogError(logger, "failed to save visited stations", err)
		}
	}()

	r := mux.NewRouter()
	h := handlers.NewHandler(client)
	h.RegisterRoutes(r)

	r.Use(loggingMiddleware(logger))
	r.Use(corsMiddleware)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Source.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.LogError(logger, "server forced to shutdown", err)
	}

	logger.Info("Server stopped")
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			reqLogger := logger.With(slog.String("method", r.Method), slog.String("path", r.URL.Path))
			next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			logging.LogOperation(reqLogger, "http_request",
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
