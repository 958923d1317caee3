package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jusunglee/mtr-progress/internal/config"
	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/internal/repl"
	"github.com/jusunglee/mtr-progress/pkg/mtr"
)

func main() {
	var (
		configPath = flag.String("config", "config.yml", "Config file")
		mapURL     = flag.String("url", "", "System map URL or file (overrides config)")
		dumpPath   = flag.String("dump", "", "Path for the map data dump (overrides config)")
		statePath  = flag.String("save", "", "Visited stations save path (overrides config)")
		backend    = flag.String("backend", "", "Save backend: json or sqlite (overrides config)")
		logLevel   = flag.String("log-level", "", "Log level (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	override(&cfg.Source.URL, *mapURL)
	override(&cfg.Source.DumpPath, *dumpPath)
	override(&cfg.State.Path, *statePath)
	override(&cfg.State.Backend, *backend)
	override(&cfg.Log.Level, *logLevel)
	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Error("Invalid log level", "error", err)
		os.Exit(1)
	}
	logger := logging.NewStructuredLogger(os.Stderr, level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientConfig := mtr.ConfigFromApp(*cfg)
	clientConfig.Logger = logger

	client, err := mtr.NewLocal(ctx, clientConfig)
	if err != nil {
		logger.Error("Failed to load system map", "source", cfg.Source.URL, "error", err)
		os.Exit(1)
	}

	total, err := client.GetTotalStationCount()
	if err != nil {
		logger.Error("Failed to count stations", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Total amount of stations: %d\n", total)

	// Reads from stdin block, so a signal ends the session without waiting
	// for the next line.
	done := make(chan error, 1)
	go func() {
		done <- repl.NewSession(client, os.Stdin, os.Stdout, logger).Run(ctx)
	}()
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.LogError(logger, "input failed", err)
	}

	if err := client.Close(); err != nil {
		logging.LogError(logger, "failed to save visited stations", err)
		os.Exit(1)
	}
	fmt.Println("\nExiting the program.")
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
