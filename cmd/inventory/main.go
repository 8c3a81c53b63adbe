package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rl1809/inventory/internal/adapter/handler"
	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/config"
	"github.com/rl1809/inventory/internal/core/service"
	"github.com/rl1809/inventory/internal/observability"
	"github.com/rl1809/inventory/internal/port"
)

const defaultConfigFile = "inventory.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (default "+defaultConfigFile+" when present)")
	flag.Parse()

	path := *configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage", "error", err)
		}
	}()
	logger.Info("storage ready", "backend", backend.Name)

	metrics := observability.NewMetrics(backend.Name)
	inventory := service.NewInventoryService(backend.Repository).WithMetrics(metrics)

	report, err := inventory.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("no permission to read the inventory: %w", err)
		}
		return err
	}
	logger.Info("inventory loaded", "products", report.Loaded, "corrupted", report.Corrupted, "duplicates", report.Duplicates)
	if warning := loadWarning(report); warning != "" {
		fmt.Println(warning)
	}

	console := handler.NewConsole(inventory, os.Stdin, os.Stdout, logger).WithAutosave(cfg.Autosave)
	runErr := console.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("interrupted by signal")
	}

	if cfg.Metrics.File != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Warn("failed to write metrics textfile", "path", cfg.Metrics.File, "error", err)
		}
	}
	return runErr
}

// loadWarning tells the user how many stored entries could not be read.
// Duplicate ids are dropped silently and only logged.
func loadWarning(report port.LoadReport) string {
	if report.Corrupted == 0 {
		return ""
	}
	return fmt.Sprintf("Warning: %d corrupted line(s) ignored.", report.Corrupted)
}
