package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	vectordb "github.com/ErykVaughn/vector-database"
	"github.com/ErykVaughn/vector-database/internal/config"
	"github.com/ErykVaughn/vector-database/internal/errortypes"
	"github.com/ErykVaughn/vector-database/internal/logger"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	flag.Parse()

	// Load configuration before logging so the logger honors the
	// configured level and format.
	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	slog.SetDefault(appLogger)

	appLogger.Info("Vector Database Service - Starting...")

	svc, err := vectordb.NewService(vectordb.ServiceOptions{
		Config: cfg,
		Logger: appLogger,
	})
	if err != nil {
		errortypes.LogError(appLogger, err)
		appLogger.Error("Failed to initialize service")
		os.Exit(1)
	}

	setupSignalHandler(svc, appLogger)

	// Start blocks until the HTTP server stops.
	if err := svc.Start(); err != nil {
		errortypes.LogError(appLogger, err)
		appLogger.Error("Service failed")
		os.Exit(1)
	}

	appLogger.Info("Vector Database Service - Stopped")
}

// setupSignalHandler configures graceful shutdown on SIGINT and SIGTERM.
func setupSignalHandler(svc *vectordb.Service, appLogger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		appLogger.Info("Received signal, shutting down", "signal", sig.String())

		if err := svc.Stop(); err != nil {
			errortypes.LogError(appLogger, err)
			os.Exit(1)
		}
	}()
}
