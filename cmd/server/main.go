package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flight-delay-predictor/internal/config"
	"flight-delay-predictor/internal/handlers"
	"flight-delay-predictor/internal/inference"
	"flight-delay-predictor/internal/repository"
	"flight-delay-predictor/internal/services"
	"flight-delay-predictor/pkg/database"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLoggerWithFormat("flight-delay-api", version, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting flight delay prediction server", logging.Fields{
		"version":        version,
		"server_host":    cfg.Server.Host,
		"server_port":    cfg.Server.Port,
		"dataset_source": cfg.Dataset.Source,
		"bundle_path":    cfg.Model.BundlePath,
	})

	metricsCollector := metrics.NewCollector("flight_delay")

	// Dataset source
	var (
		source repository.FlightSource
		store  handlers.HealthChecker
	)
	switch cfg.Dataset.Source {
	case config.DatasetSourcePostgres:
		db, err := database.NewPostgresDB(cfg.Database.Postgres(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		repo := repository.NewFlightRepository(db, logger, metricsCollector)
		source, store = repo, repo
	default:
		source = repository.NewCSVSource(cfg.Dataset.Path, logger, metricsCollector)
	}

	summaryService := services.NewSummaryService(source, logger, metricsCollector)
	if err := summaryService.Load(ctx); err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load dataset", logging.Fields{
			"source": source.Describe(),
		}, err)
	}

	// Model bundle and duration table
	bundle, err := inference.LoadBundleFile(cfg.Model.BundlePath)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load model bundle", logging.Fields{
			"bundle_path": cfg.Model.BundlePath,
		}, err)
	}

	durations, err := cfg.DurationTable()
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Invalid route table", logging.Fields{}, err)
	}

	predictionService := services.NewPredictionService(bundle.Model, bundle.Encoders, durations, logger, metricsCollector)

	summary := summaryService.Summary()
	logger.Info(ctx, "[STARTUP_READY] Model and dataset loaded", logging.Fields{
		"dataset_records":  summary.TotalFlights,
		"model_type":       predictionService.ModelName(),
		"supported_routes": predictionService.SupportedRoutes(),
	})

	// Handlers
	pageHandler, err := handlers.NewPageHandler(predictionService, summaryService, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to build page handler", logging.Fields{}, err)
	}
	apiHandler := handlers.NewAPIHandler(predictionService, summaryService, store, logger, metricsCollector)
	middleware := handlers.NewMiddleware(logger, metricsCollector)

	router := handlers.NewRouter(pageHandler, apiHandler, middleware, promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{
		"timeout": cfg.Server.ShutdownTimeout.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
