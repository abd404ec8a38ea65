package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"flight-delay-predictor/internal/config"
	"flight-delay-predictor/internal/repository"
	"flight-delay-predictor/internal/services"
	"flight-delay-predictor/pkg/database"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataPath := flag.String("data", "", "CSV file or directory of CSV files (default: dataset.path)")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert in each batch")
	replace := flag.Bool("replace", false, "Delete existing flight records before loading")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *dataPath == "" {
		*dataPath = cfg.Dataset.Path
	}

	logger := logging.NewStructuredLoggerWithFormat("flight-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting flight data ingestion", logging.Fields{
		"version":    "1.0.0",
		"data":       *dataPath,
		"batch_size": *batchSize,
		"replace":    *replace,
	})

	files, err := services.ResolveFiles(*dataPath)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] No input files", logging.Fields{
			"data": *dataPath,
		}, err)
	}

	metricsCollector := metrics.NewCollector("flight_ingester")

	db, err := database.NewPostgresDB(cfg.Database.Postgres(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	flightRepo := repository.NewFlightRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(flightRepo, logger, metricsCollector)

	result, err := ingestionService.IngestFiles(ctx, files, services.IngestionOptions{
		BatchSize: *batchSize,
		Replace:   *replace,
	})
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{}, err)
	}

	stored, err := flightRepo.CountRecords(ctx)
	if err != nil {
		logger.Error(ctx, "[INGESTER_COUNT_ERROR] Failed to count stored records", logging.Fields{}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Failed Records:     %d\n", result.FailedRecords)
	if *replace {
		fmt.Printf("Deleted Records:    %d\n", result.DeletedRecords)
	}
	fmt.Printf("Stored Records:     %d\n", stored)
	fmt.Printf("Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion finished", logging.Fields{
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"stored_records":     stored,
		"duration_seconds":   result.Duration.Seconds(),
	})

	if len(result.Errors) > 0 {
		db.Close()
		logger.Sync()
		os.Exit(2)
	}
}
