package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/internal/repository"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// IngestionService loads flight CSV files into PostgreSQL
type IngestionService struct {
	repo    repository.FlightRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	DeletedRecords    int64
	Duration          time.Duration
	Errors            []string
}

// IngestionOptions controls a single ingestion run
type IngestionOptions struct {
	BatchSize int
	// Replace deletes existing rows before loading
	Replace bool
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.FlightRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ResolveFiles expands path into the CSV files to ingest. A directory yields
// every *.csv file inside it, sorted by name.
func ResolveFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv files found in %s", path)
	}
	return files, nil
}

// IngestFiles ingests every file, continuing past files that fail
func (s *IngestionService) IngestFiles(ctx context.Context, files []string, opts IngestionOptions) (*IngestionResult, error) {
	startTime := time.Now()

	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"file_count": len(files),
		"batch_size": opts.BatchSize,
		"replace":    opts.Replace,
		"stage":      "INITIALIZATION",
	})

	result := &IngestionResult{
		TotalFiles: len(files),
		Errors:     make([]string, 0),
	}

	if opts.Replace {
		deleted, err := s.repo.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clear existing records: %w", err)
		}
		result.DeletedRecords = deleted
		s.logger.Info(ctx, "[INGEST_REPLACE] Existing records deleted", logging.Fields{
			"deleted": deleted,
			"stage":   "PREPARATION",
		})
	}

	for _, filePath := range files {
		fileResult, err := s.ingestFile(ctx, filePath, opts.BatchSize)
		if fileResult != nil {
			result.TotalRecords += fileResult.TotalRecords
			result.SuccessfulRecords += fileResult.SuccessfulRecords
			result.FailedRecords += fileResult.FailedRecords
		}
		if err != nil {
			errMsg := fmt.Sprintf("failed to ingest %s: %v", filePath, err)
			result.Errors = append(result.Errors, errMsg)
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          filePath,
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// ingestFile streams one CSV file into the repository in batches.
// On error the partial counts are still returned.
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, batchSize int) (*FileIngestionResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result := &FileIngestionResult{}
	batch := make([]*models.FlightRecord, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.CreateRecordsBatch(ctx, batch); err != nil {
			result.FailedRecords += len(batch)
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
		batch = batch[:0]
		return nil
	}

	err = repository.ReadFlightCSV(file, func(line int, row models.RawFlightRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.TotalRecords++

		record, err := row.ToRecord()
		if err != nil {
			result.FailedRecords++
			s.metrics.RecordIngestionError("conversion_error")
			s.logger.Debug(ctx, "[INGEST_ROW_SKIPPED] Invalid row", logging.Fields{
				"file_path": filePath,
				"line":      line,
				"error":     err.Error(),
			})
			return nil
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	if err := flush(); err != nil {
		return result, err
	}

	return result, nil
}
