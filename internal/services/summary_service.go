package services

import (
	"context"
	"fmt"
	"time"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/internal/repository"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// SummaryService computes the dataset counts shown on the home page
type SummaryService struct {
	source  repository.FlightSource
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	summary models.DatasetSummary
}

// NewSummaryService creates a new summary service
func NewSummaryService(source repository.FlightSource, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *SummaryService {
	return &SummaryService{
		source:  source,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load reads the dataset once and caches its summary.
// It must finish before Summary is called from request handlers.
func (s *SummaryService) Load(ctx context.Context) error {
	startTime := time.Now()

	s.logger.Info(ctx, "[SUMMARY_LOAD_START] Loading dataset", logging.Fields{
		"source": s.source.Describe(),
		"stage":  "INITIALIZATION",
	})

	records, err := s.source.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	s.summary = models.Summarize(records)
	s.metrics.DatasetRecords.Set(float64(s.summary.TotalFlights))

	s.logger.Info(ctx, "[SUMMARY_LOAD_COMPLETE] Dataset summary computed", logging.Fields{
		"total_flights":        s.summary.TotalFlights,
		"routes":               s.summary.Routes,
		"airlines":             s.summary.Airlines,
		"origin_airports":      s.summary.OriginAirports,
		"destination_airports": s.summary.DestinationAirports,
		"duration_seconds":     time.Since(startTime).Seconds(),
		"stage":                "COMPLETE",
	})

	return nil
}

// Summary returns the cached dataset summary
func (s *SummaryService) Summary() models.DatasetSummary {
	return s.summary
}
