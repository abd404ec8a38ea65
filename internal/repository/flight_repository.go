package repository

import (
	"context"
	"fmt"
	"time"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/database"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// FlightSource provides read access to the evaluation dataset
type FlightSource interface {
	ListRecords(ctx context.Context) ([]*models.FlightRecord, error)
	Describe() string
}

// FlightRepository provides data access for the flight_records table
type FlightRepository interface {
	FlightSource

	CreateRecordsBatch(ctx context.Context, records []*models.FlightRecord) error
	CountRecords(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
	HealthCheck(ctx context.Context) error
}

// flightRepository implements FlightRepository on PostgreSQL
type flightRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) FlightRepository {
	return &flightRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRecords returns every record ordered by id
func (r *flightRepository) ListRecords(ctx context.Context) ([]*models.FlightRecord, error) {
	query := `
		SELECT id, airline, route, origin_airport, destination_airport
		FROM flight_records
		ORDER BY id
	`

	var records []*models.FlightRecord
	if err := r.db.SelectContext(ctx, "list_records", &records, query); err != nil {
		return nil, fmt.Errorf("failed to list flight records: %w", err)
	}

	return records, nil
}

// CreateRecordsBatch inserts records in a single transaction
func (r *flightRepository) CreateRecordsBatch(ctx context.Context, records []*models.FlightRecord) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flight_records (airline, route, origin_airport, destination_airport)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Airline, rec.Route, rec.OriginAirport, rec.DestinationAirport); err != nil {
			r.metrics.RecordDBError("insert_error")
			return fmt.Errorf("failed to insert flight record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(records)))

	return nil
}

// CountRecords returns the number of stored records
func (r *flightRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, "count_records", &count, `SELECT COUNT(*) FROM flight_records`); err != nil {
		return 0, fmt.Errorf("failed to count flight records: %w", err)
	}
	return count, nil
}

// DeleteAll removes every record, used before a full re-ingestion
func (r *flightRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "delete_records", `DELETE FROM flight_records`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete flight records: %w", err)
	}
	return result.RowsAffected()
}

// HealthCheck verifies database connectivity
func (r *flightRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Describe names the source for logs and debug output
func (r *flightRepository) Describe() string {
	return "postgres:flight_records"
}
