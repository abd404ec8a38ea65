package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

var requiredColumns = []string{
	models.ColumnAirline,
	models.ColumnRoute,
	models.ColumnOriginAirport,
	models.ColumnDestinationAirport,
}

// RowHandler receives each data row of a flight CSV with its 1-based line number
type RowHandler func(line int, row models.RawFlightRow) error

// ReadFlightCSV streams a flight CSV, calling fn for every data row.
// The header must contain the Maskapai, Rute, Bandara_Asal and
// Bandara_Tujuan columns; other columns are passed through untouched.
func ReadFlightCSV(r io.Reader, fn RowHandler) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("flight csv is empty")
	}
	if err != nil {
		return fmt.Errorf("failed to read csv header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	present := make(map[string]bool, len(header))
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		present[header[i]] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return fmt.Errorf("flight csv is missing column %s", col)
		}
	}

	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		row := make(models.RawFlightRow, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = fields[i]
			}
		}

		if err := fn(line, row); err != nil {
			return err
		}
	}
}

// CSVSource reads the evaluation dataset from a CSV file
type CSVSource struct {
	path    string
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCSVSource creates a dataset source backed by the CSV file at path
func NewCSVSource(path string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CSVSource {
	return &CSVSource{
		path:    path,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRecords reads every row of the file. Rows with blank required
// columns are kept with empty values and counted as incomplete.
func (s *CSVSource) ListRecords(ctx context.Context) ([]*models.FlightRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	records := make([]*models.FlightRecord, 0, 1024)
	incomplete := 0

	err = ReadFlightCSV(file, func(line int, row models.RawFlightRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := row.Record()
		if !rec.Complete() {
			incomplete++
			s.metrics.RecordIngestionError("incomplete_row")
			s.logger.Debug(ctx, "[CSV_ROW_INCOMPLETE] Dataset row has blank columns", logging.Fields{
				"path": s.path,
				"line": line,
			})
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", s.path, err)
	}

	s.logger.Info(ctx, "[CSV_LOADED] Dataset loaded", logging.Fields{
		"path":       s.path,
		"records":    len(records),
		"incomplete": incomplete,
	})

	return records, nil
}

// Describe names the source for logs and debug output
func (s *CSVSource) Describe() string {
	return "csv:" + s.path
}
