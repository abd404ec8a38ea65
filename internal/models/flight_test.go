package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRawFlightRow_ToRecord tests dataset row conversion
func TestRawFlightRow_ToRecord(t *testing.T) {
	tests := []struct {
		name        string
		row         RawFlightRow
		wantErr     bool
		wantField   string
		checkValues func(*testing.T, *FlightRecord)
	}{
		{
			name: "valid row",
			row: RawFlightRow{
				ColumnAirline:            "Garuda Indonesia",
				ColumnRoute:              "Jakarta-Padang",
				ColumnOriginAirport:      "CGK",
				ColumnDestinationAirport: "PDG",
				"Delay":                  "12",
			},
			checkValues: func(t *testing.T, rec *FlightRecord) {
				assert.Equal(t, "Garuda Indonesia", rec.Airline)
				assert.Equal(t, "Jakarta-Padang", rec.Route)
				assert.Equal(t, "CGK", rec.OriginAirport)
				assert.Equal(t, "PDG", rec.DestinationAirport)
			},
		},
		{
			name: "values are trimmed",
			row: RawFlightRow{
				ColumnAirline:            "  Lion Air ",
				ColumnRoute:              "Jakarta-Bali",
				ColumnOriginAirport:      " CGK",
				ColumnDestinationAirport: "DPS ",
			},
			checkValues: func(t *testing.T, rec *FlightRecord) {
				assert.Equal(t, "Lion Air", rec.Airline)
				assert.Equal(t, "CGK", rec.OriginAirport)
				assert.Equal(t, "DPS", rec.DestinationAirport)
			},
		},
		{
			name: "missing airline",
			row: RawFlightRow{
				ColumnRoute:              "Jakarta-Padang",
				ColumnOriginAirport:      "CGK",
				ColumnDestinationAirport: "PDG",
			},
			wantErr:   true,
			wantField: ColumnAirline,
		},
		{
			name: "blank destination",
			row: RawFlightRow{
				ColumnAirline:            "Citilink",
				ColumnRoute:              "Jakarta-Surabaya",
				ColumnOriginAirport:      "CGK",
				ColumnDestinationAirport: "   ",
			},
			wantErr:   true,
			wantField: ColumnDestinationAirport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.row.ToRecord()

			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				return
			}

			require.NoError(t, err)
			tt.checkValues(t, rec)
		})
	}
}

func TestSummarize(t *testing.T) {
	records := []*FlightRecord{
		{Airline: "Garuda Indonesia", Route: "Jakarta-Padang", OriginAirport: "CGK", DestinationAirport: "PDG"},
		{Airline: "Lion Air", Route: "Jakarta-Padang", OriginAirport: "CGK", DestinationAirport: "PDG"},
		{Airline: "Lion Air", Route: "Jakarta-Bali", OriginAirport: "CGK", DestinationAirport: "DPS"},
		{Airline: "Citilink", Route: "Jakarta-Surabaya", OriginAirport: "HLP", DestinationAirport: "SUB"},
	}

	got := Summarize(records)

	assert.Equal(t, DatasetSummary{
		TotalFlights:        4,
		Routes:              3,
		Airlines:            3,
		OriginAirports:      2,
		DestinationAirports: 3,
	}, got)
}

func TestSummarize_BlankValuesCountOnce(t *testing.T) {
	rows := []RawFlightRow{
		{ColumnAirline: "Garuda Indonesia", ColumnRoute: "Jakarta-Padang", ColumnOriginAirport: "CGK", ColumnDestinationAirport: "PDG"},
		{ColumnAirline: "Lion Air", ColumnRoute: "", ColumnOriginAirport: "CGK", ColumnDestinationAirport: " "},
		{ColumnAirline: "Citilink", ColumnOriginAirport: "HLP"},
	}

	records := make([]*FlightRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	assert.True(t, records[0].Complete())
	assert.False(t, records[1].Complete())

	assert.Equal(t, DatasetSummary{
		TotalFlights:        3,
		Routes:              2,
		Airlines:            3,
		OriginAirports:      2,
		DestinationAirports: 2,
	}, Summarize(records))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, DatasetSummary{}, Summarize(nil))
}

func TestPredictionForm_Route(t *testing.T) {
	f := PredictionForm{Origin: "Jakarta", Destination: "Makassar"}
	assert.Equal(t, "Jakarta-Makassar", f.Route())
}

func TestPredictionErrors(t *testing.T) {
	t.Run("route unsupported lists routes", func(t *testing.T) {
		err := NewRouteUnsupported("Jakarta-Medan", []string{"Jakarta-Bali", "Jakarta-Padang"})
		assert.Equal(t, KindRouteUnsupported, err.Kind)
		assert.Equal(t, FieldRoute, err.Field)
		assert.Equal(t, "⚠️ Maaf, rute Jakarta-Medan belum didukung. Rute tersedia: Jakarta-Bali, Jakarta-Padang", err.Error())
	})

	t.Run("category messages per field", func(t *testing.T) {
		assert.Equal(t, "⚠️ Maaf, maskapai Sriwijaya belum dikenali.",
			NewCategoryUnrecognized(FieldAirline, "Sriwijaya", nil).Message)
		assert.Equal(t, "⚠️ Maaf, rute Jakarta-Padang belum dikenali oleh encoder.",
			NewCategoryUnrecognized(FieldRoute, "Jakarta-Padang", nil).Message)
		assert.Equal(t, "⚠️ Maaf, deskripsi cuaca 'badai' belum dikenali.",
			NewCategoryUnrecognized(FieldWeatherDescription, "badai", nil).Message)
	})

	t.Run("inference failure unwraps cause", func(t *testing.T) {
		cause := errors.New("feature count mismatch")
		err := NewInferenceFailure(cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "⚠️ Terjadi kesalahan: feature count mismatch", err.Message)
	})

	t.Run("as prediction error through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", NewMalformedInput(FieldTemperature, "panas", nil))
		pe, ok := AsPredictionError(wrapped)
		require.True(t, ok)
		assert.Equal(t, KindMalformedInput, pe.Kind)
		assert.Equal(t, FieldTemperature, pe.Field)

		_, ok = AsPredictionError(errors.New("plain"))
		assert.False(t, ok)
	})
}

// TestValidationError tests error handling
func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   ColumnRoute,
		Value:   "",
		Message: "missing value for column Rute",
	}

	assert.Equal(t, "missing value for column Rute", err.Error())
}
