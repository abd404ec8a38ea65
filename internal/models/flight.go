package models

import (
	"fmt"
	"strings"
	"time"
)

// FlightRecord represents a single row of the evaluation dataset
type FlightRecord struct {
	ID                 int64  `json:"id,omitempty" db:"id"`
	Airline            string `json:"airline" db:"airline"`
	Route              string `json:"route" db:"route"`
	OriginAirport      string `json:"origin_airport" db:"origin_airport"`
	DestinationAirport string `json:"destination_airport" db:"destination_airport"`
}

// DatasetSummary holds the counts shown on the home page
type DatasetSummary struct {
	TotalFlights        int `json:"total_penerbangan"`
	Routes              int `json:"rute_maskapai"`
	Airlines            int `json:"nama_maskapai"`
	OriginAirports      int `json:"bandara_asal"`
	DestinationAirports int `json:"bandara_tujuan"`
}

// RawFlightRow is one CSV line keyed by header name, used during ingestion
type RawFlightRow map[string]string

// Dataset column names
const (
	ColumnAirline            = "Maskapai"
	ColumnRoute              = "Rute"
	ColumnOriginAirport      = "Bandara_Asal"
	ColumnDestinationAirport = "Bandara_Tujuan"
)

// ToRecord converts a raw CSV row to a FlightRecord.
// Every column is required and must be non-blank.
func (r RawFlightRow) ToRecord() (*FlightRecord, error) {
	get := func(col string) (string, error) {
		v := strings.TrimSpace(r[col])
		if v == "" {
			return "", &ValidationError{
				Field:   col,
				Value:   r[col],
				Message: fmt.Sprintf("missing value for column %s", col),
			}
		}
		return v, nil
	}

	airline, err := get(ColumnAirline)
	if err != nil {
		return nil, err
	}
	route, err := get(ColumnRoute)
	if err != nil {
		return nil, err
	}
	origin, err := get(ColumnOriginAirport)
	if err != nil {
		return nil, err
	}
	destination, err := get(ColumnDestinationAirport)
	if err != nil {
		return nil, err
	}

	return &FlightRecord{
		Airline:            airline,
		Route:              route,
		OriginAirport:      origin,
		DestinationAirport: destination,
	}, nil
}

// Record converts a raw CSV row without validation. Values are trimmed and
// blank cells become empty strings.
func (r RawFlightRow) Record() *FlightRecord {
	return &FlightRecord{
		Airline:            strings.TrimSpace(r[ColumnAirline]),
		Route:              strings.TrimSpace(r[ColumnRoute]),
		OriginAirport:      strings.TrimSpace(r[ColumnOriginAirport]),
		DestinationAirport: strings.TrimSpace(r[ColumnDestinationAirport]),
	}
}

// Complete reports whether every column of the record has a value
func (f *FlightRecord) Complete() bool {
	return f.Airline != "" && f.Route != "" && f.OriginAirport != "" && f.DestinationAirport != ""
}

// Summarize counts totals and distinct values over records.
// An empty value counts as one distinct value of its column.
func Summarize(records []*FlightRecord) DatasetSummary {
	routes := make(map[string]struct{})
	airlines := make(map[string]struct{})
	origins := make(map[string]struct{})
	destinations := make(map[string]struct{})

	for _, rec := range records {
		routes[rec.Route] = struct{}{}
		airlines[rec.Airline] = struct{}{}
		origins[rec.OriginAirport] = struct{}{}
		destinations[rec.DestinationAirport] = struct{}{}
	}

	return DatasetSummary{
		TotalFlights:        len(records),
		Routes:              len(routes),
		Airlines:            len(airlines),
		OriginAirports:      len(origins),
		DestinationAirports: len(destinations),
	}
}

// Form field names accepted by the prediction page
const (
	FieldDepartureDate      = "tanggal_penerbangan"
	FieldAirline            = "maskapai"
	FieldOrigin             = "asal"
	FieldDestination        = "tujuan"
	FieldWeatherDescription = "deskripsi_cuaca"
	FieldTemperature        = "suhu"
	FieldPressure           = "tekanan"
	FieldWindSpeed          = "kecepatan_angin"
	FieldDepartureTime      = "jam_keberangkatan"

	// FieldRoute names the derived origin-destination key in errors
	FieldRoute = "rute"
)

// PredictionForm carries the untrusted string values of a submission.
// Numeric, date and time fields are parsed by the prediction service.
type PredictionForm struct {
	DepartureDate      string `json:"tanggal_penerbangan"`
	Airline            string `json:"maskapai"`
	Origin             string `json:"asal"`
	Destination        string `json:"tujuan"`
	WeatherDescription string `json:"deskripsi_cuaca"`
	Temperature        string `json:"suhu"`
	Pressure           string `json:"tekanan"`
	WindSpeed          string `json:"kecepatan_angin"`
	DepartureTime      string `json:"jam_keberangkatan"`
}

// Route returns the "Origin-Destination" route key
func (f PredictionForm) Route() string {
	return f.Origin + "-" + f.Destination
}

// PredictionInput is a fully parsed submission
type PredictionInput struct {
	DepartureDate      time.Time
	Departure          time.Time
	Airline            string
	Origin             string
	Destination        string
	WeatherDescription string
	Temperature        float64
	Pressure           float64
	WindSpeed          float64
}

// InputFeatures echoes the feature vector with the encodings spelled out
type InputFeatures struct {
	DateOrdinal        int64   `json:"tanggal_ordinal"`
	AirlineEncoded     string  `json:"maskapai_encoded"`
	RouteEncoded       string  `json:"rute_encoded"`
	DescriptionEncoded string  `json:"deskripsi_encoded"`
	Temperature        float64 `json:"suhu"`
	Pressure           float64 `json:"tekanan"`
	WindSpeed          float64 `json:"kecepatan_angin"`
}

// DebugInfo is the structured payload rendered below a successful prediction
type DebugInfo struct {
	Airline            string        `json:"maskapai"`
	Route              string        `json:"rute"`
	DepartureDate      string        `json:"tanggal_penerbangan"`
	DepartureTime      string        `json:"jam_keberangkatan"`
	OriginAirport      string        `json:"bandara_asal"`
	DestinationAirport string        `json:"bandara_tujuan"`
	NominalDuration    int           `json:"durasi_normal"`
	NormalArrival      string        `json:"jadwal_kedatangan_normal"`
	PredictedDelay     float64       `json:"predicted_delay"`
	PredictedArrival   string        `json:"prediksi_waktu_tiba"`
	DataSource         string        `json:"data_source"`
	ModelType          string        `json:"model_type"`
	InputFeatures      InputFeatures `json:"input_features"`
}

// PredictionOutput is the successful result of one prediction request
type PredictionOutput struct {
	PredictedDelayMinutes float64   `json:"predicted_delay_minutes"`
	NormalArrival         time.Time `json:"normal_arrival_time"`
	PredictedArrival      time.Time `json:"predicted_arrival_time"`
	Message               string    `json:"message"`
	Debug                 DebugInfo `json:"debug"`
}

// FormOptions holds the dropdown contents of the prediction page
type FormOptions struct {
	Airlines        []string `json:"maskapai_list"`
	Origins         []string `json:"asal_list"`
	Destinations    []string `json:"tujuan_list"`
	Weather         []string `json:"cuaca_list"`
	AvailableRoutes []string `json:"available_routes"`
}
