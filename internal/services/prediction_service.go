package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"flight-delay-predictor/internal/catalog"
	"flight-delay-predictor/internal/inference"
	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
	clockLayout    = "15:04"

	// DelayThresholdMinutes is the delay above which a flight is reported late
	DelayThresholdMinutes = 1.0

	// DataSourceLabel names where nominal durations come from in debug output
	DataSourceLabel = "Normal Duration Mapping"

	// maxOffsetMinutes keeps derived arrival times inside time.Duration range
	maxOffsetMinutes = 1e8

	// ordinalUnixEpoch is the proleptic Gregorian ordinal of 1970-01-01
	ordinalUnixEpoch = 719163
)

var errMissingValue = errors.New("value is required")

// PredictionService validates form input, runs the model and derives arrival times
type PredictionService struct {
	model     inference.Model
	encoders  *catalog.Encoders
	durations *catalog.DurationTable
	options   models.FormOptions
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewPredictionService creates a new prediction service. All dependencies
// are treated as read-only for the lifetime of the service.
func NewPredictionService(
	model inference.Model,
	encoders *catalog.Encoders,
	durations *catalog.DurationTable,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *PredictionService {
	for _, enc := range []*catalog.LabelEncoder{encoders.Airline, encoders.Route, encoders.Description} {
		metricsCollector.ModelCategoriesLoaded.WithLabelValues(enc.Name()).Set(float64(enc.Len()))
	}

	return &PredictionService{
		model:     model,
		encoders:  encoders,
		durations: durations,
		options:   buildFormOptions(encoders, durations),
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// ModelName returns the type name of the loaded model
func (s *PredictionService) ModelName() string {
	return s.model.Name()
}

// SupportedRoutes returns the routes with a known nominal duration
func (s *PredictionService) SupportedRoutes() []string {
	return s.durations.Routes()
}

// Options returns the dropdown contents of the prediction form
func (s *PredictionService) Options() models.FormOptions {
	return s.options
}

// buildFormOptions derives dropdown lists from the encoder classes
func buildFormOptions(encoders *catalog.Encoders, durations *catalog.DurationTable) models.FormOptions {
	routes := encoders.Route.SortedClasses()

	var origins, destinations []string
	seenOrigin := make(map[string]bool)
	seenDestination := make(map[string]bool)
	available := make([]string, 0, len(routes))

	for _, route := range routes {
		origin, destination, ok := catalog.SplitRoute(route)
		if ok {
			if !seenOrigin[origin] {
				seenOrigin[origin] = true
				origins = append(origins, origin)
			}
			if !seenDestination[destination] {
				seenDestination[destination] = true
				destinations = append(destinations, destination)
			}
		}
		if durations.Has(route) {
			available = append(available, route)
		}
	}
	sort.Strings(origins)
	sort.Strings(destinations)

	return models.FormOptions{
		Airlines:        encoders.Airline.SortedClasses(),
		Origins:         origins,
		Destinations:    destinations,
		Weather:         encoders.Description.SortedClasses(),
		AvailableRoutes: available,
	}
}

// Predict runs one prediction. Failures are returned as *models.PredictionError;
// the model is only invoked once every category has been resolved.
func (s *PredictionService) Predict(ctx context.Context, form models.PredictionForm) (*models.PredictionOutput, error) {
	output, err := s.predict(ctx, form)
	if err != nil {
		pe, ok := models.AsPredictionError(err)
		if !ok {
			pe = models.NewInferenceFailure(err)
		}
		s.metrics.RecordPrediction(string(pe.Kind))

		fields := logging.Fields{
			"kind":  string(pe.Kind),
			"field": pe.Field,
			"value": pe.Value,
			"route": form.Route(),
		}
		if pe.Kind == models.KindInferenceFailure {
			s.logger.Error(ctx, "[PREDICT_ERROR] Prediction failed", fields, pe.Err)
		} else {
			s.logger.Warn(ctx, "[PREDICT_REJECTED] Prediction input rejected", fields)
		}
		return nil, pe
	}

	s.metrics.RecordPrediction("success")
	s.metrics.PredictedDelayMinutes.Observe(output.PredictedDelayMinutes)

	s.logger.Info(ctx, "[PREDICT_SUCCESS] Prediction completed", logging.Fields{
		"airline":           form.Airline,
		"route":             output.Debug.Route,
		"predicted_delay":   output.Debug.PredictedDelay,
		"normal_arrival":    output.Debug.NormalArrival,
		"predicted_arrival": output.Debug.PredictedArrival,
	})

	return output, nil
}

func (s *PredictionService) predict(ctx context.Context, form models.PredictionForm) (*models.PredictionOutput, error) {
	input, err := s.parseForm(form)
	if err != nil {
		return nil, err
	}

	route := catalog.RouteKey(input.Origin, input.Destination)
	nominal, ok := s.durations.Duration(route)
	if !ok {
		return nil, models.NewRouteUnsupported(route, s.durations.Routes())
	}

	input.DepartureDate, err = time.Parse(dateLayout, form.DepartureDate)
	if err != nil {
		return nil, models.NewMalformedInput(models.FieldDepartureDate, form.DepartureDate, err)
	}
	if input.DepartureDate.Year() < 1 {
		return nil, models.NewMalformedInput(models.FieldDepartureDate, form.DepartureDate,
			fmt.Errorf("year %d is out of range", input.DepartureDate.Year()))
	}
	input.Departure, err = time.Parse(dateTimeLayout, form.DepartureDate+" "+form.DepartureTime)
	if err != nil {
		return nil, models.NewMalformedInput(models.FieldDepartureTime, form.DepartureTime, err)
	}

	airlineCode, err := s.encoders.Airline.Transform(input.Airline)
	if err != nil {
		return nil, models.NewCategoryUnrecognized(models.FieldAirline, input.Airline, err)
	}
	routeCode, err := s.encoders.Route.Transform(route)
	if err != nil {
		return nil, models.NewCategoryUnrecognized(models.FieldRoute, route, err)
	}
	weatherCode, err := s.encoders.Description.Transform(input.WeatherDescription)
	if err != nil {
		return nil, models.NewCategoryUnrecognized(models.FieldWeatherDescription, input.WeatherDescription, err)
	}

	ordinal := DateOrdinal(input.DepartureDate)
	row := []float64{
		float64(ordinal),
		float64(airlineCode),
		float64(routeCode),
		float64(weatherCode),
		input.Temperature,
		input.Pressure,
		input.WindSpeed,
	}

	s.logger.Debug(ctx, "[PREDICT_FEATURES] Feature vector assembled", logging.Fields{
		"route":    route,
		"features": row,
	})

	timer := s.metrics.NewTimer(s.metrics.InferenceDuration)
	predictions, err := s.model.Predict([][]float64{row})
	timer.ObserveDuration()
	if err != nil {
		return nil, models.NewInferenceFailure(err)
	}
	if len(predictions) == 0 {
		return nil, models.NewInferenceFailure(fmt.Errorf("model %s returned no predictions", s.model.Name()))
	}
	delay := predictions[0]

	normalArrival, err := AddMinutes(input.Departure, float64(nominal))
	if err != nil {
		return nil, models.NewInferenceFailure(err)
	}
	predictedArrival, err := AddMinutes(input.Departure, float64(nominal)+delay)
	if err != nil {
		return nil, models.NewInferenceFailure(err)
	}

	return &models.PredictionOutput{
		PredictedDelayMinutes: delay,
		NormalArrival:         normalArrival,
		PredictedArrival:      predictedArrival,
		Message:               FormatMessage(input.Airline, delay, predictedArrival),
		Debug: models.DebugInfo{
			Airline:            input.Airline,
			Route:              route,
			DepartureDate:      form.DepartureDate,
			DepartureTime:      form.DepartureTime,
			OriginAirport:      input.Origin,
			DestinationAirport: input.Destination,
			NominalDuration:    nominal,
			NormalArrival:      normalArrival.Format(clockLayout),
			PredictedDelay:     math.Round(delay*100) / 100,
			PredictedArrival:   predictedArrival.Format(clockLayout),
			DataSource:         DataSourceLabel,
			ModelType:          s.model.Name(),
			InputFeatures: models.InputFeatures{
				DateOrdinal:        ordinal,
				AirlineEncoded:     fmt.Sprintf("%s → %d", input.Airline, airlineCode),
				RouteEncoded:       fmt.Sprintf("%s → %d", route, routeCode),
				DescriptionEncoded: fmt.Sprintf("%s → %d", input.WeatherDescription, weatherCode),
				Temperature:        input.Temperature,
				Pressure:           input.Pressure,
				WindSpeed:          input.WindSpeed,
			},
		},
	}, nil
}

// parseForm checks required fields and parses the numeric ones.
// Date and time are parsed after the route check.
func (s *PredictionService) parseForm(form models.PredictionForm) (*models.PredictionInput, error) {
	required := []struct {
		field string
		value string
	}{
		{models.FieldDepartureDate, form.DepartureDate},
		{models.FieldAirline, form.Airline},
		{models.FieldOrigin, form.Origin},
		{models.FieldDestination, form.Destination},
		{models.FieldWeatherDescription, form.WeatherDescription},
		{models.FieldTemperature, form.Temperature},
		{models.FieldPressure, form.Pressure},
		{models.FieldWindSpeed, form.WindSpeed},
		{models.FieldDepartureTime, form.DepartureTime},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, models.NewMalformedInput(r.field, r.value, errMissingValue)
		}
	}

	input := &models.PredictionInput{
		Airline:            form.Airline,
		Origin:             form.Origin,
		Destination:        form.Destination,
		WeatherDescription: form.WeatherDescription,
	}

	numerics := []struct {
		field string
		value string
		dest  *float64
	}{
		{models.FieldTemperature, form.Temperature, &input.Temperature},
		{models.FieldPressure, form.Pressure, &input.Pressure},
		{models.FieldWindSpeed, form.WindSpeed, &input.WindSpeed},
	}
	for _, n := range numerics {
		v, err := strconv.ParseFloat(strings.TrimSpace(n.value), 64)
		if err != nil {
			return nil, models.NewMalformedInput(n.field, n.value, err)
		}
		*n.dest = v
	}

	return input, nil
}

// DateOrdinal returns the proleptic Gregorian ordinal of t's calendar date,
// where 0001-01-01 is day 1
func DateOrdinal(t time.Time) int64 {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return days + ordinalUnixEpoch
}

// AddMinutes offsets t by a fractional number of minutes, rounded to the microsecond
func AddMinutes(t time.Time, minutes float64) (time.Time, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || math.Abs(minutes) > maxOffsetMinutes {
		return time.Time{}, fmt.Errorf("minute offset %v is out of range", minutes)
	}
	micros := math.RoundToEven(minutes * 60e6)
	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

// FormatMessage renders the human readable prediction result
func FormatMessage(airline string, delay float64, predictedArrival time.Time) string {
	clock := predictedArrival.Format(clockLayout)
	if delay > DelayThresholdMinutes {
		return fmt.Sprintf("%s diprediksi mengalami keterlambatan kedatangan sekitar %d menit yaitu pukul %s",
			airline, int64(delay), clock)
	}
	return fmt.Sprintf("➡️ %s diprediksi kedatangan tepat waktu yaitu pukul %s", airline, clock)
}
