package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// maxPredictBodyBytes bounds the JSON body of /api/predict
const maxPredictBodyBytes = 64 << 10

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// APIHandler handles the JSON API endpoints
type APIHandler struct {
	predictor Predictor
	summary   SummaryProvider
	store     HealthChecker
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewAPIHandler creates a new API handler. store may be nil when the
// dataset is read from a file.
func NewAPIHandler(
	predictor Predictor,
	summary SummaryProvider,
	store HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *APIHandler {
	return &APIHandler{
		predictor: predictor,
		summary:   summary,
		store:     store,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
}

// GetSummary handles GET /api/summary
func (h *APIHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.summary.Summary(), http.StatusOK)
}

// GetOptions handles GET /api/options
func (h *APIHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.predictor.Options(), http.StatusOK)
}

// predictRequest is the /api/predict body. Weather readings may be sent as
// JSON numbers or as strings.
type predictRequest struct {
	DepartureDate      string     `json:"tanggal_penerbangan"`
	Airline            string     `json:"maskapai"`
	Origin             string     `json:"asal"`
	Destination        string     `json:"tujuan"`
	WeatherDescription string     `json:"deskripsi_cuaca"`
	Temperature        jsonScalar `json:"suhu"`
	Pressure           jsonScalar `json:"tekanan"`
	WindSpeed          jsonScalar `json:"kecepatan_angin"`
	DepartureTime      string     `json:"jam_keberangkatan"`
}

func (p predictRequest) form() models.PredictionForm {
	return models.PredictionForm{
		DepartureDate:      p.DepartureDate,
		Airline:            p.Airline,
		Origin:             p.Origin,
		Destination:        p.Destination,
		WeatherDescription: p.WeatherDescription,
		Temperature:        string(p.Temperature),
		Pressure:           string(p.Pressure),
		WindSpeed:          string(p.WindSpeed),
		DepartureTime:      p.DepartureTime,
	}
}

// jsonScalar holds a JSON string or number as its text
type jsonScalar string

func (s *jsonScalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = jsonScalar(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*s = jsonScalar(n.String())
	return nil
}

// Predict handles POST /api/predict
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req predictRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/predict")
		h.sendError(w, ErrorResponse{
			Message: "invalid JSON body: " + err.Error(),
		}, http.StatusBadRequest)
		return
	}

	output, err := safePredict(ctx, h.predictor, req.form())
	if err != nil {
		pe, ok := models.AsPredictionError(err)
		if !ok {
			pe = models.NewInferenceFailure(err)
		}

		status := http.StatusUnprocessableEntity
		if pe.Kind == models.KindInferenceFailure {
			status = http.StatusInternalServerError
		}
		h.metrics.RecordAPIError(string(pe.Kind), "/api/predict")
		h.sendError(w, ErrorResponse{
			Message: pe.Message,
			Kind:    string(pe.Kind),
			Field:   pe.Field,
		}, status)
		return
	}

	h.sendJSON(w, output, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.store != nil {
		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Dataset store unreachable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "unhealthy"
			status["error"] = err.Error()
			h.sendJSON(w, status, http.StatusServiceUnavailable)
			return
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError fills in the status fields of resp and sends it
func (h *APIHandler) sendError(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	resp.Error = http.StatusText(statusCode)
	resp.Code = statusCode
	h.sendJSON(w, resp, statusCode)
}

// RegisterRoutes registers all JSON API routes
func (h *APIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/options", h.GetOptions).Methods("GET")
	router.HandleFunc("/api/predict", h.Predict).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
