package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Predictor runs predictions and exposes the form options
type Predictor interface {
	Predict(ctx context.Context, form models.PredictionForm) (*models.PredictionOutput, error)
	Options() models.FormOptions
}

// SummaryProvider exposes the dataset summary
type SummaryProvider interface {
	Summary() models.DatasetSummary
}

// PageHandler serves the HTML home and prediction pages
type PageHandler struct {
	predictor Predictor
	summary   SummaryProvider
	templates *template.Template
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

type homePage struct {
	Info models.DatasetSummary
}

type predictionPage struct {
	Options models.FormOptions
	Form    models.PredictionForm
	Result  string
	IsError bool
	Debug   *models.DebugInfo
}

// NewPageHandler parses the embedded templates and creates a page handler
func NewPageHandler(
	predictor Predictor,
	summary SummaryProvider,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &PageHandler{
		predictor: predictor,
		summary:   summary,
		templates: tmpl,
		logger:    logger,
		metrics:   metricsCollector,
	}, nil
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", homePage{Info: h.summary.Summary()})
}

// PredictionForm handles GET /prediksi
func (h *PageHandler) PredictionForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "prediksi.html", predictionPage{Options: h.predictor.Options()})
}

// SubmitPrediction handles POST /prediksi. The page is always rendered with
// status 200, carrying either the prediction or the error message.
func (h *PageHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := predictionPage{Options: h.predictor.Options()}

	if err := r.ParseForm(); err != nil {
		h.metrics.RecordAPIError("bad_form", routeTemplate(r))
		page.Result = models.GenericErrorMessage(err)
		page.IsError = true
		h.render(w, r, "prediksi.html", page)
		return
	}

	page.Form = formFromRequest(r)

	output, err := safePredict(ctx, h.predictor, page.Form)
	if err != nil {
		page.Result = userMessage(err)
		page.IsError = true
		h.render(w, r, "prediksi.html", page)
		return
	}

	page.Result = output.Message
	page.Debug = &output.Debug
	h.render(w, r, "prediksi.html", page)
}

// formFromRequest reads the prediction fields from a parsed form
func formFromRequest(r *http.Request) models.PredictionForm {
	return models.PredictionForm{
		DepartureDate:      r.PostFormValue(models.FieldDepartureDate),
		Airline:            r.PostFormValue(models.FieldAirline),
		Origin:             r.PostFormValue(models.FieldOrigin),
		Destination:        r.PostFormValue(models.FieldDestination),
		WeatherDescription: r.PostFormValue(models.FieldWeatherDescription),
		Temperature:        r.PostFormValue(models.FieldTemperature),
		Pressure:           r.PostFormValue(models.FieldPressure),
		WindSpeed:          r.PostFormValue(models.FieldWindSpeed),
		DepartureTime:      r.PostFormValue(models.FieldDepartureTime),
	}
}

// safePredict converts a panic inside the predictor into an error
func safePredict(ctx context.Context, p Predictor, form models.PredictionForm) (out *models.PredictionOutput, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			out = nil
			err = fmt.Errorf("%v", rvr)
		}
	}()
	return p.Predict(ctx, form)
}

// userMessage returns the text shown to the user for a failed prediction
func userMessage(err error) string {
	if pe, ok := models.AsPredictionError(err); ok {
		return pe.Message
	}
	return models.GenericErrorMessage(err)
}

// render executes a template into a buffer so a template failure can still
// produce a clean 500
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error(r.Context(), "[PAGE_RENDER_ERROR] Failed to render page", logging.Fields{
			"template": name,
		}, err)
		h.metrics.RecordAPIError("render_error", routeTemplate(r))
		http.Error(w, models.GenericErrorMessage(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// RegisterRoutes registers the HTML pages; /predict is an alias of /prediksi
func (h *PageHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Home).Methods("GET")
	for _, path := range []string{"/prediksi", "/predict"} {
		router.HandleFunc(path, h.PredictionForm).Methods("GET")
		router.HandleFunc(path, h.SubmitPrediction).Methods("POST")
	}
}
