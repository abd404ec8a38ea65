package handlers

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// Middleware contains the HTTP middleware shared by every route
type Middleware struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMiddleware creates a new middleware set
func NewMiddleware(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Middleware {
	return &Middleware{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestID reuses an incoming X-Request-ID or generates a new one and
// stores it in the request context for logging
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// Logger logs every request and records request metrics by route template
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			duration := time.Since(start)
			endpoint := routeTemplate(r)

			m.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
			m.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status))

			m.logger.Debug(r.Context(), "[HTTP_REQUEST] Request served", logging.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"endpoint":    endpoint,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
				"status":      rec.status,
				"bytes":       rec.bytes,
				"duration_ms": duration.Milliseconds(),
			})
		}()

		next.ServeHTTP(rec, r)
	})
}

// Recoverer turns a handler panic into a 500 carrying the generic error message
func (m *Middleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			err := fmt.Errorf("%v", rvr)
			m.logger.Error(r.Context(), "[HTTP_PANIC] Handler panicked", logging.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  string(debug.Stack()),
			}, err)
			m.metrics.RecordAPIError("panic", routeTemplate(r))

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintln(w, models.GenericErrorMessage(err))
		}()

		next.ServeHTTP(w, r)
	})
}

// routeTemplate returns the matched mux path template so metric labels stay bounded
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
