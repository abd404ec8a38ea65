package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every route behind the shared middleware.
// metricsHandler is mounted at /metrics when non-nil.
func NewRouter(pages *PageHandler, api *APIHandler, mw *Middleware, metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(mw.RequestID, mw.Logger, mw.Recoverer)

	pages.RegisterRoutes(router)
	api.RegisterRoutes(router)
	RegisterDocsRoutes(router)

	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	return router
}
