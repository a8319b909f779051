package api

import (
	"net/http"
	"wafconsole/api/router/handlers"
	"wafconsole/core"
	"wafconsole/logger"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the API router for the console.
// All registered paths are relative to the /api base path.
func NewRouter(store *core.Store, sequencer *core.Sequencer) http.Handler {
	router := chi.NewRouter()

	wafHandlers := &handlers.WAFHandlers{Store: store, Sequencer: sequencer}
	logHandlers := &handlers.LogHandlers{Store: store}
	metricsHandlers := &handlers.MetricsHandlers{Store: store}
	auditHandlers := &handlers.AuditHandlers{Store: store}

	handlers.RegisterHealthRoutes(router)
	handlers.RegisterWAFRoutes(router, wafHandlers)
	handlers.RegisterLogRoutes(router, logHandlers)
	handlers.RegisterMetricsRoutes(router, metricsHandlers)
	handlers.RegisterAuditRoutes(router, auditHandlers)
	handlers.RegisterSettingsRoutes(router)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("API SUB-ROUTER CATCH-ALL: Unhandled route relative to /api: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return router
}
