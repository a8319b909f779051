package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterSettingsRoutes(r chi.Router) {
	r.Route("/settings/ui", func(r chi.Router) {
		r.Get("/", GetUISettingsHandler)
		r.Put("/", SetUISettingsHandler)
		r.Post("/", SetUISettingsHandler)
	})

	r.Route("/settings/default-log-range", func(r chi.Router) {
		r.Get("/", GetDefaultLogRangeHandler)
		r.Put("/", SetDefaultLogRangeHandler)
	})

	r.Route("/settings/saved-searches", func(r chi.Router) {
		r.Get("/", GetSavedSearchesHandler)
		r.Post("/", CreateSavedSearchHandler)
		r.Delete("/{searchID}", DeleteSavedSearchHandler)
	})
}
