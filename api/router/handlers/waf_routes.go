package handlers

import (
	"github.com/go-chi/chi/v5"
)

func RegisterWAFRoutes(r chi.Router, h *WAFHandlers) {
	r.Get("/waf/status", h.GetStatusHandler)
	r.Post("/waf/policy", h.SavePolicyHandler)
	r.Post("/waf/mode", h.SetModeHandler)
	r.Post("/waf/exceptions", h.SetExceptionsHandler)
	r.Post("/waf/rules", h.SetRulesHandler)
	r.Post("/waf/apply", h.ApplyHandler)
}
