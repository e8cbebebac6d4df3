/**
 * @description
 * This file sets up the HTTP router for the remit-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * middleware for logging, panic recovery, timeouts, and internal authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the remit service.
func Routes(h *Handlers, internalAPIKey string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// All v1 routes sit behind the internal API key; an empty key disables the check.
	r.Route("/v1", func(r chi.Router) {
		r.Use(InternalAPIKeyMiddleware(internalAPIKey))

		r.Post("/transfers", h.SubmitTransferHandler)
		r.Get("/transfers", h.HistoryHandler)
		r.Get("/transfers/{id}", h.GetTransferHandler)
		r.Post("/transfers/{id}/check-status", h.CheckStatusHandler)
		r.Post("/transfers/repeat", h.RepeatTransferHandler)

		r.Post("/quotes", h.QuoteHandler)
		r.Get("/corridors", h.ListCorridorsHandler)
		r.Get("/rates/compare", h.CompareRatesHandler)
		r.Get("/analytics", h.AnalyticsHandler)

		r.Post("/recipients", h.SaveRecipientHandler)
		r.Get("/recipients", h.ListRecipientsHandler)
		r.Delete("/recipients/{id}", h.DeleteRecipientHandler)
		r.Post("/recipients/{id}/send", h.SendToRecipientHandler)

		r.Post("/schedules", h.CreateScheduleHandler)
		r.Get("/schedules", h.ListSchedulesHandler)
		r.Delete("/schedules/{id}", h.CancelScheduleHandler)
	})

	return r
}
