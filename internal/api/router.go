package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// The chat handler checks the method itself so it can answer 405 with JSON.
	r.HandleFunc("/chat", apiHandler.ChatHandler)

	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/chat", apiHandler.ChatHandler)
		r.Get("/health", apiHandler.HealthHandler)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
