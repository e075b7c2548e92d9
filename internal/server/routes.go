package server

import (
	"expvar"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handlers.Health)
	r.Post("/retrain", s.handlers.Retrain)
	r.Post("/predict", s.handlers.Predict)

	// Runtime counters.
	r.Method("GET", "/debug/vars", expvar.Handler())
}
