package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkuiper/taalcoach/internal/api"
	apiMiddleware "github.com/mkuiper/taalcoach/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	// Create API handlers using the application's services
	exerciseHandler := api.NewExerciseHandler(app.learningService, app.logger)
	vocabularyHandler := api.NewVocabularyHandler(app.learningService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/learners/{learnerID}", func(r chi.Router) {
			// Review-turn endpoints
			r.Get("/exercises/next", exerciseHandler.NextExercise)
			r.Post("/exercises/{itemID}/answer", exerciseHandler.SubmitAnswer)
			r.Post("/retrain", exerciseHandler.Retrain)

			// Vocabulary management endpoints
			r.Post("/vocabulary", vocabularyHandler.AddWord)
			r.Get("/vocabulary", vocabularyHandler.ListVocabulary)
			r.Delete("/vocabulary/{sourceText}", vocabularyHandler.RemoveWord)

			// Progress endpoints
			r.Get("/stats", vocabularyHandler.ReviewStats)
			r.Get("/performance", vocabularyHandler.FormatPerformance)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
