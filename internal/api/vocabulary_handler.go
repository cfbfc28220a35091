package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mkuiper/taalcoach/internal/api/shared"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/service/learning"
)

// VocabularyHandler handles vocabulary management and progress HTTP requests.
type VocabularyHandler struct {
	learningService learning.Service
	logger          *slog.Logger
}

// NewVocabularyHandler creates a new VocabularyHandler
func NewVocabularyHandler(learningService learning.Service, logger *slog.Logger) *VocabularyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for VocabularyHandler")
	}

	return &VocabularyHandler{
		learningService: learningService,
		logger:          logger.With(slog.String("component", "vocabulary_handler")),
	}
}

// AddWord handles POST /learners/{learnerID}/vocabulary requests.
// Re-adding a previously removed word reactivates it with its history intact.
func (h *VocabularyHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	var req AddWordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, err := h.learningService.AddWord(r.Context(), learnerID, req.SourceText, req.TargetText)
	if err != nil {
		respondServiceError(w, r, err, "Failed to add word")
		return
	}

	log.Debug("word added",
		slog.String("learner_id", learnerID),
		slog.String("item_id", item.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// RemoveWord handles DELETE /learners/{learnerID}/vocabulary/{sourceText}
// requests. The item is deactivated, not deleted, so its review history is
// kept.
func (h *VocabularyHandler) RemoveWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	sourceText := chi.URLParam(r, "sourceText")
	if sourceText == "" {
		log.Warn("source text not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Source text is required")
		return
	}

	if err := h.learningService.RemoveWord(r.Context(), learnerID, sourceText); err != nil {
		respondServiceError(w, r, err, "Failed to remove word")
		return
	}

	log.Debug("word removed",
		slog.String("learner_id", learnerID),
		slog.String("source_text", sourceText))
	w.WriteHeader(http.StatusNoContent)
}

// ListVocabulary handles GET /learners/{learnerID}/vocabulary requests.
// It returns the learner's active items, oldest first.
func (h *VocabularyHandler) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	items, err := h.learningService.ListVocabulary(r.Context(), learnerID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list vocabulary")
		return
	}

	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, itemToResponse(item))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// ReviewStats handles GET /learners/{learnerID}/stats requests.
func (h *VocabularyHandler) ReviewStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.learningService.ReviewStats(r.Context(), learnerID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get review stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// FormatPerformance handles GET /learners/{learnerID}/performance requests.
// It reports per-format review counts and accuracy.
func (h *VocabularyHandler) FormatPerformance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	performance, err := h.learningService.FormatPerformance(r.Context(), learnerID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get format performance")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, performance)
}
