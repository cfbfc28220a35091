package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/api/shared"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/service/learning"
)

// ExerciseHandler handles the review-turn HTTP requests: serving the next
// exercise, grading answers, and the session retrain check.
type ExerciseHandler struct {
	learningService learning.Service
	logger          *slog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler
func NewExerciseHandler(learningService learning.Service, logger *slog.Logger) *ExerciseHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExerciseHandler")
	}

	return &ExerciseHandler{
		learningService: learningService,
		logger:          logger.With(slog.String("component", "exercise_handler")),
	}
}

// NextExercise handles GET /learners/{learnerID}/exercises/next requests.
// It picks the learner's next item, asks the bandit for a format, and renders
// the prompt. Responds 204 when the learner has no active vocabulary.
func (h *ExerciseHandler) NextExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	item, err := h.learningService.PickNext(r.Context(), learnerID)
	if errors.Is(err, learning.ErrNoActiveItems) {
		log.Debug("no active items for learner", slog.String("learner_id", learnerID))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		respondServiceError(w, r, err, "Failed to pick next exercise")
		return
	}

	format, err := h.learningService.SelectFormat(r.Context(), learnerID, item.ID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to select exercise format")
		return
	}

	prompt, err := h.learningService.RenderPrompt(r.Context(), item.ID, format)
	if err != nil {
		respondServiceError(w, r, err, "Failed to render exercise prompt")
		return
	}

	log.Debug("serving exercise",
		slog.String("learner_id", learnerID),
		slog.String("item_id", item.ID.String()),
		slog.String("format", string(format)))
	shared.RespondWithJSON(w, r, http.StatusOK, ExerciseResponse{
		ItemID:   item.ID.String(),
		Format:   string(prompt.Format),
		Question: prompt.Question,
		Options:  prompt.Options,
	})
}

// SubmitAnswer handles POST /learners/{learnerID}/exercises/{itemID}/answer
// requests. It grades the raw answer and records the outcome: review event,
// schedule update, and bandit reward, all in one transaction.
func (h *ExerciseHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	itemID, ok := getPathItemID(w, r, log)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	format := domain.ExerciseFormat(req.Format)
	if !format.IsValid() {
		log.Warn("unknown exercise format",
			slog.String("format", req.Format),
			slog.String("learner_id", learnerID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exercise format")
		return
	}

	correct, err := h.learningService.CheckAnswer(r.Context(), itemID, format, req.Answer)
	if err != nil {
		respondServiceError(w, r, err, "Failed to grade answer")
		return
	}

	item, err := h.learningService.RecordOutcome(r.Context(), learnerID, itemID, format, correct, req.LatencySeconds)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record outcome")
		return
	}

	log.Debug("answer recorded",
		slog.String("learner_id", learnerID),
		slog.String("item_id", itemID.String()),
		slog.String("format", string(format)),
		slog.Bool("correct", correct))
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Correct: correct,
		Item:    itemToResponse(item),
	})
}

// Retrain handles POST /learners/{learnerID}/retrain requests.
// It advances the session's turn counter and retrains the learner's mastery
// model when the cadence is reached.
func (h *ExerciseHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getPathLearnerID(w, r, log)
	if !ok {
		return
	}

	var req RetrainRequest
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

	state, err := h.learningService.RetrainIfDue(r.Context(), learnerID, learning.SessionState{
		AnswersSinceRetrain: req.AnswersSinceRetrain,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to run retrain check")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RetrainResponse{
		AnswersSinceRetrain: state.AnswersSinceRetrain,
	})
}

// getPathLearnerID extracts the learner's external ID from the URL path.
// It writes an error response and returns false when the parameter is missing.
func getPathLearnerID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	learnerID := chi.URLParam(r, "learnerID")
	if learnerID == "" {
		log.Warn("learner ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Learner ID is required")
		return "", false
	}
	return learnerID, true
}

// getPathItemID extracts and parses the item UUID from the URL path.
// It writes an error response and returns false when the parameter is missing
// or malformed.
func getPathItemID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	pathItemID := chi.URLParam(r, "itemID")
	if pathItemID == "" {
		log.Warn("item ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Item ID is required")
		return uuid.Nil, false
	}

	itemID, err := uuid.Parse(pathItemID)
	if err != nil {
		log.Warn("invalid item ID format", slog.String("item_id", pathItemID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID format")
		return uuid.Nil, false
	}
	return itemID, true
}

// respondServiceError maps a service error to a status code and sends the
// sanitized message, logging the full error.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)
	if statusCode == http.StatusInternalServerError {
		safeMessage = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}
