package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/exercise"
	"github.com/mkuiper/taalcoach/internal/service/learning"
)

// stubLearningService implements learning.Service with overridable function
// fields. Handlers under test only touch the fields their endpoint uses.
type stubLearningService struct {
	pickNext          func(learnerID string) (*domain.VocabularyItem, error)
	selectFormat      func(learnerID string, itemID uuid.UUID) (domain.ExerciseFormat, error)
	renderPrompt      func(itemID uuid.UUID, format domain.ExerciseFormat) (*exercise.Prompt, error)
	checkAnswer       func(itemID uuid.UUID, format domain.ExerciseFormat, answer string) (bool, error)
	recordOutcome     func(learnerID string, itemID uuid.UUID, format domain.ExerciseFormat, correct bool, latency float64) (*domain.VocabularyItem, error)
	retrainIfDue      func(learnerID string, state learning.SessionState) (learning.SessionState, error)
	addWord           func(learnerID, sourceText, targetText string) (*domain.VocabularyItem, error)
	removeWord        func(learnerID, sourceText string) error
	listVocabulary    func(learnerID string) ([]*domain.VocabularyItem, error)
	reviewStats       func(learnerID string) (*learning.ReviewStats, error)
	formatPerformance func(learnerID string) ([]learning.FormatPerformance, error)
}

var _ learning.Service = (*stubLearningService)(nil)

func (s *stubLearningService) PickNext(_ context.Context, learnerID string) (*domain.VocabularyItem, error) {
	return s.pickNext(learnerID)
}

func (s *stubLearningService) SelectFormat(_ context.Context, learnerID string, itemID uuid.UUID) (domain.ExerciseFormat, error) {
	return s.selectFormat(learnerID, itemID)
}

func (s *stubLearningService) RenderPrompt(_ context.Context, itemID uuid.UUID, format domain.ExerciseFormat) (*exercise.Prompt, error) {
	return s.renderPrompt(itemID, format)
}

func (s *stubLearningService) CheckAnswer(_ context.Context, itemID uuid.UUID, format domain.ExerciseFormat, rawAnswer string) (bool, error) {
	return s.checkAnswer(itemID, format, rawAnswer)
}

func (s *stubLearningService) RecordOutcome(_ context.Context, learnerID string, itemID uuid.UUID, format domain.ExerciseFormat, correct bool, latencySeconds float64) (*domain.VocabularyItem, error) {
	return s.recordOutcome(learnerID, itemID, format, correct, latencySeconds)
}

func (s *stubLearningService) RetrainIfDue(_ context.Context, learnerID string, state learning.SessionState) (learning.SessionState, error) {
	return s.retrainIfDue(learnerID, state)
}

func (s *stubLearningService) AddWord(_ context.Context, learnerID, sourceText, targetText string) (*domain.VocabularyItem, error) {
	return s.addWord(learnerID, sourceText, targetText)
}

func (s *stubLearningService) RemoveWord(_ context.Context, learnerID, sourceText string) error {
	return s.removeWord(learnerID, sourceText)
}

func (s *stubLearningService) ListVocabulary(_ context.Context, learnerID string) ([]*domain.VocabularyItem, error) {
	return s.listVocabulary(learnerID)
}

func (s *stubLearningService) ReviewStats(_ context.Context, learnerID string) (*learning.ReviewStats, error) {
	return s.reviewStats(learnerID)
}

func (s *stubLearningService) FormatPerformance(_ context.Context, learnerID string) ([]learning.FormatPerformance, error) {
	return s.formatPerformance(learnerID)
}

// testRouter mounts both handlers on the same routes the server uses.
func testRouter(svc learning.Service) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	exerciseHandler := NewExerciseHandler(svc, log)
	vocabularyHandler := NewVocabularyHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/learners/{learnerID}", func(r chi.Router) {
		r.Get("/exercises/next", exerciseHandler.NextExercise)
		r.Post("/exercises/{itemID}/answer", exerciseHandler.SubmitAnswer)
		r.Post("/retrain", exerciseHandler.Retrain)

		r.Post("/vocabulary", vocabularyHandler.AddWord)
		r.Get("/vocabulary", vocabularyHandler.ListVocabulary)
		r.Delete("/vocabulary/{sourceText}", vocabularyHandler.RemoveWord)
		r.Get("/stats", vocabularyHandler.ReviewStats)
		r.Get("/performance", vocabularyHandler.FormatPerformance)
	})
	return r
}

// doRequest performs a request against the test router and returns the
// recorded response.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorded JSON body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// testItem builds a valid active item for handler tests.
func testItem(t *testing.T, learnerID uuid.UUID) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(learnerID, "de fiets", "the bicycle")
	require.NoError(t, err)
	return item
}
