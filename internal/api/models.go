package api

import (
	"time"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// Common request/response structures

// AnswerRequest defines the payload for submitting an exercise answer.
type AnswerRequest struct {
	Format         string  `json:"format"          validate:"required"`
	Answer         string  `json:"answer"          validate:"required"`
	LatencySeconds float64 `json:"latency_seconds" validate:"gte=0"`
}

// AddWordRequest defines the payload for adding a word to a vocabulary.
type AddWordRequest struct {
	SourceText string `json:"source_text" validate:"required,max=200"`
	TargetText string `json:"target_text" validate:"required,max=200"`
}

// RetrainRequest carries the session's turn counter into a retrain check.
type RetrainRequest struct {
	AnswersSinceRetrain int `json:"answers_since_retrain" validate:"gte=0"`
}

// RetrainResponse returns the updated session turn counter.
type RetrainResponse struct {
	AnswersSinceRetrain int `json:"answers_since_retrain"`
}

// ExerciseResponse is one rendered exercise: the item to review, the format
// the bandit picked, and the prompt to show the learner. Options is only set
// for multiple-choice formats.
type ExerciseResponse struct {
	ItemID   string   `json:"item_id"`
	Format   string   `json:"format"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// AnswerResponse reports the grading verdict and the item's updated schedule.
type AnswerResponse struct {
	Correct bool         `json:"correct"`
	Item    ItemResponse `json:"item"`
}

// ItemResponse represents the response data for a vocabulary item.
type ItemResponse struct {
	ID              string     `json:"id"`
	SourceText      string     `json:"source_text"`
	TargetText      string     `json:"target_text"`
	Active          bool       `json:"active"`
	TimesSeen       int        `json:"times_seen"`
	TimesCorrect    int        `json:"times_correct"`
	MasteryLevel    float64    `json:"mastery_level"`
	EaseFactor      float64    `json:"ease_factor"`
	RepetitionCount int        `json:"repetition_count"`
	PreferredFormat string     `json:"preferred_format,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	NextReviewAt    *time.Time `json:"next_review_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// itemToResponse converts a domain.VocabularyItem to an ItemResponse
func itemToResponse(item *domain.VocabularyItem) ItemResponse {
	resp := ItemResponse{
		ID:              item.ID.String(),
		SourceText:      item.SourceText,
		TargetText:      item.TargetText,
		Active:          item.Active,
		TimesSeen:       item.TimesSeen,
		TimesCorrect:    item.TimesCorrect,
		MasteryLevel:    item.MasteryLevel,
		EaseFactor:      item.EaseFactor,
		RepetitionCount: item.RepetitionCount,
		LastSeenAt:      item.LastSeenAt,
		NextReviewAt:    item.NextReviewAt,
		CreatedAt:       item.CreatedAt,
	}
	if item.PreferredFormat != nil {
		resp.PreferredFormat = string(*item.PreferredFormat)
	}
	return resp
}
