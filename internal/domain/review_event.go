package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent-specific validation errors
var (
	// ErrEventIDEmpty is returned when a review event ID is empty or nil.
	ErrEventIDEmpty = errors.New("review event ID cannot be empty")

	// ErrEventLearnerIDEmpty is returned when an event's learner ID is empty or nil.
	ErrEventLearnerIDEmpty = errors.New("review event learner ID cannot be empty")

	// ErrEventItemIDEmpty is returned when an event's item ID is empty or nil.
	ErrEventItemIDEmpty = errors.New("review event item ID cannot be empty")

	// ErrEventNegativeLatency is returned when an event's response time is negative.
	ErrEventNegativeLatency = errors.New("review event response time cannot be negative")
)

// ReviewEvent records a single answered exercise. Events are immutable once
// created and form an append-only log; their timestamp ordering is the basis
// for recency features and for deriving previous review intervals.
type ReviewEvent struct {
	ID           uuid.UUID      `json:"id"`
	LearnerID    uuid.UUID      `json:"learner_id"`
	ItemID       uuid.UUID      `json:"item_id"`
	Format       ExerciseFormat `json:"format"`
	Correct      bool           `json:"correct"`
	ResponseTime float64        `json:"response_time"` // seconds
	OccurredAt   time.Time      `json:"occurred_at"`
}

// NewReviewEvent creates a review event stamped with the current time.
// Returns an error if validation fails.
func NewReviewEvent(
	learnerID, itemID uuid.UUID,
	format ExerciseFormat,
	correct bool,
	responseTime float64,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:           uuid.New(),
		LearnerID:    learnerID,
		ItemID:       itemID,
		Format:       format,
		Correct:      correct,
		ResponseTime: responseTime,
		OccurredAt:   time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
// Returns an error if any field fails validation.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.LearnerID == uuid.Nil {
		return ErrEventLearnerIDEmpty
	}

	if e.ItemID == uuid.Nil {
		return ErrEventItemIDEmpty
	}

	if !e.Format.IsValid() {
		return ErrInvalidExerciseFormat
	}

	if e.ResponseTime < 0 {
		return ErrEventNegativeLatency
	}

	return nil
}
