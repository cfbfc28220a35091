package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Learner-specific validation errors
var (
	// ErrLearnerIDEmpty is returned when a learner ID is empty or nil.
	ErrLearnerIDEmpty = errors.New("learner ID cannot be empty")

	// ErrLearnerExternalIDEmpty is returned when a learner's external identity is empty.
	ErrLearnerExternalIDEmpty = errors.New("learner external ID cannot be empty")
)

// Learner represents a person studying vocabulary. Learners are identified
// externally by an opaque string supplied by the front-end (for example a
// chat-platform user ID) and internally by a UUID. A learner is created on
// first contact and never deleted.
type Learner struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLearner creates a new Learner for the given external identity.
// It generates a new UUID for the learner ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewLearner(externalID, name string) (*Learner, error) {
	learner := &Learner{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}

	if err := learner.Validate(); err != nil {
		return nil, err
	}

	return learner, nil
}

// Validate checks if the Learner has valid data.
// Returns an error if any field fails validation.
func (l *Learner) Validate() error {
	if l.ID == uuid.Nil {
		return ErrLearnerIDEmpty
	}

	if l.ExternalID == "" {
		return ErrLearnerExternalIDEmpty
	}

	return nil
}
