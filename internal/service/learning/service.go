// Package learning orchestrates a learner's review turns: item selection,
// format selection, prompt rendering, grading, and the transactional outcome
// update that feeds the scheduler and both online models.
package learning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/exercise"
)

// Common error types for the learning service
var (
	// ErrNoActiveItems indicates that the learner has no active vocabulary
	// at all, so no item can be picked.
	ErrNoActiveItems = errors.New("no active vocabulary items")

	// ErrItemNotFound indicates that the item does not exist.
	ErrItemNotFound = errors.New("vocabulary item not found")

	// ErrItemNotOwned indicates that the item belongs to a different learner.
	ErrItemNotOwned = errors.New("vocabulary item not owned by learner")

	// ErrItemInactive indicates that the item has been removed from study.
	ErrItemInactive = errors.New("vocabulary item is inactive")

	// ErrWordExists indicates that the learner already studies this word.
	ErrWordExists = errors.New("word already in vocabulary")

	// ErrInvalidFormat indicates an unknown exercise format tag.
	ErrInvalidFormat = errors.New("invalid exercise format")
)

// SessionState is the per-session turn counter the retrain cadence runs on.
// It is created by the front end at session start, threaded through
// RetrainIfDue, and discarded at session end; the service keeps no ambient
// per-learner state.
type SessionState struct {
	AnswersSinceRetrain int `json:"answers_since_retrain"`
}

// ReviewStats summarizes the state of a learner's active vocabulary.
type ReviewStats struct {
	DueForReview int `json:"due_for_review"`
	NewAvailable int `json:"new_available"`
	InProgress   int `json:"in_progress"`
}

// FormatPerformance is a learner's historical accuracy for one exercise
// format. Accuracy is 0 when the format has never been used.
type FormatPerformance struct {
	Format   domain.ExerciseFormat `json:"format"`
	Reviews  int                   `json:"reviews"`
	Accuracy float64               `json:"accuracy"`
}

// Service is the front-end facing surface of the review core. Learners are
// identified by the opaque external identity the front end knows them by and
// are bootstrapped on first contact.
type Service interface {
	// PickNext selects the learner's next item: due items first, then unseen
	// items oldest-added first, then the seen item with the lowest predicted
	// mastery (least recently seen on ties).
	// Returns ErrNoActiveItems only when the learner has no active items.
	PickNext(ctx context.Context, learnerExternalID string) (*domain.VocabularyItem, error)

	// SelectFormat asks the bandit for the exercise format to present the
	// item in and records it as the item's preferred format.
	SelectFormat(ctx context.Context, learnerExternalID string, itemID uuid.UUID) (domain.ExerciseFormat, error)

	// RenderPrompt builds the prompt for an item in the given format.
	// Multiple-choice prompts draw distractors from the learner's other
	// active items.
	RenderPrompt(ctx context.Context, itemID uuid.UUID, format domain.ExerciseFormat) (*exercise.Prompt, error)

	// CheckAnswer grades a raw answer against the item for the format.
	CheckAnswer(ctx context.Context, itemID uuid.UUID, format domain.ExerciseFormat, rawAnswer string) (bool, error)

	// RecordOutcome applies one answered exercise in a single transaction:
	// appends the review event, runs the scheduling update, folds the
	// latency into the item's response-time average, and updates the bandit
	// arm that served the format. Returns the updated item.
	RecordOutcome(ctx context.Context, learnerExternalID string, itemID uuid.UUID, format domain.ExerciseFormat, correct bool, latencySeconds float64) (*domain.VocabularyItem, error)

	// RetrainIfDue advances the session's turn counter and, when the
	// configured cadence is reached, retrains the learner's mastery model
	// and persists fresh predictions. Returns the updated session state.
	RetrainIfDue(ctx context.Context, learnerExternalID string, state SessionState) (SessionState, error)

	// AddWord adds a word to the learner's vocabulary. Re-adding a
	// deactivated word reactivates it with its history intact.
	// Returns ErrWordExists when the word is already active.
	AddWord(ctx context.Context, learnerExternalID, sourceText, targetText string) (*domain.VocabularyItem, error)

	// RemoveWord deactivates the learner's word by source text.
	RemoveWord(ctx context.Context, learnerExternalID, sourceText string) error

	// ListVocabulary returns the learner's active items, oldest first.
	ListVocabulary(ctx context.Context, learnerExternalID string) ([]*domain.VocabularyItem, error)

	// ReviewStats reports due/new/in-progress counts for the learner.
	ReviewStats(ctx context.Context, learnerExternalID string) (*ReviewStats, error)

	// FormatPerformance reports per-format review counts and accuracy from
	// the learner's event log, covering all four formats.
	FormatPerformance(ctx context.Context, learnerExternalID string) ([]FormatPerformance, error)
}
