package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Default scheduling values for new vocabulary items.
const (
	// DefaultEaseFactor is the SM-2 ease factor assigned to new items.
	DefaultEaseFactor = 2.5

	// MinEaseFactor and MaxEaseFactor bound the ease factor of any item.
	MinEaseFactor = 1.3
	MaxEaseFactor = 3.0

	// responseTimeSmoothing is the weight of the newest observation in the
	// exponential moving average of response times.
	responseTimeSmoothing = 0.3
)

// VocabularyItem-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("vocabulary item ID cannot be empty")

	// ErrItemLearnerIDEmpty is returned when an item's learner ID is empty or nil.
	ErrItemLearnerIDEmpty = errors.New("vocabulary item learner ID cannot be empty")

	// ErrItemSourceTextEmpty is returned when an item's source text is empty.
	ErrItemSourceTextEmpty = errors.New("vocabulary item source text cannot be empty")

	// ErrItemTargetTextEmpty is returned when an item's target text is empty.
	ErrItemTargetTextEmpty = errors.New("vocabulary item target text cannot be empty")

	// ErrItemEaseFactorRange is returned when an item's ease factor is out of bounds.
	ErrItemEaseFactorRange = errors.New("vocabulary item ease factor must be between 1.3 and 3.0")

	// ErrItemMasteryRange is returned when an item's mastery level is out of [0,1].
	ErrItemMasteryRange = errors.New("vocabulary item mastery level must be between 0 and 1")
)

// VocabularyItem is a single word or phrase a learner is studying, together
// with its learner-specific progress and spaced-repetition schedule. Each item
// belongs to exactly one learner. Schedule fields are mutated only by the
// scheduler; MasteryLevel is overwritten by the mastery predictor once it has
// trained.
type VocabularyItem struct {
	ID        uuid.UUID `json:"id"`
	LearnerID uuid.UUID `json:"learner_id"`

	// SourceText is the word in the language being learned; TargetText is
	// its translation in the learner's own language.
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`

	// Active marks whether the item takes part in scheduling. Removing a
	// word deactivates it; re-adding the same word reactivates it.
	Active bool `json:"active"`

	TimesSeen           int     `json:"times_seen"`
	TimesCorrect        int     `json:"times_correct"`
	AverageResponseTime float64 `json:"average_response_time"`
	MasteryLevel        float64 `json:"mastery_level"`

	// PreferredFormat records the bandit's most recent selection for this
	// item. Informational only; it does not influence scheduling.
	PreferredFormat *ExerciseFormat `json:"preferred_format,omitempty"`

	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	NextReviewAt    *time.Time `json:"next_review_at,omitempty"`
	RepetitionCount int        `json:"repetition_count"`
	EaseFactor      float64    `json:"ease_factor"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVocabularyItem creates a new active VocabularyItem for the given learner
// with default scheduling state. Returns an error if validation fails.
func NewVocabularyItem(learnerID uuid.UUID, sourceText, targetText string) (*VocabularyItem, error) {
	now := time.Now().UTC()
	item := &VocabularyItem{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		SourceText: sourceText,
		TargetText: targetText,
		Active:     true,
		EaseFactor: DefaultEaseFactor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the VocabularyItem has valid data.
// Returns an error if any field fails validation.
func (v *VocabularyItem) Validate() error {
	if v.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if v.LearnerID == uuid.Nil {
		return ErrItemLearnerIDEmpty
	}

	if v.SourceText == "" {
		return ErrItemSourceTextEmpty
	}

	if v.TargetText == "" {
		return ErrItemTargetTextEmpty
	}

	if v.EaseFactor < MinEaseFactor || v.EaseFactor > MaxEaseFactor {
		return ErrItemEaseFactorRange
	}

	if v.MasteryLevel < 0 || v.MasteryLevel > 1 {
		return ErrItemMasteryRange
	}

	return nil
}

// Accuracy returns the fraction of reviews answered correctly, or 0 if the
// item has never been seen.
func (v *VocabularyItem) Accuracy() float64 {
	if v.TimesSeen == 0 {
		return 0
	}
	return float64(v.TimesCorrect) / float64(v.TimesSeen)
}

// ObserveResponseTime folds a new response latency (in seconds) into the
// exponential moving average. The first observation sets the average directly.
func (v *VocabularyItem) ObserveResponseTime(seconds float64) {
	if v.AverageResponseTime == 0 {
		v.AverageResponseTime = seconds
		return
	}
	v.AverageResponseTime = (1-responseTimeSmoothing)*v.AverageResponseTime +
		responseTimeSmoothing*seconds
}
