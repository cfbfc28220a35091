package srs

import (
	"errors"
	"time"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// Common errors
var (
	ErrNilItem      = errors.New("vocabulary item cannot be nil")
	ErrInvalidPrev  = errors.New("previous interval must be at least 1 day")
	ErrInactiveItem = errors.New("cannot schedule an inactive item")
)

// Service defines the interface for spaced-repetition scheduling calculations.
type Service interface {
	// ApplyAnswer computes the item's next schedule and progress counters for
	// one answered exercise. prevIntervalDays is the day difference between
	// the item's two most recent review events (1 when fewer than two exist).
	// The returned item is a new value; the input is not modified.
	ApplyAnswer(
		item *domain.VocabularyItem,
		correct bool,
		prevIntervalDays int,
		now time.Time,
	) (*domain.VocabularyItem, error)

	// HeuristicMastery returns the counter-based mastery estimate used until
	// the mastery predictor has trained.
	HeuristicMastery(timesCorrect, timesSeen int) float64
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyAnswer implements the Service interface.
func (s *defaultService) ApplyAnswer(
	item *domain.VocabularyItem,
	correct bool,
	prevIntervalDays int,
	now time.Time,
) (*domain.VocabularyItem, error) {
	if item == nil {
		return nil, ErrNilItem
	}

	if !item.Active {
		return nil, ErrInactiveItem
	}

	if prevIntervalDays < 1 {
		return nil, ErrInvalidPrev
	}

	return calculateNextItem(item, correct, prevIntervalDays, now, s.params), nil
}

// HeuristicMastery implements the Service interface.
func (s *defaultService) HeuristicMastery(timesCorrect, timesSeen int) float64 {
	return heuristicMastery(timesCorrect, timesSeen, s.params)
}
