package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/taalcoach/internal/domain"
)

func newTestItem(t *testing.T) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(uuid.New(), "de fiets", "bicycle")
	if err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		ef       float64
		correct  bool
		expected float64
	}{
		{
			name:     "correct answer adds the bonus",
			ef:       2.5,
			correct:  true,
			expected: 2.6,
		},
		{
			name:     "incorrect answer subtracts the penalty",
			ef:       2.5,
			correct:  false,
			expected: 2.3,
		},
		{
			name:     "ease factor is capped at the maximum",
			ef:       2.95,
			correct:  true,
			expected: 3.0,
		},
		{
			name:     "ease factor does not drop below the minimum",
			ef:       1.4,
			correct:  false,
			expected: 1.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewEaseFactor(tc.ef, tc.correct, params)
			if got != tc.expected {
				t.Errorf("calculateNewEaseFactor(%v, %v) = %v, want %v", tc.ef, tc.correct, got, tc.expected)
			}
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name       string
		repetition int
		prevDays   int
		ef         float64
		correct    bool
		expected   int
	}{
		{
			name:       "first successful repetition uses the first interval",
			repetition: 1,
			prevDays:   1,
			ef:         2.5,
			correct:    true,
			expected:   1,
		},
		{
			name:       "second successful repetition uses the second interval",
			repetition: 2,
			prevDays:   1,
			ef:         2.6,
			correct:    true,
			expected:   6,
		},
		{
			name:       "third repetition grows geometrically from the previous interval",
			repetition: 3,
			prevDays:   6,
			ef:         2.6,
			correct:    true,
			expected:   16, // round(6 * 2.6) = 16
		},
		{
			name:       "interval never drops below one day",
			repetition: 3,
			prevDays:   1,
			ef:         1.3,
			correct:    true,
			expected:   1,
		},
		{
			name:       "incorrect answer resets the interval",
			repetition: 0,
			prevDays:   42,
			ef:         3.0,
			correct:    false,
			expected:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.repetition, tc.prevDays, tc.ef, tc.correct, params)
			if got != tc.expected {
				t.Errorf("calculateNewInterval(%d, %d, %v, %v) = %d, want %d",
					tc.repetition, tc.prevDays, tc.ef, tc.correct, got, tc.expected)
			}
		})
	}
}

func TestHeuristicMastery(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		correct  int
		seen     int
		expected float64
	}{
		{
			name:     "unseen item has zero mastery",
			correct:  0,
			seen:     0,
			expected: 0,
		},
		{
			name:     "single correct answer gives one tenth",
			correct:  1,
			seen:     1,
			expected: 0.1,
		},
		{
			name:     "half accuracy at five reviews",
			correct:  3,
			seen:     6,
			expected: 0.3,
		},
		{
			name:     "mastery is capped at one",
			correct:  20,
			seen:     20,
			expected: 1.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := heuristicMastery(tc.correct, tc.seen, params)
			if got != tc.expected {
				t.Errorf("heuristicMastery(%d, %d) = %v, want %v", tc.correct, tc.seen, got, tc.expected)
			}
		})
	}
}

func TestEaseFactorStaysBoundedOverAnySequence(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	// Alternate streaks of correct and incorrect answers and verify the
	// ease factor never escapes its bounds.
	ef := 2.5
	pattern := []bool{true, true, false, true, false, false, true, true, true, false}
	for i := 0; i < 100; i++ {
		correct := pattern[i%len(pattern)]
		ef = calculateNewEaseFactor(ef, correct, params)
		if ef < params.MinEaseFactor || ef > params.MaxEaseFactor {
			t.Fatalf("ease factor %v escaped [%v, %v] at step %d", ef, params.MinEaseFactor, params.MaxEaseFactor, i)
		}
	}
}

func TestCalculateNextItemCorrectStreak(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	item := newTestItem(t)

	// First correct answer: interval 1 day, repetition 1, mastery 0.1.
	item = calculateNextItem(item, true, 1, now, params)

	if item.RepetitionCount != 1 {
		t.Errorf("Expected repetition count 1, got %d", item.RepetitionCount)
	}
	if item.TimesSeen != 1 || item.TimesCorrect != 1 {
		t.Errorf("Expected counters 1/1, got %d/%d", item.TimesSeen, item.TimesCorrect)
	}
	if item.MasteryLevel != 0.1 {
		t.Errorf("Expected mastery 0.1, got %v", item.MasteryLevel)
	}
	if item.NextReviewAt == nil || !item.NextReviewAt.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("Expected next review one day out, got %v", item.NextReviewAt)
	}
	if item.EaseFactor != 2.6 {
		t.Errorf("Expected ease factor 2.6, got %v", item.EaseFactor)
	}
	if item.LastSeenAt == nil || !item.LastSeenAt.Equal(now) {
		t.Errorf("Expected last seen %v, got %v", now, item.LastSeenAt)
	}

	// Second correct answer: interval 6 days.
	now = now.AddDate(0, 0, 1)
	item = calculateNextItem(item, true, 1, now, params)
	if item.NextReviewAt == nil || !item.NextReviewAt.Equal(now.AddDate(0, 0, 6)) {
		t.Errorf("Expected next review six days out, got %v", item.NextReviewAt)
	}

	// Third correct answer: geometric growth from the previous interval of
	// 6 days by the pre-answer ease factor 2.7: round(6*2.7) = 16.
	now = now.AddDate(0, 0, 6)
	item = calculateNextItem(item, true, 6, now, params)
	if item.NextReviewAt == nil || !item.NextReviewAt.Equal(now.AddDate(0, 0, 16)) {
		t.Errorf("Expected next review sixteen days out, got %v", item.NextReviewAt)
	}
	if item.RepetitionCount != 3 {
		t.Errorf("Expected repetition count 3, got %d", item.RepetitionCount)
	}
}

func TestCalculateNextItemIncorrectResets(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	item := newTestItem(t)
	item.RepetitionCount = 7
	item.TimesSeen = 7
	item.TimesCorrect = 7
	item.EaseFactor = 3.0

	item = calculateNextItem(item, false, 30, now, params)

	if item.RepetitionCount != 0 {
		t.Errorf("Expected repetition count reset to 0, got %d", item.RepetitionCount)
	}
	if item.NextReviewAt == nil || !item.NextReviewAt.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("Expected next review one day out after failure, got %v", item.NextReviewAt)
	}
	if item.EaseFactor != 2.8 {
		t.Errorf("Expected ease factor 2.8, got %v", item.EaseFactor)
	}
	if item.TimesSeen != 8 || item.TimesCorrect != 7 {
		t.Errorf("Expected counters 8/7, got %d/%d", item.TimesSeen, item.TimesCorrect)
	}
}

func TestCalculateNextItemDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Now().UTC()

	item := newTestItem(t)
	original := *item

	_ = calculateNextItem(item, true, 1, now, params)

	if item.RepetitionCount != original.RepetitionCount ||
		item.TimesSeen != original.TimesSeen ||
		item.EaseFactor != original.EaseFactor ||
		item.NextReviewAt != original.NextReviewAt {
		t.Error("Expected input item to be unchanged")
	}
}
