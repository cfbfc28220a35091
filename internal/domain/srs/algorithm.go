package srs

import (
	"math"
	"time"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// calculateNewEaseFactor moves the ease factor up on a correct answer and
// down on an incorrect one, clamped to the configured limits.
func calculateNewEaseFactor(currentEF float64, correct bool, params *Params) float64 {
	var newEF float64
	if correct {
		newEF = currentEF + params.EaseFactorBonus
	} else {
		newEF = currentEF - params.EaseFactorPenalty
	}

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next review interval in days.
//
// The first two successful repetitions use fixed intervals; from the third
// onward the interval grows geometrically from the previous one by the ease
// factor. The previous interval is derived by the caller from the day
// difference between the item's two most recent review events (1 when fewer
// than two exist), so growth tracks when reviews actually happened rather
// than when they were scheduled.
func calculateNewInterval(
	repetition int,
	prevIntervalDays int,
	easeFactor float64,
	correct bool,
	params *Params,
) int {
	if !correct {
		return params.ResetInterval
	}

	switch repetition {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	interval := int(math.Round(float64(prevIntervalDays) * easeFactor))
	if interval < 1 {
		interval = 1
	}
	return interval
}

// heuristicMastery estimates mastery from the raw answer counters: accuracy
// scaled by how often the item has been seen. The estimate stays at 0 for
// unseen items and is capped at 1. It is an interim value; the mastery
// predictor overwrites it once trained.
func heuristicMastery(timesCorrect, timesSeen int, params *Params) float64 {
	if timesSeen == 0 {
		return 0
	}

	accuracy := float64(timesCorrect) / float64(timesSeen)
	mastery := accuracy * (float64(timesSeen) / float64(params.MasteryScaleReviews))
	return math.Min(1.0, mastery)
}

// calculateNextItem creates a new VocabularyItem with updated schedule and
// progress counters for one answered exercise. The original item is not
// modified. The ease factor used for interval growth is the one from before
// this answer; the stored ease factor is the adjusted one.
func calculateNextItem(
	item *domain.VocabularyItem,
	correct bool,
	prevIntervalDays int,
	now time.Time,
	params *Params,
) *domain.VocabularyItem {
	next := *item

	repetition := item.RepetitionCount + 1
	if !correct {
		repetition = 0
	}

	next.EaseFactor = calculateNewEaseFactor(item.EaseFactor, correct, params)

	interval := calculateNewInterval(repetition, prevIntervalDays, item.EaseFactor, correct, params)
	reviewAt := now.AddDate(0, 0, interval)
	next.NextReviewAt = &reviewAt

	next.RepetitionCount = repetition
	next.TimesSeen = item.TimesSeen + 1
	if correct {
		next.TimesCorrect = item.TimesCorrect + 1
	}

	seenAt := now
	next.LastSeenAt = &seenAt
	next.MasteryLevel = heuristicMastery(next.TimesCorrect, next.TimesSeen, params)
	next.UpdatedAt = now

	return &next
}
