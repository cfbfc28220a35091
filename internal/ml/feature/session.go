package feature

import (
	"time"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// defaultResponseTime stands in for the mean latency when no review has a
// recorded response time.
const defaultResponseTime = 10.0

// recentWindow is the number of trailing reviews that feed the recent
// accuracy feature.
const recentWindow = 5

// SessionFeatures summarizes an item's review history. Events must be in
// chronological order (oldest first), the order the review event store
// returns them in.
type SessionFeatures struct {
	TotalReviews    int
	Accuracy        float64
	AvgResponseTime float64
	DaysSinceFirst  int
	DaysSinceLast   int
	RecentAccuracy  float64
	FormatDiversity int
}

// ExtractSessionFeatures derives session features from an item's review
// events. An empty history yields defaults.
func ExtractSessionFeatures(events []*domain.ReviewEvent, now time.Time) SessionFeatures {
	if len(events) == 0 {
		return SessionFeatures{AvgResponseTime: defaultResponseTime}
	}

	total := len(events)
	correct := 0
	formats := make(map[domain.ExerciseFormat]bool)
	var latencySum float64
	var latencyCount int

	for _, e := range events {
		if e.Correct {
			correct++
		}
		formats[e.Format] = true
		if e.ResponseTime > 0 {
			latencySum += e.ResponseTime
			latencyCount++
		}
	}

	avgResponseTime := defaultResponseTime
	if latencyCount > 0 {
		avgResponseTime = latencySum / float64(latencyCount)
	}

	recent := events
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	recentCorrect := 0
	for _, e := range recent {
		if e.Correct {
			recentCorrect++
		}
	}

	return SessionFeatures{
		TotalReviews:    total,
		Accuracy:        float64(correct) / float64(total),
		AvgResponseTime: avgResponseTime,
		DaysSinceFirst:  daysBetween(events[0].OccurredAt, now),
		DaysSinceLast:   daysBetween(events[len(events)-1].OccurredAt, now),
		RecentAccuracy:  float64(recentCorrect) / float64(len(recent)),
		FormatDiversity: len(formats),
	}
}

// LearnerFeatures captures learner-global context.
type LearnerFeatures struct {
	GlobalAccuracy float64
	HourOfDay      int
}

// ExtractLearnerFeatures derives learner-global features from the learner's
// full review history. With no history the global accuracy defaults to 0.5.
func ExtractLearnerFeatures(events []*domain.ReviewEvent, now time.Time) LearnerFeatures {
	accuracy := 0.5
	if len(events) > 0 {
		correct := 0
		for _, e := range events {
			if e.Correct {
				correct++
			}
		}
		accuracy = float64(correct) / float64(len(events))
	}

	return LearnerFeatures{
		GlobalAccuracy: accuracy,
		HourOfDay:      now.Hour(),
	}
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
