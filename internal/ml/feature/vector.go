package feature

// SchemaVersion identifies the feature-vector layout. Persisted model
// parameters are only valid for the schema version they were trained under.
const SchemaVersion = 1

// Vector lengths for the two model contracts.
const (
	MasteryVectorLen = 15
	BanditVectorLen  = 10
)

// MasteryVector assembles the 15-dimensional input for the mastery
// predictor. The field order is fixed; see SchemaVersion.
func MasteryVector(w WordFeatures, s SessionFeatures, l LearnerFeatures) []float64 {
	return []float64{
		float64(w.Length),
		w.Difficulty,
		boolToFloat(w.HasArticle),
		boolToFloat(w.IsCompound),
		boolToFloat(w.HasDiacritics),
		boolToFloat(w.IsVerb),
		boolToFloat(w.IsNumber),
		float64(s.TotalReviews),
		s.Accuracy,
		s.AvgResponseTime,
		float64(s.DaysSinceFirst),
		float64(s.DaysSinceLast),
		s.RecentAccuracy,
		float64(s.FormatDiversity),
		l.GlobalAccuracy,
	}
}

// BanditVector assembles the reduced 10-dimensional input for the exercise
// bandit's reward models. The field order is fixed; see SchemaVersion.
func BanditVector(w WordFeatures, s SessionFeatures, l LearnerFeatures) []float64 {
	return []float64{
		float64(w.Length),
		w.Difficulty,
		boolToFloat(w.HasArticle),
		boolToFloat(w.IsCompound),
		boolToFloat(w.IsVerb),
		s.Accuracy,
		s.AvgResponseTime,
		float64(s.TotalReviews),
		float64(l.HourOfDay),
		l.GlobalAccuracy,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
