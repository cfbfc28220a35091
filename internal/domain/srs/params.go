package srs

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Ease factor movement per answer
	EaseFactorBonus   float64 // added on a correct answer
	EaseFactorPenalty float64 // subtracted on an incorrect answer

	// Fixed intervals (in days) for the first two successful repetitions
	FirstInterval  int
	SecondInterval int

	// ResetInterval is the interval (in days) applied after an incorrect answer.
	ResetInterval int

	// MasteryScaleReviews is the number of reviews over which the heuristic
	// mastery estimate ramps up to full weight.
	MasteryScaleReviews int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default untouched.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	EaseFactorBonus   float64
	EaseFactorPenalty float64

	FirstInterval  int
	SecondInterval int
	ResetInterval  int

	MasteryScaleReviews int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 3.0,

		EaseFactorBonus:   0.1,
		EaseFactorPenalty: 0.2,

		FirstInterval:  1,
		SecondInterval: 6,
		ResetInterval:  1,

		MasteryScaleReviews: 10,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.EaseFactorBonus > 0 {
		params.EaseFactorBonus = config.EaseFactorBonus
	}
	if config.EaseFactorPenalty > 0 {
		params.EaseFactorPenalty = config.EaseFactorPenalty
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.ResetInterval > 0 {
		params.ResetInterval = config.ResetInterval
	}
	if config.MasteryScaleReviews > 0 {
		params.MasteryScaleReviews = config.MasteryScaleReviews
	}

	return params
}
