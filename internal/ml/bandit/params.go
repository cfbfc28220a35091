package bandit

import "errors"

// Parameter validation errors
var (
	// ErrInvalidEpsilon is returned when the exploration rate is outside [0, 1].
	ErrInvalidEpsilon = errors.New("epsilon must be between 0.0 and 1.0")

	// ErrInvalidRetrainThreshold is returned when the retrain threshold is not positive.
	ErrInvalidRetrainThreshold = errors.New("retrain threshold must be positive")

	// ErrInvalidMinTrainingRows is returned when the minimum training rows is not positive.
	ErrInvalidMinTrainingRows = errors.New("minimum training rows must be positive")
)

// Params holds the tunable parameters of the exercise-format bandit.
type Params struct {
	// Epsilon is the exploration rate: the probability a turn picks a
	// uniformly random format instead of the best-scoring arm.
	Epsilon float64

	// RetrainThreshold is the buffer size at which an arm first becomes
	// eligible for training.
	RetrainThreshold int

	// MinTrainingRows is the smallest buffer a reward model fits on.
	MinTrainingRows int

	// RetrainEvery controls the retrain cadence once the threshold has been
	// crossed: 1 retrains on every reward, N>1 only when the buffer size is a
	// multiple of N.
	RetrainEvery int
}

// ParamsConfig holds optional overrides for bandit parameters.
// Nil fields keep their default values.
type ParamsConfig struct {
	Epsilon          *float64
	RetrainThreshold *int
	MinTrainingRows  *int
	RetrainEvery     *int
}

// NewDefaultParams returns the standard bandit parameters.
func NewDefaultParams() Params {
	return Params{
		Epsilon:          0.1,
		RetrainThreshold: 10,
		MinTrainingRows:  5,
		RetrainEvery:     1,
	}
}

// NewParams creates Params with the given overrides applied to the defaults.
// Returns an error if any resulting value is invalid.
func NewParams(config ParamsConfig) (Params, error) {
	params := NewDefaultParams()

	if config.Epsilon != nil {
		params.Epsilon = *config.Epsilon
	}
	if config.RetrainThreshold != nil {
		params.RetrainThreshold = *config.RetrainThreshold
	}
	if config.MinTrainingRows != nil {
		params.MinTrainingRows = *config.MinTrainingRows
	}
	if config.RetrainEvery != nil {
		params.RetrainEvery = *config.RetrainEvery
	}

	if params.Epsilon < 0 || params.Epsilon > 1 {
		return Params{}, ErrInvalidEpsilon
	}
	if params.RetrainThreshold <= 0 {
		return Params{}, ErrInvalidRetrainThreshold
	}
	if params.MinTrainingRows <= 0 {
		return Params{}, ErrInvalidMinTrainingRows
	}
	if params.RetrainEvery < 1 {
		params.RetrainEvery = 1
	}

	return params, nil
}

// shouldRetrain reports whether an arm with the given buffer size is due for
// a refit under these parameters.
func (p Params) shouldRetrain(bufferLen int) bool {
	if bufferLen < p.RetrainThreshold {
		return false
	}
	if p.RetrainEvery <= 1 {
		return true
	}
	return bufferLen%p.RetrainEvery == 0
}
