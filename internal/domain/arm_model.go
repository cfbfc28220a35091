package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ArmModel-specific validation errors
var (
	// ErrArmLearnerIDEmpty is returned when an arm model's learner ID is empty or nil.
	ErrArmLearnerIDEmpty = errors.New("arm model learner ID cannot be empty")

	// ErrArmParametersInvalid is returned when a trained arm model's parameter
	// vectors are missing or of mismatched lengths.
	ErrArmParametersInvalid = errors.New("arm model parameters are malformed")
)

// TrainingExample is one buffered (feature vector, binary reward) observation
// collected for a bandit arm.
type TrainingExample struct {
	Features []float64 `json:"features"`
	Label    int       `json:"label"`
}

// ArmModel holds the learned state of one bandit arm: the reward model for a
// single (learner, exercise format) pair. An arm starts untrained and becomes
// trained once enough rewards have been buffered; it never transitions back.
// The buffer persists across turns and is never cleared, so every retrain fits
// on the arm's full accumulated history.
type ArmModel struct {
	LearnerID uuid.UUID      `json:"learner_id"`
	Format    ExerciseFormat `json:"format"`

	Trained      bool      `json:"trained"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	ScalerMean   []float64 `json:"scaler_mean"`
	ScalerScale  []float64 `json:"scaler_scale"`

	Buffer []TrainingExample `json:"buffer"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewArmModel creates an untrained arm model with an empty reward buffer.
func NewArmModel(learnerID uuid.UUID, format ExerciseFormat) (*ArmModel, error) {
	arm := &ArmModel{
		LearnerID: learnerID,
		Format:    format,
		UpdatedAt: time.Now().UTC(),
	}

	if err := arm.Validate(); err != nil {
		return nil, err
	}

	return arm, nil
}

// Validate checks if the ArmModel has valid data.
// Returns an error if any field fails validation.
func (a *ArmModel) Validate() error {
	if a.LearnerID == uuid.Nil {
		return ErrArmLearnerIDEmpty
	}

	if !a.Format.IsValid() {
		return ErrInvalidExerciseFormat
	}

	if a.Trained {
		if len(a.Coefficients) == 0 ||
			len(a.ScalerMean) != len(a.Coefficients) ||
			len(a.ScalerScale) != len(a.Coefficients) {
			return ErrArmParametersInvalid
		}
	}

	return nil
}

// Observe appends a reward observation to the arm's buffer.
func (a *ArmModel) Observe(features []float64, label int) {
	a.Buffer = append(a.Buffer, TrainingExample{Features: features, Label: label})
}
