package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewArmModel(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()

	arm, err := NewArmModel(learnerID, FormatMultipleChoiceToSource)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if arm.Trained {
		t.Error("Expected new arm to be untrained")
	}

	if len(arm.Buffer) != 0 {
		t.Errorf("Expected empty buffer, got %d entries", len(arm.Buffer))
	}

	_, err = NewArmModel(uuid.Nil, FormatMultipleChoiceToSource)
	if err != ErrArmLearnerIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrArmLearnerIDEmpty, err)
	}

	_, err = NewArmModel(learnerID, ExerciseFormat("bogus"))
	if err != ErrInvalidExerciseFormat {
		t.Errorf("Expected error %v, got %v", ErrInvalidExerciseFormat, err)
	}
}

func TestArmModelValidateTrainedParameters(t *testing.T) {
	t.Parallel()
	arm, err := NewArmModel(uuid.New(), FormatTranslationToTarget)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	arm.Trained = true
	if err := arm.Validate(); err != ErrArmParametersInvalid {
		t.Errorf("Expected error %v for trained arm without parameters, got %v", ErrArmParametersInvalid, err)
	}

	arm.Coefficients = []float64{0.1, 0.2}
	arm.ScalerMean = []float64{0.0, 0.0}
	arm.ScalerScale = []float64{1.0} // length mismatch
	if err := arm.Validate(); err != ErrArmParametersInvalid {
		t.Errorf("Expected error %v for mismatched scaler, got %v", ErrArmParametersInvalid, err)
	}

	arm.ScalerScale = []float64{1.0, 1.0}
	if err := arm.Validate(); err != nil {
		t.Errorf("Expected no error for consistent parameters, got %v", err)
	}
}

func TestArmModelObserve(t *testing.T) {
	t.Parallel()
	arm, err := NewArmModel(uuid.New(), FormatTranslationToSource)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	arm.Observe([]float64{1, 2, 3}, 1)
	arm.Observe([]float64{4, 5, 6}, 0)

	if len(arm.Buffer) != 2 {
		t.Fatalf("Expected 2 buffered examples, got %d", len(arm.Buffer))
	}

	if arm.Buffer[0].Label != 1 || arm.Buffer[1].Label != 0 {
		t.Error("Expected buffer to preserve observation order and labels")
	}
}
