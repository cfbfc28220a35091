package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewLearner(t *testing.T) {
	t.Parallel()
	learner, err := NewLearner("tg:123456", "Anna")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if learner.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if learner.ExternalID != "tg:123456" {
		t.Errorf("Expected external ID tg:123456, got %s", learner.ExternalID)
	}

	if learner.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	_, err = NewLearner("", "Anna")
	if err != ErrLearnerExternalIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrLearnerExternalIDEmpty, err)
	}
}
