package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
)

// ArmModelStore defines the interface for persisting bandit arm models.
// The stored fields are the serialized coefficient vector, the intercept,
// the per-feature scaling mean and scale, the trained flag, the accumulated
// reward buffer, and the last-updated timestamp.
type ArmModelStore interface {
	// Get retrieves the arm model for a (learner, format) pair.
	// Returns ErrArmModelNotFound if no model has been saved yet.
	Get(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) (*domain.ArmModel, error)

	// Save inserts or replaces the arm model for its (learner, format) pair.
	// Returns validation errors from the domain ArmModel if data is invalid.
	Save(ctx context.Context, arm *domain.ArmModel) error

	// WithTx returns a new ArmModelStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ArmModelStore
}
