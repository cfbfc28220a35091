package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
)

// ReviewEventStore defines the interface for the append-only review log.
type ReviewEventStore interface {
	// Append adds a review event to the log. Events are immutable once
	// written; there is no update or delete.
	// Returns validation errors from the domain ReviewEvent if data is invalid.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByLearner returns all of a learner's review events in
	// chronological order (oldest first).
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.ReviewEvent, error)

	// ListByItem returns the review events for one item in chronological
	// order (oldest first).
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewEvent, error)

	// ListByFormat returns a learner's review events for one exercise format
	// in chronological order (oldest first).
	ListByFormat(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) ([]*domain.ReviewEvent, error)

	// WithTx returns a new ReviewEventStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ReviewEventStore
}
