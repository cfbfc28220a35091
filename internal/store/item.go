package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
)

// SeenFilter narrows an active-item listing by whether items have been
// reviewed at least once.
type SeenFilter int

// SeenFilter values.
const (
	SeenAny SeenFilter = iota
	SeenOnly
	UnseenOnly
)

// ItemStore defines the interface for vocabulary item persistence.
type ItemStore interface {
	// Create saves a new vocabulary item to the store.
	// Returns ErrItemExists if the learner already has an active item with
	// the same source text.
	// Returns validation errors from the domain VocabularyItem if data is invalid.
	Create(ctx context.Context, item *domain.VocabularyItem) error

	// GetByID retrieves a vocabulary item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// GetBySourceText retrieves a learner's item by its source text,
	// active or not. Used to reactivate soft-deleted words on re-add.
	// Returns ErrItemNotFound if no such item exists.
	GetBySourceText(ctx context.Context, learnerID uuid.UUID, sourceText string) (*domain.VocabularyItem, error)

	// Update modifies an existing item. The item's ID identifies the record.
	// Returns ErrItemNotFound if the item does not exist.
	// Returns validation errors from the domain VocabularyItem if data is invalid.
	Update(ctx context.Context, item *domain.VocabularyItem) error

	// Deactivate soft-deletes an item: it stays in the store but no longer
	// takes part in scheduling.
	// Returns ErrItemNotFound if the item does not exist.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ListActive returns a learner's active items, optionally narrowed to
	// seen or unseen ones, ordered by insertion time (oldest first).
	ListActive(ctx context.Context, learnerID uuid.UUID, filter SeenFilter) ([]*domain.VocabularyItem, error)

	// ListDue returns the learner's active items whose next review is unset
	// or not after now, ordered for selection: never-scheduled items first,
	// then earliest next review, ties broken by lowest mastery level.
	ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time) ([]*domain.VocabularyItem, error)

	// UpdateMasteryLevels persists a batch of predicted mastery levels for a
	// learner's items in one operation. Unknown item IDs are skipped.
	UpdateMasteryLevels(ctx context.Context, learnerID uuid.UUID, levels map[uuid.UUID]float64) error

	// WithTx returns a new ItemStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ItemStore
}
