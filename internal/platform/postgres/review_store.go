package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/store"
)

// PostgresReviewEventStore implements the store.ReviewEventStore interface
// using a PostgreSQL database as the storage backend. The review log is
// append-only; rows are never updated or deleted.
type PostgresReviewEventStore struct {
	db store.DBTX
}

// NewPostgresReviewEventStore creates a new PostgreSQL implementation of the
// ReviewEventStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresReviewEventStore(db store.DBTX) *PostgresReviewEventStore {
	return &PostgresReviewEventStore{
		db: db,
	}
}

// Ensure PostgresReviewEventStore implements store.ReviewEventStore interface
var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// WithTx implements store.ReviewEventStore.WithTx
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{db: tx}
}

// Append implements store.ReviewEventStore.Append
func (s *PostgresReviewEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContext(ctx)

	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_events (id, learner_id, item_id, format, correct, response_time, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.LearnerID,
		event.ItemID,
		event.Format,
		event.Correct,
		event.ResponseTime,
		event.OccurredAt,
	)
	if err != nil {
		log.Error("failed to append review event",
			"event_id", event.ID,
			"item_id", event.ItemID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// ListByLearner implements store.ReviewEventStore.ListByLearner
func (s *PostgresReviewEventStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.ReviewEvent, error) {
	query := `
		SELECT id, learner_id, item_id, format, correct, response_time, occurred_at
		FROM review_events
		WHERE learner_id = $1
		ORDER BY occurred_at ASC
	`
	return s.queryEvents(ctx, query, learnerID)
}

// ListByItem implements store.ReviewEventStore.ListByItem
func (s *PostgresReviewEventStore) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewEvent, error) {
	query := `
		SELECT id, learner_id, item_id, format, correct, response_time, occurred_at
		FROM review_events
		WHERE item_id = $1
		ORDER BY occurred_at ASC
	`
	return s.queryEvents(ctx, query, itemID)
}

// ListByFormat implements store.ReviewEventStore.ListByFormat
func (s *PostgresReviewEventStore) ListByFormat(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) ([]*domain.ReviewEvent, error) {
	query := `
		SELECT id, learner_id, item_id, format, correct, response_time, occurred_at
		FROM review_events
		WHERE learner_id = $1 AND format = $2
		ORDER BY occurred_at ASC
	`
	return s.queryEvents(ctx, query, learnerID, format)
}

// queryEvents runs an event query and scans all rows in log order.
func (s *PostgresReviewEventStore) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.ReviewEvent, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review events", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var events []*domain.ReviewEvent
	for rows.Next() {
		var event domain.ReviewEvent
		if err := rows.Scan(
			&event.ID,
			&event.LearnerID,
			&event.ItemID,
			&event.Format,
			&event.Correct,
			&event.ResponseTime,
			&event.OccurredAt,
		); err != nil {
			log.Error("failed to scan review event row", "error", err)
			return nil, MapError(err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating review event rows", "error", err)
		return nil, MapError(err)
	}

	return events, nil
}
