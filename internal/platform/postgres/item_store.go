package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/store"
)

// itemColumns is the column list shared by every vocabulary item query, in
// scanItem order.
const itemColumns = `id, learner_id, source_text, target_text, active,
	times_seen, times_correct, average_response_time, mastery_level,
	preferred_format, last_seen_at, next_review_at, repetition_count,
	ease_factor, created_at, updated_at`

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db store.DBTX
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the
// ItemStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresItemStore(db store.DBTX) *PostgresItemStore {
	return &PostgresItemStore{
		db: db,
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{db: tx}
}

// Create implements store.ItemStore.Create
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContext(ctx)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO vocabulary_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.LearnerID,
		item.SourceText,
		item.TargetText,
		item.Active,
		item.TimesSeen,
		item.TimesCorrect,
		item.AverageResponseTime,
		item.MasteryLevel,
		formatToNullString(item.PreferredFormat),
		timeToNullTime(item.LastSeenAt),
		timeToNullTime(item.NextReviewAt),
		item.RepetitionCount,
		item.EaseFactor,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrItemExists, err)
		}
		log.Error("failed to create vocabulary item",
			"item_id", item.ID,
			"learner_id", item.LearnerID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ItemStore.GetByID
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	query := `SELECT ` + itemColumns + ` FROM vocabulary_items WHERE id = $1`
	return s.scanItem(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetBySourceText implements store.ItemStore.GetBySourceText. When a learner
// has both a deactivated and a re-added row for the same text, the newest row
// wins.
func (s *PostgresItemStore) GetBySourceText(ctx context.Context, learnerID uuid.UUID, sourceText string) (*domain.VocabularyItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM vocabulary_items
		WHERE learner_id = $1 AND source_text = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanItem(ctx, s.db.QueryRowContext(ctx, query, learnerID, sourceText))
}

// Update implements store.ItemStore.Update
func (s *PostgresItemStore) Update(ctx context.Context, item *domain.VocabularyItem) error {
	log := logger.FromContext(ctx)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE vocabulary_items
		SET source_text = $2,
			target_text = $3,
			active = $4,
			times_seen = $5,
			times_correct = $6,
			average_response_time = $7,
			mastery_level = $8,
			preferred_format = $9,
			last_seen_at = $10,
			next_review_at = $11,
			repetition_count = $12,
			ease_factor = $13,
			updated_at = $14
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.SourceText,
		item.TargetText,
		item.Active,
		item.TimesSeen,
		item.TimesCorrect,
		item.AverageResponseTime,
		item.MasteryLevel,
		formatToNullString(item.PreferredFormat),
		timeToNullTime(item.LastSeenAt),
		timeToNullTime(item.NextReviewAt),
		item.RepetitionCount,
		item.EaseFactor,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update vocabulary item",
			"item_id", item.ID,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "vocabulary item"); err != nil {
		return store.ErrItemNotFound
	}

	return nil
}

// Deactivate implements store.ItemStore.Deactivate
func (s *PostgresItemStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE vocabulary_items
		SET active = FALSE, updated_at = $2
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		logger.FromContext(ctx).Error("failed to deactivate vocabulary item",
			"item_id", id,
			"error", err)
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "vocabulary item"); err != nil {
		return store.ErrItemNotFound
	}

	return nil
}

// ListActive implements store.ItemStore.ListActive
func (s *PostgresItemStore) ListActive(ctx context.Context, learnerID uuid.UUID, filter store.SeenFilter) ([]*domain.VocabularyItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM vocabulary_items
		WHERE learner_id = $1 AND active
	`
	switch filter {
	case store.SeenOnly:
		query += ` AND times_seen > 0`
	case store.UnseenOnly:
		query += ` AND times_seen = 0`
	}
	query += ` ORDER BY created_at ASC`

	return s.queryItems(ctx, query, learnerID)
}

// ListDue implements store.ItemStore.ListDue. Never-scheduled items sort
// first, then by earliest next review, ties broken by lowest mastery.
func (s *PostgresItemStore) ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time) ([]*domain.VocabularyItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM vocabulary_items
		WHERE learner_id = $1
			AND active
			AND (next_review_at IS NULL OR next_review_at <= $2)
		ORDER BY next_review_at ASC NULLS FIRST, mastery_level ASC
	`
	return s.queryItems(ctx, query, learnerID, now)
}

// UpdateMasteryLevels implements store.ItemStore.UpdateMasteryLevels
func (s *PostgresItemStore) UpdateMasteryLevels(ctx context.Context, learnerID uuid.UUID, levels map[uuid.UUID]float64) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE vocabulary_items
		SET mastery_level = $3, updated_at = $4
		WHERE id = $1 AND learner_id = $2
	`

	now := time.Now().UTC()
	for itemID, level := range levels {
		if _, err := s.db.ExecContext(ctx, query, itemID, learnerID, level, now); err != nil {
			log.Error("failed to update mastery level",
				"item_id", itemID,
				"learner_id", learnerID,
				"error", err)
			return MapError(err)
		}
	}

	return nil
}

// queryItems runs an item query and scans all rows.
func (s *PostgresItemStore) queryItems(ctx context.Context, query string, args ...any) ([]*domain.VocabularyItem, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query vocabulary items", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.VocabularyItem
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			log.Error("failed to scan vocabulary item row", "error", err)
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating vocabulary item rows", "error", err)
		return nil, MapError(err)
	}

	return items, nil
}

// scanItem maps a single item row to the domain entity.
func (s *PostgresItemStore) scanItem(ctx context.Context, row *sql.Row) (*domain.VocabularyItem, error) {
	item, err := scanItemRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		logger.FromContext(ctx).Error("failed to scan vocabulary item row", "error", err)
		return nil, MapError(err)
	}
	return item, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemRow(row rowScanner) (*domain.VocabularyItem, error) {
	var item domain.VocabularyItem
	var preferredFormat sql.NullString
	var lastSeenAt, nextReviewAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.LearnerID,
		&item.SourceText,
		&item.TargetText,
		&item.Active,
		&item.TimesSeen,
		&item.TimesCorrect,
		&item.AverageResponseTime,
		&item.MasteryLevel,
		&preferredFormat,
		&lastSeenAt,
		&nextReviewAt,
		&item.RepetitionCount,
		&item.EaseFactor,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if preferredFormat.Valid {
		format := domain.ExerciseFormat(preferredFormat.String)
		item.PreferredFormat = &format
	}
	if lastSeenAt.Valid {
		t := lastSeenAt.Time
		item.LastSeenAt = &t
	}
	if nextReviewAt.Valid {
		t := nextReviewAt.Time
		item.NextReviewAt = &t
	}

	return &item, nil
}

func formatToNullString(f *domain.ExerciseFormat) sql.NullString {
	if f == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*f), Valid: true}
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
