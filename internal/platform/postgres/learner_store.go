package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/store"
)

// PostgresLearnerStore implements the store.LearnerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLearnerStore struct {
	db store.DBTX
}

// NewPostgresLearnerStore creates a new PostgreSQL implementation of the
// LearnerStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresLearnerStore(db store.DBTX) *PostgresLearnerStore {
	return &PostgresLearnerStore{
		db: db,
	}
}

// Ensure PostgresLearnerStore implements store.LearnerStore interface
var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// WithTx implements store.LearnerStore.WithTx
func (s *PostgresLearnerStore) WithTx(tx *sql.Tx) store.LearnerStore {
	return &PostgresLearnerStore{db: tx}
}

// Create implements store.LearnerStore.Create
func (s *PostgresLearnerStore) Create(ctx context.Context, learner *domain.Learner) error {
	log := logger.FromContext(ctx)

	if err := learner.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO learners (id, external_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		learner.ID,
		learner.ExternalID,
		learner.Name,
		learner.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create learner",
			"learner_id", learner.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.LearnerStore.GetByID
func (s *PostgresLearnerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	query := `
		SELECT id, external_id, name, created_at
		FROM learners
		WHERE id = $1
	`
	return s.scanLearner(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetByExternalID implements store.LearnerStore.GetByExternalID
func (s *PostgresLearnerStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Learner, error) {
	query := `
		SELECT id, external_id, name, created_at
		FROM learners
		WHERE external_id = $1
	`
	return s.scanLearner(ctx, s.db.QueryRowContext(ctx, query, externalID))
}

// GetOrCreate implements store.LearnerStore.GetOrCreate. A concurrent first
// contact for the same external identity loses the insert race on the unique
// index and falls back to reading the winner's row.
func (s *PostgresLearnerStore) GetOrCreate(ctx context.Context, externalID, name string) (*domain.Learner, error) {
	learner, err := s.GetByExternalID(ctx, externalID)
	if err == nil {
		return learner, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	learner, err = domain.NewLearner(externalID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if createErr := s.Create(ctx, learner); createErr != nil {
		if errors.Is(createErr, store.ErrDuplicate) {
			return s.GetByExternalID(ctx, externalID)
		}
		return nil, createErr
	}

	logger.FromContext(ctx).Info("created learner on first contact",
		"learner_id", learner.ID,
		"external_id", externalID)
	return learner, nil
}

// scanLearner maps a single learner row to the domain entity.
func (s *PostgresLearnerStore) scanLearner(ctx context.Context, row *sql.Row) (*domain.Learner, error) {
	var learner domain.Learner

	err := row.Scan(
		&learner.ID,
		&learner.ExternalID,
		&learner.Name,
		&learner.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrLearnerNotFound
		}
		logger.FromContext(ctx).Error("failed to scan learner row", "error", err)
		return nil, MapError(err)
	}

	return &learner, nil
}
