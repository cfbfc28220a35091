package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/store"
)

// PostgresArmModelStore implements the store.ArmModelStore interface
// using a PostgreSQL database as the storage backend. The parameter vectors
// and the observation buffer are stored as JSONB columns; this is the single
// codec for arm model persistence.
type PostgresArmModelStore struct {
	db store.DBTX
}

// NewPostgresArmModelStore creates a new PostgreSQL implementation of the
// ArmModelStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresArmModelStore(db store.DBTX) *PostgresArmModelStore {
	return &PostgresArmModelStore{
		db: db,
	}
}

// Ensure PostgresArmModelStore implements store.ArmModelStore interface
var _ store.ArmModelStore = (*PostgresArmModelStore)(nil)

// WithTx implements store.ArmModelStore.WithTx
func (s *PostgresArmModelStore) WithTx(tx *sql.Tx) store.ArmModelStore {
	return &PostgresArmModelStore{db: tx}
}

// Get implements store.ArmModelStore.Get
func (s *PostgresArmModelStore) Get(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) (*domain.ArmModel, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT learner_id, format, trained, coefficients, intercept,
			scaler_mean, scaler_scale, buffer, updated_at
		FROM arm_models
		WHERE learner_id = $1 AND format = $2
	`

	var arm domain.ArmModel
	var coefficients, scalerMean, scalerScale, buffer []byte

	err := s.db.QueryRowContext(ctx, query, learnerID, format).Scan(
		&arm.LearnerID,
		&arm.Format,
		&arm.Trained,
		&coefficients,
		&arm.Intercept,
		&scalerMean,
		&scalerScale,
		&buffer,
		&arm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrArmModelNotFound
		}
		log.Error("failed to get arm model",
			"learner_id", learnerID,
			"format", format,
			"error", err)
		return nil, MapError(err)
	}

	vectors := armVectors{
		coefficients: coefficients,
		scalerMean:   scalerMean,
		scalerScale:  scalerScale,
		buffer:       buffer,
	}
	if err := decodeArmVectors(&arm, vectors); err != nil {
		log.Warn("stored arm model is corrupt",
			"learner_id", learnerID,
			"format", format,
			"error", err)
		return nil, err
	}

	return &arm, nil
}

// armVectors holds the JSONB parameter columns of one arm row.
type armVectors struct {
	coefficients []byte
	scalerMean   []byte
	scalerScale  []byte
	buffer       []byte
}

// encodeArmVectors serializes an arm's parameter vectors and observation
// buffer for the JSONB columns.
func encodeArmVectors(arm *domain.ArmModel) (armVectors, error) {
	var v armVectors
	var err error

	if v.coefficients, err = json.Marshal(arm.Coefficients); err != nil {
		return armVectors{}, fmt.Errorf("failed to encode arm coefficients: %w", err)
	}
	if v.scalerMean, err = json.Marshal(arm.ScalerMean); err != nil {
		return armVectors{}, fmt.Errorf("failed to encode arm scaler mean: %w", err)
	}
	if v.scalerScale, err = json.Marshal(arm.ScalerScale); err != nil {
		return armVectors{}, fmt.Errorf("failed to encode arm scaler scale: %w", err)
	}
	if v.buffer, err = json.Marshal(arm.Buffer); err != nil {
		return armVectors{}, fmt.Errorf("failed to encode arm buffer: %w", err)
	}

	return v, nil
}

// decodeArmVectors fills an arm's parameter vectors and observation buffer
// from the JSONB columns. Decode failures carry store.ErrArmModelCorrupt so
// the format selector can exclude the arm rather than abort the turn.
func decodeArmVectors(arm *domain.ArmModel, v armVectors) error {
	if err := json.Unmarshal(v.coefficients, &arm.Coefficients); err != nil {
		return fmt.Errorf("%w: failed to decode coefficients: %v", store.ErrArmModelCorrupt, err)
	}
	if err := json.Unmarshal(v.scalerMean, &arm.ScalerMean); err != nil {
		return fmt.Errorf("%w: failed to decode scaler mean: %v", store.ErrArmModelCorrupt, err)
	}
	if err := json.Unmarshal(v.scalerScale, &arm.ScalerScale); err != nil {
		return fmt.Errorf("%w: failed to decode scaler scale: %v", store.ErrArmModelCorrupt, err)
	}
	if err := json.Unmarshal(v.buffer, &arm.Buffer); err != nil {
		return fmt.Errorf("%w: failed to decode buffer: %v", store.ErrArmModelCorrupt, err)
	}
	return nil
}

// Save implements store.ArmModelStore.Save. Upserts on the
// (learner, format) key.
func (s *PostgresArmModelStore) Save(ctx context.Context, arm *domain.ArmModel) error {
	log := logger.FromContext(ctx)

	if err := arm.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	vectors, err := encodeArmVectors(arm)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO arm_models (learner_id, format, trained, coefficients, intercept,
			scaler_mean, scaler_scale, buffer, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (learner_id, format) DO UPDATE
		SET trained = EXCLUDED.trained,
			coefficients = EXCLUDED.coefficients,
			intercept = EXCLUDED.intercept,
			scaler_mean = EXCLUDED.scaler_mean,
			scaler_scale = EXCLUDED.scaler_scale,
			buffer = EXCLUDED.buffer,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		arm.LearnerID,
		arm.Format,
		arm.Trained,
		vectors.coefficients,
		arm.Intercept,
		vectors.scalerMean,
		vectors.scalerScale,
		vectors.buffer,
		arm.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save arm model",
			"learner_id", arm.LearnerID,
			"format", arm.Format,
			"error", err)
		return MapError(err)
	}

	return nil
}
