// Package mastery implements the per-learner mastery predictor: a logistic
// model over the 15-dimensional feature vectors that, once trained, replaces
// the scheduler's counter-based mastery heuristic.
package mastery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/ml/feature"
	"github.com/mkuiper/taalcoach/internal/ml/linear"
	"github.com/mkuiper/taalcoach/internal/store"
)

// LabelThreshold is the heuristic mastery level at or above which an item
// counts as mastered for training purposes.
const LabelThreshold = 0.7

// MinTrainingRows is the smallest training set a per-learner model fits on.
const MinTrainingRows = 5

// ItemSource is the read/write access the predictor needs to vocabulary items.
type ItemSource interface {
	ListActive(ctx context.Context, learnerID uuid.UUID, filter store.SeenFilter) ([]*domain.VocabularyItem, error)
	UpdateMasteryLevels(ctx context.Context, learnerID uuid.UUID, levels map[uuid.UUID]float64) error
}

// EventSource is the read access the predictor needs to the review log.
type EventSource interface {
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewEvent, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.ReviewEvent, error)
}

// Prediction is a tagged prediction result. Modeled reports whether the value
// came from a trained model rather than the untrained/unseen default.
type Prediction struct {
	Value   float64
	Modeled bool
}

// Predictor trains and applies one mastery model per learner. Models live in
// memory only; they are cheap to refit from the review log and, unlike the
// bandit arms, are not persisted.
type Predictor struct {
	items  ItemSource
	events EventSource
	train  linear.TrainConfig
	logger *slog.Logger

	mu     sync.RWMutex
	models map[uuid.UUID]*learnerModel
}

type learnerModel struct {
	scaler *linear.Scaler
	model  *linear.Model
}

// New creates a mastery predictor over the given sources.
func New(items ItemSource, events EventSource, logger *slog.Logger) *Predictor {
	if items == nil {
		panic("items cannot be nil")
	}
	if events == nil {
		panic("events cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Predictor{
		items:  items,
		events: events,
		train:  linear.DefaultTrainConfig(),
		logger: logger.With(slog.String("component", "mastery_predictor")),
		models: make(map[uuid.UUID]*learnerModel),
	}
}

// IsTrained reports whether a model has been fitted for the learner.
func (p *Predictor) IsTrained(learnerID uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.models[learnerID]
	return ok
}

// Train fits the learner's mastery model on all of their seen items.
// Training silently skips, leaving any previous model in place, when there
// are fewer than MinTrainingRows seen items or the labels are single-class.
// Returns true when a model was (re)fitted.
func (p *Predictor) Train(ctx context.Context, learnerID uuid.UUID) (bool, error) {
	seen, err := p.items.ListActive(ctx, learnerID, store.SeenOnly)
	if err != nil {
		return false, fmt.Errorf("failed to list seen items: %w", err)
	}

	if len(seen) < MinTrainingRows {
		p.logger.Debug("skipping mastery training: not enough rows",
			slog.String("learner_id", learnerID.String()),
			slog.Int("rows", len(seen)))
		return false, nil
	}

	learnerEvents, err := p.events.ListByLearner(ctx, learnerID)
	if err != nil {
		return false, fmt.Errorf("failed to list learner events: %w", err)
	}

	now := time.Now().UTC()
	learnerFeatures := feature.ExtractLearnerFeatures(learnerEvents, now)

	X := make([][]float64, 0, len(seen))
	y := make([]int, 0, len(seen))
	for _, item := range seen {
		itemEvents, err := p.events.ListByItem(ctx, item.ID)
		if err != nil {
			return false, fmt.Errorf("failed to list item events: %w", err)
		}

		vec := feature.MasteryVector(
			feature.ExtractWordFeatures(item),
			feature.ExtractSessionFeatures(itemEvents, now),
			learnerFeatures,
		)
		X = append(X, vec)

		label := 0
		if item.MasteryLevel >= LabelThreshold {
			label = 1
		}
		y = append(y, label)
	}

	scaler, err := linear.FitScaler(X)
	if err != nil {
		return false, fmt.Errorf("failed to fit scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(X)
	if err != nil {
		return false, fmt.Errorf("failed to scale training data: %w", err)
	}

	model, err := linear.Fit(scaled, y, p.train)
	if err == linear.ErrSingleClass {
		p.logger.Debug("skipping mastery training: single label class",
			slog.String("learner_id", learnerID.String()))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fit mastery model: %w", err)
	}

	p.mu.Lock()
	p.models[learnerID] = &learnerModel{scaler: scaler, model: model}
	p.mu.Unlock()

	p.logger.Info("mastery model trained",
		slog.String("learner_id", learnerID.String()),
		slog.Int("rows", len(X)))
	return true, nil
}

// Predict returns the learner's predicted mastery probability for an item.
// Unseen items and untrained learners get the zero default.
func (p *Predictor) Predict(ctx context.Context, item *domain.VocabularyItem) (Prediction, error) {
	if item == nil || item.TimesSeen == 0 {
		return Prediction{}, nil
	}

	p.mu.RLock()
	lm := p.models[item.LearnerID]
	p.mu.RUnlock()
	if lm == nil {
		return Prediction{}, nil
	}

	itemEvents, err := p.events.ListByItem(ctx, item.ID)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to list item events: %w", err)
	}
	learnerEvents, err := p.events.ListByLearner(ctx, item.LearnerID)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to list learner events: %w", err)
	}

	now := time.Now().UTC()
	vec := feature.MasteryVector(
		feature.ExtractWordFeatures(item),
		feature.ExtractSessionFeatures(itemEvents, now),
		feature.ExtractLearnerFeatures(learnerEvents, now),
	)

	scaled, err := lm.scaler.Transform(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to scale features: %w", err)
	}
	prob, err := lm.model.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to predict mastery: %w", err)
	}

	return Prediction{Value: prob, Modeled: true}, nil
}

// ApplyToAll predicts mastery for every seen item of the learner and persists
// the batch, overwriting the scheduler's heuristic values. No-op when the
// learner has no trained model.
func (p *Predictor) ApplyToAll(ctx context.Context, learnerID uuid.UUID) error {
	if !p.IsTrained(learnerID) {
		return nil
	}

	seen, err := p.items.ListActive(ctx, learnerID, store.SeenOnly)
	if err != nil {
		return fmt.Errorf("failed to list seen items: %w", err)
	}

	levels := make(map[uuid.UUID]float64, len(seen))
	for _, item := range seen {
		pred, err := p.Predict(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to predict mastery for item %s: %w", item.ID, err)
		}
		if pred.Modeled {
			levels[item.ID] = pred.Value
		}
	}

	if len(levels) == 0 {
		return nil
	}

	if err := p.items.UpdateMasteryLevels(ctx, learnerID, levels); err != nil {
		return fmt.Errorf("failed to persist mastery predictions: %w", err)
	}

	p.logger.Debug("applied mastery predictions",
		slog.String("learner_id", learnerID.String()),
		slog.Int("items", len(levels)))
	return nil
}
