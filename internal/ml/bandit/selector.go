// Package bandit implements the epsilon-greedy contextual bandit that picks
// an exercise format per turn. Each (learner, format) pair owns one arm: a
// logistic reward model plus its accumulated observation buffer, persisted
// through the arm-model store so learning survives restarts.
package bandit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/ml/linear"
	"github.com/mkuiper/taalcoach/internal/store"
)

// Reward shaping constants. A turn's reward combines correctness with a
// latency bonus that decays linearly to zero at maxRewardLatency seconds.
const (
	maxRewardLatency   = 20.0
	latencyBonusWeight = 0.2
	rewardThreshold    = 0.5
)

// Fallback weights when no arm is trained yet. Multiple-choice formats are
// favoured 3:1 over free-text translation to keep early sessions gentle.
const (
	fallbackWeightMultipleChoice = 3
	fallbackWeightTranslation    = 1
)

// ArmSource is the persistence access the selector needs for arm models.
type ArmSource interface {
	Get(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) (*domain.ArmModel, error)
	Save(ctx context.Context, arm *domain.ArmModel) error
}

// Rand is the randomness source used for exploration and fallback draws.
// *math/rand.Rand satisfies it; tests inject a deterministic source.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Selector is the epsilon-greedy exercise-format bandit.
type Selector struct {
	arms   ArmSource
	params Params
	train  linear.TrainConfig
	rng    Rand
	logger *slog.Logger
}

// New creates a format selector over the given arm store.
func New(arms ArmSource, params Params, rng Rand, logger *slog.Logger) *Selector {
	if arms == nil {
		panic("arms cannot be nil")
	}
	if rng == nil {
		panic("rng cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Selector{
		arms:   arms,
		params: params,
		train:  linear.DefaultTrainConfig(),
		rng:    rng,
		logger: logger.With(slog.String("component", "format_bandit")),
	}
}

// WithArms returns a copy of the selector bound to a different arm source,
// typically a transaction-scoped store, so reward updates can join a caller's
// transaction.
func (s *Selector) WithArms(arms ArmSource) *Selector {
	if arms == nil {
		panic("arms cannot be nil")
	}
	clone := *s
	clone.arms = arms
	return &clone
}

// SelectFormat picks an exercise format for the learner's next turn given the
// turn's feature vector. With probability epsilon it explores uniformly at
// random; otherwise it exploits the best-scoring trained arm. When no arm is
// trained yet it falls back to a weighted random draw. A single malformed or
// undecodable arm is skipped, not fatal.
func (s *Selector) SelectFormat(ctx context.Context, learnerID uuid.UUID, features []float64) (domain.ExerciseFormat, error) {
	formats := domain.AllExerciseFormats()

	if s.rng.Float64() < s.params.Epsilon {
		format := formats[s.rng.Intn(len(formats))]
		s.logger.Debug("exploring",
			slog.String("learner_id", learnerID.String()),
			slog.String("format", string(format)))
		return format, nil
	}

	bestFormat := domain.ExerciseFormat("")
	bestScore := -1.0
	for _, format := range formats {
		arm, err := s.arms.Get(ctx, learnerID, format)
		if store.IsNotFoundError(err) {
			continue
		}
		if errors.Is(err, store.ErrArmModelCorrupt) {
			s.logger.Warn("skipping corrupt arm model",
				slog.String("learner_id", learnerID.String()),
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to load arm model: %w", err)
		}
		if !arm.Trained {
			continue
		}

		score, err := s.scoreArm(arm, features)
		if err != nil {
			s.logger.Warn("skipping malformed arm model",
				slog.String("learner_id", learnerID.String()),
				slog.String("format", string(format)),
				slog.String("error", err.Error()))
			continue
		}

		if score > bestScore {
			bestScore = score
			bestFormat = format
		}
	}

	if bestFormat == "" {
		format := s.fallbackFormat(formats)
		s.logger.Debug("no trained arms, using weighted fallback",
			slog.String("learner_id", learnerID.String()),
			slog.String("format", string(format)))
		return format, nil
	}

	s.logger.Debug("exploiting",
		slog.String("learner_id", learnerID.String()),
		slog.String("format", string(bestFormat)),
		slog.Float64("score", bestScore))
	return bestFormat, nil
}

// scoreArm runs the arm's reward model on the turn features.
func (s *Selector) scoreArm(arm *domain.ArmModel, features []float64) (float64, error) {
	if err := arm.Validate(); err != nil {
		return 0, err
	}

	scaler := &linear.Scaler{Mean: arm.ScalerMean, Scale: arm.ScalerScale}
	scaled, err := scaler.Transform(features)
	if err != nil {
		return 0, err
	}

	model := &linear.Model{Weights: arm.Coefficients, Intercept: arm.Intercept}
	return model.PredictProba(scaled)
}

// fallbackFormat draws a format with multiple-choice favoured over free text.
func (s *Selector) fallbackFormat(formats []domain.ExerciseFormat) domain.ExerciseFormat {
	total := 0
	for _, f := range formats {
		total += s.fallbackWeight(f)
	}

	draw := s.rng.Intn(total)
	for _, f := range formats {
		draw -= s.fallbackWeight(f)
		if draw < 0 {
			return f
		}
	}
	return formats[len(formats)-1]
}

func (s *Selector) fallbackWeight(format domain.ExerciseFormat) int {
	if format.IsMultipleChoice() {
		return fallbackWeightMultipleChoice
	}
	return fallbackWeightTranslation
}

// RewardLabel derives the binary training label for one turn. The reward is
// 1.0 for a correct answer plus a bonus for fast responses; the label is
// positive when the combined reward clears the threshold, so an incorrect
// answer can never earn a positive label.
func RewardLabel(correct bool, responseTime float64) int {
	reward := 0.0
	if correct {
		reward = 1.0
	}
	if responseTime < maxRewardLatency {
		bonus := (maxRewardLatency - responseTime) / maxRewardLatency
		if bonus > 0 {
			reward += latencyBonusWeight * bonus
		}
	}

	if reward > rewardThreshold {
		return 1
	}
	return 0
}

// UpdateReward records the outcome of a turn on the arm that served it,
// buffering the observation and refitting the arm's reward model when the
// retrain cadence says it is due. An arm that cannot be refitted (labels all
// one class) keeps its previous parameters; a trained arm never becomes
// untrained again.
func (s *Selector) UpdateReward(ctx context.Context, learnerID uuid.UUID, format domain.ExerciseFormat, features []float64, correct bool, responseTime float64) error {
	arm, err := s.arms.Get(ctx, learnerID, format)
	if store.IsNotFoundError(err) {
		arm, err = domain.NewArmModel(learnerID, format)
		if err != nil {
			return fmt.Errorf("failed to create arm model: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load arm model: %w", err)
	}

	arm.Observe(features, RewardLabel(correct, responseTime))

	if s.params.shouldRetrain(len(arm.Buffer)) && len(arm.Buffer) >= s.params.MinTrainingRows {
		if err := s.refit(arm); err != nil {
			return err
		}
	}

	arm.UpdatedAt = time.Now().UTC()
	if err := s.arms.Save(ctx, arm); err != nil {
		return fmt.Errorf("failed to save arm model: %w", err)
	}

	return nil
}

// refit fits the arm's reward model on its full buffer.
func (s *Selector) refit(arm *domain.ArmModel) error {
	X := make([][]float64, len(arm.Buffer))
	y := make([]int, len(arm.Buffer))
	for i, ex := range arm.Buffer {
		X[i] = ex.Features
		y[i] = ex.Label
	}

	scaler, err := linear.FitScaler(X)
	if err != nil {
		return fmt.Errorf("failed to fit arm scaler: %w", err)
	}
	scaled, err := scaler.TransformAll(X)
	if err != nil {
		return fmt.Errorf("failed to scale arm buffer: %w", err)
	}

	model, err := linear.Fit(scaled, y, s.train)
	if err == linear.ErrSingleClass {
		s.logger.Debug("skipping arm refit: single label class",
			slog.String("learner_id", arm.LearnerID.String()),
			slog.String("format", string(arm.Format)),
			slog.Int("buffer", len(arm.Buffer)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fit arm model: %w", err)
	}

	arm.Trained = true
	arm.Coefficients = model.Weights
	arm.Intercept = model.Intercept
	arm.ScalerMean = scaler.Mean
	arm.ScalerScale = scaler.Scale

	s.logger.Info("arm model retrained",
		slog.String("learner_id", arm.LearnerID.String()),
		slog.String("format", string(arm.Format)),
		slog.Int("buffer", len(arm.Buffer)))
	return nil
}
