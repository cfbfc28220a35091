package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/domain/srs"
	"github.com/mkuiper/taalcoach/internal/exercise"
	"github.com/mkuiper/taalcoach/internal/ml/bandit"
	"github.com/mkuiper/taalcoach/internal/ml/feature"
	"github.com/mkuiper/taalcoach/internal/ml/mastery"
	"github.com/mkuiper/taalcoach/internal/platform/logger"
	"github.com/mkuiper/taalcoach/internal/store"
)

// defaultRetrainEvery is the mastery retrain cadence: retrain after every
// Nth answered exercise in a session.
const defaultRetrainEvery = 10

// defaultPrevInterval stands in for the previous review interval when an
// item has fewer than two logged reviews.
const defaultPrevInterval = 1

// Verify interface compliance at compile time
var _ Service = (*learningServiceImpl)(nil)

// learningServiceImpl implements the Service interface.
type learningServiceImpl struct {
	db           *sql.DB
	learners     store.LearnerStore
	items        store.ItemStore
	events       store.ReviewEventStore
	arms         store.ArmModelStore
	srsService   srs.Service
	predictor    *mastery.Predictor
	selector     *bandit.Selector
	rng          exercise.Rand
	retrainEvery int
	logger       *slog.Logger
}

// Config collects the collaborators of the learning service.
type Config struct {
	// DB is the connection the transactional turn update runs on. A nil DB
	// executes updates without transactional guarantees; only in-memory
	// store implementations should run that way.
	DB *sql.DB

	Learners store.LearnerStore
	Items    store.ItemStore
	Events   store.ReviewEventStore
	Arms     store.ArmModelStore

	SRS       srs.Service
	Predictor *mastery.Predictor
	Selector  *bandit.Selector

	// Rng drives distractor sampling and option shuffling.
	Rng exercise.Rand

	// RetrainEvery is the mastery retrain cadence in answers per session;
	// 1 retrains after every answer. Zero or negative uses the default.
	RetrainEvery int

	Logger *slog.Logger
}

// NewService creates a learning service from its collaborators.
func NewService(cfg Config) Service {
	if cfg.Learners == nil {
		panic("learners store cannot be nil")
	}
	if cfg.Items == nil {
		panic("items store cannot be nil")
	}
	if cfg.Events == nil {
		panic("events store cannot be nil")
	}
	if cfg.Arms == nil {
		panic("arms store cannot be nil")
	}
	if cfg.SRS == nil {
		panic("srs service cannot be nil")
	}
	if cfg.Predictor == nil {
		panic("mastery predictor cannot be nil")
	}
	if cfg.Selector == nil {
		panic("format selector cannot be nil")
	}
	if cfg.Rng == nil {
		panic("rng cannot be nil")
	}

	if cfg.RetrainEvery <= 0 {
		cfg.RetrainEvery = defaultRetrainEvery
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &learningServiceImpl{
		db:           cfg.DB,
		learners:     cfg.Learners,
		items:        cfg.Items,
		events:       cfg.Events,
		arms:         cfg.Arms,
		srsService:   cfg.SRS,
		predictor:    cfg.Predictor,
		selector:     cfg.Selector,
		rng:          cfg.Rng,
		retrainEvery: cfg.RetrainEvery,
		logger:       cfg.Logger.With(slog.String("component", "learning_service")),
	}
}

// PickNext implements Service.PickNext.
func (s *learningServiceImpl) PickNext(ctx context.Context, learnerExternalID string) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	now := time.Now().UTC()

	due, err := s.items.ListDue(ctx, learner.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", err)
	}
	if len(due) > 0 {
		log.Debug("picked due item",
			slog.String("learner_id", learner.ID.String()),
			slog.String("item_id", due[0].ID.String()),
			slog.Int("due_count", len(due)))
		return due[0], nil
	}

	unseen, err := s.items.ListActive(ctx, learner.ID, store.UnseenOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list unseen items: %w", err)
	}
	if len(unseen) > 0 {
		log.Debug("picked unseen item",
			slog.String("learner_id", learner.ID.String()),
			slog.String("item_id", unseen[0].ID.String()))
		return unseen[0], nil
	}

	seen, err := s.items.ListActive(ctx, learner.ID, store.SeenOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list seen items: %w", err)
	}
	if len(seen) == 0 {
		return nil, ErrNoActiveItems
	}

	item, err := s.pickWeakest(ctx, seen)
	if err != nil {
		return nil, err
	}
	log.Debug("picked weakest item",
		slog.String("learner_id", learner.ID.String()),
		slog.String("item_id", item.ID.String()))
	return item, nil
}

// pickWeakest selects the seen item with the lowest predicted mastery,
// breaking ties by least recently seen. Falls back to the stored mastery
// level when the learner's model is untrained.
func (s *learningServiceImpl) pickWeakest(ctx context.Context, seen []*domain.VocabularyItem) (*domain.VocabularyItem, error) {
	best := seen[0]
	bestScore, err := s.masteryOf(ctx, best)
	if err != nil {
		return nil, err
	}

	for _, item := range seen[1:] {
		score, err := s.masteryOf(ctx, item)
		if err != nil {
			return nil, err
		}
		if score < bestScore || (score == bestScore && seenBefore(item, best)) {
			best = item
			bestScore = score
		}
	}
	return best, nil
}

func (s *learningServiceImpl) masteryOf(ctx context.Context, item *domain.VocabularyItem) (float64, error) {
	pred, err := s.predictor.Predict(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("failed to predict mastery: %w", err)
	}
	if pred.Modeled {
		return pred.Value, nil
	}
	return item.MasteryLevel, nil
}

func seenBefore(a, b *domain.VocabularyItem) bool {
	switch {
	case a.LastSeenAt == nil:
		return true
	case b.LastSeenAt == nil:
		return false
	default:
		return a.LastSeenAt.Before(*b.LastSeenAt)
	}
}

// SelectFormat implements Service.SelectFormat.
func (s *learningServiceImpl) SelectFormat(ctx context.Context, learnerExternalID string, itemID uuid.UUID) (domain.ExerciseFormat, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve learner: %w", err)
	}

	item, err := s.getOwnedItem(ctx, learner.ID, itemID)
	if err != nil {
		return "", err
	}

	features, err := s.banditFeatures(ctx, item)
	if err != nil {
		return "", err
	}

	format, err := s.selector.SelectFormat(ctx, learner.ID, features)
	if err != nil {
		return "", fmt.Errorf("failed to select format: %w", err)
	}

	// Remember the choice on the item. Informational; a failure here must
	// not lose the selected format.
	item.PreferredFormat = &format
	item.UpdatedAt = time.Now().UTC()
	if err := s.items.Update(ctx, item); err != nil {
		log.Warn("failed to record preferred format",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
	}

	return format, nil
}

// RenderPrompt implements Service.RenderPrompt.
func (s *learningServiceImpl) RenderPrompt(ctx context.Context, itemID uuid.UUID, format domain.ExerciseFormat) (*exercise.Prompt, error) {
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var pool []*domain.VocabularyItem
	if format.IsMultipleChoice() {
		pool, err = s.items.ListActive(ctx, item.LearnerID, store.SeenAny)
		if err != nil {
			return nil, fmt.Errorf("failed to list distractor pool: %w", err)
		}
	}

	prompt, err := exercise.RenderPrompt(s.rng, item, format, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}

// CheckAnswer implements Service.CheckAnswer.
func (s *learningServiceImpl) CheckAnswer(ctx context.Context, itemID uuid.UUID, format domain.ExerciseFormat, rawAnswer string) (bool, error) {
	if !format.IsValid() {
		return false, ErrInvalidFormat
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, ErrItemNotFound
		}
		return false, fmt.Errorf("failed to get item: %w", err)
	}

	correct, err := exercise.CheckAnswer(item, format, rawAnswer)
	if err != nil {
		return false, fmt.Errorf("failed to check answer: %w", err)
	}
	return correct, nil
}

// RecordOutcome implements Service.RecordOutcome.
func (s *learningServiceImpl) RecordOutcome(ctx context.Context, learnerExternalID string, itemID uuid.UUID, format domain.ExerciseFormat, correct bool, latencySeconds float64) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	var updated *domain.VocabularyItem
	err = s.runInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		items := s.items
		events := s.events
		selector := s.selector
		if tx != nil {
			items = s.items.WithTx(tx)
			events = s.events.WithTx(tx)
			selector = s.selector.WithArms(s.arms.WithTx(tx))
		}

		item, err := s.getOwnedItemVia(ctx, items, learner.ID, itemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return ErrItemInactive
		}

		// The bandit's reward features describe the turn as presented, so
		// they are extracted before the schedule update mutates the item.
		features, err := s.banditFeaturesVia(ctx, events, item)
		if err != nil {
			return err
		}

		event, err := domain.NewReviewEvent(learner.ID, item.ID, format, correct, latencySeconds)
		if err != nil {
			return fmt.Errorf("failed to build review event: %w", err)
		}
		if err := events.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to append review event: %w", err)
		}

		// The interval the answer confirms is the gap between the two most
		// recent log entries, the just-appended one included.
		prevInterval, err := s.previousIntervalDays(ctx, events, item.ID)
		if err != nil {
			return err
		}

		next, err := s.srsService.ApplyAnswer(item, correct, prevInterval, event.OccurredAt)
		if err != nil {
			return fmt.Errorf("failed to apply schedule update: %w", err)
		}
		next.ObserveResponseTime(latencySeconds)

		if err := items.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		if err := selector.UpdateReward(ctx, learner.ID, format, features, correct, latencySeconds); err != nil {
			return fmt.Errorf("failed to update bandit reward: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) ||
			errors.Is(err, ErrItemNotOwned) ||
			errors.Is(err, ErrItemInactive) {
			return nil, err
		}
		log.Error("failed to record outcome",
			slog.String("learner_id", learner.ID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record outcome: %w", err)
	}

	log.Debug("recorded outcome",
		slog.String("learner_id", learner.ID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("format", string(format)),
		slog.Bool("correct", correct),
		slog.Int("repetition_count", updated.RepetitionCount),
		slog.Float64("ease_factor", updated.EaseFactor))

	return updated, nil
}

// RetrainIfDue implements Service.RetrainIfDue.
func (s *learningServiceImpl) RetrainIfDue(ctx context.Context, learnerExternalID string, state SessionState) (SessionState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	state.AnswersSinceRetrain++
	if state.AnswersSinceRetrain < s.retrainEvery {
		return state, nil
	}

	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return state, fmt.Errorf("failed to resolve learner: %w", err)
	}

	trained, err := s.predictor.Train(ctx, learner.ID)
	if err != nil {
		return state, fmt.Errorf("failed to retrain mastery model: %w", err)
	}
	if trained {
		if err := s.predictor.ApplyToAll(ctx, learner.ID); err != nil {
			return state, fmt.Errorf("failed to apply mastery predictions: %w", err)
		}
		log.Debug("mastery model retrained and applied",
			slog.String("learner_id", learner.ID.String()))
	}

	state.AnswersSinceRetrain = 0
	return state, nil
}

// AddWord implements Service.AddWord.
func (s *learningServiceImpl) AddWord(ctx context.Context, learnerExternalID, sourceText, targetText string) (*domain.VocabularyItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	existing, err := s.items.GetBySourceText(ctx, learner.ID, sourceText)
	if err != nil && !store.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up word: %w", err)
	}
	if existing != nil {
		if existing.Active {
			return nil, ErrWordExists
		}
		// Reactivate the soft-deleted word, history intact.
		existing.Active = true
		existing.TargetText = targetText
		existing.UpdatedAt = time.Now().UTC()
		if err := s.items.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate word: %w", err)
		}
		log.Info("reactivated word",
			slog.String("learner_id", learner.ID.String()),
			slog.String("item_id", existing.ID.String()))
		return existing, nil
	}

	item, err := domain.NewVocabularyItem(learner.ID, sourceText, targetText)
	if err != nil {
		return nil, fmt.Errorf("invalid word: %w", err)
	}
	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrWordExists
		}
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	log.Info("added word",
		slog.String("learner_id", learner.ID.String()),
		slog.String("item_id", item.ID.String()))
	return item, nil
}

// RemoveWord implements Service.RemoveWord.
func (s *learningServiceImpl) RemoveWord(ctx context.Context, learnerExternalID, sourceText string) error {
	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return fmt.Errorf("failed to resolve learner: %w", err)
	}

	item, err := s.items.GetBySourceText(ctx, learner.ID, sourceText)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to look up word: %w", err)
	}
	if !item.Active {
		return ErrItemNotFound
	}

	if err := s.items.Deactivate(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to deactivate word: %w", err)
	}
	return nil
}

// ListVocabulary implements Service.ListVocabulary.
func (s *learningServiceImpl) ListVocabulary(ctx context.Context, learnerExternalID string) ([]*domain.VocabularyItem, error) {
	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	items, err := s.items.ListActive(ctx, learner.ID, store.SeenAny)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	return items, nil
}

// ReviewStats implements Service.ReviewStats.
func (s *learningServiceImpl) ReviewStats(ctx context.Context, learnerExternalID string) (*ReviewStats, error) {
	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	due, err := s.items.ListDue(ctx, learner.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", err)
	}
	unseen, err := s.items.ListActive(ctx, learner.ID, store.UnseenOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list unseen items: %w", err)
	}
	seen, err := s.items.ListActive(ctx, learner.ID, store.SeenOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list seen items: %w", err)
	}

	return &ReviewStats{
		DueForReview: len(due),
		NewAvailable: len(unseen),
		InProgress:   len(seen),
	}, nil
}

// FormatPerformance implements Service.FormatPerformance.
func (s *learningServiceImpl) FormatPerformance(ctx context.Context, learnerExternalID string) ([]FormatPerformance, error) {
	learner, err := s.learners.GetOrCreate(ctx, learnerExternalID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve learner: %w", err)
	}

	performance := make([]FormatPerformance, 0, len(domain.AllExerciseFormats()))
	for _, format := range domain.AllExerciseFormats() {
		events, err := s.events.ListByFormat(ctx, learner.ID, format)
		if err != nil {
			return nil, fmt.Errorf("failed to list events for format %s: %w", format, err)
		}

		accuracy := 0.0
		if len(events) > 0 {
			correct := 0
			for _, e := range events {
				if e.Correct {
					correct++
				}
			}
			accuracy = float64(correct) / float64(len(events))
		}

		performance = append(performance, FormatPerformance{
			Format:   format,
			Reviews:  len(events),
			Accuracy: accuracy,
		})
	}

	return performance, nil
}

// getOwnedItem loads an item and verifies the learner owns it.
func (s *learningServiceImpl) getOwnedItem(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.VocabularyItem, error) {
	return s.getOwnedItemVia(ctx, s.items, learnerID, itemID)
}

func (s *learningServiceImpl) getOwnedItemVia(ctx context.Context, items store.ItemStore, learnerID, itemID uuid.UUID) (*domain.VocabularyItem, error) {
	item, err := items.GetByID(ctx, itemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item.LearnerID != learnerID {
		return nil, ErrItemNotOwned
	}
	return item, nil
}

// banditFeatures builds the 10-dimensional turn vector for an item.
func (s *learningServiceImpl) banditFeatures(ctx context.Context, item *domain.VocabularyItem) ([]float64, error) {
	return s.banditFeaturesVia(ctx, s.events, item)
}

func (s *learningServiceImpl) banditFeaturesVia(ctx context.Context, events store.ReviewEventStore, item *domain.VocabularyItem) ([]float64, error) {
	itemEvents, err := events.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item events: %w", err)
	}
	learnerEvents, err := events.ListByLearner(ctx, item.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list learner events: %w", err)
	}

	now := time.Now().UTC()
	return feature.BanditVector(
		feature.ExtractWordFeatures(item),
		feature.ExtractSessionFeatures(itemEvents, now),
		feature.ExtractLearnerFeatures(learnerEvents, now),
	), nil
}

// previousIntervalDays derives the interval the latest answer confirmed: the
// day gap between the two most recent events in the item's log.
func (s *learningServiceImpl) previousIntervalDays(ctx context.Context, events store.ReviewEventStore, itemID uuid.UUID) (int, error) {
	log, err := events.ListByItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to list item events: %w", err)
	}
	if len(log) < 2 {
		return defaultPrevInterval, nil
	}

	last := log[len(log)-1].OccurredAt
	prev := log[len(log)-2].OccurredAt
	days := int(last.Sub(prev).Hours() / 24)
	if days < defaultPrevInterval {
		return defaultPrevInterval, nil
	}
	return days, nil
}

// runInTransaction runs fn inside a database transaction when a connection
// is configured, and directly otherwise.
func (s *learningServiceImpl) runInTransaction(ctx context.Context, fn store.TxFn) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, s.db, fn)
}
