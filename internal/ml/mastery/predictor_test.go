package mastery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/store"
)

// fakeItemSource is an in-memory ItemSource for tests.
type fakeItemSource struct {
	items     []*domain.VocabularyItem
	applied   map[uuid.UUID]float64
	listErr   error
	updateErr error
}

func (f *fakeItemSource) ListActive(_ context.Context, learnerID uuid.UUID, filter store.SeenFilter) ([]*domain.VocabularyItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.VocabularyItem
	for _, it := range f.items {
		if it.LearnerID != learnerID || !it.Active {
			continue
		}
		switch filter {
		case store.SeenOnly:
			if it.TimesSeen == 0 {
				continue
			}
		case store.UnseenOnly:
			if it.TimesSeen > 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeItemSource) UpdateMasteryLevels(_ context.Context, _ uuid.UUID, levels map[uuid.UUID]float64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.applied = levels
	return nil
}

// fakeEventSource is an in-memory EventSource for tests.
type fakeEventSource struct {
	events []*domain.ReviewEvent
}

func (f *fakeEventSource) ListByItem(_ context.Context, itemID uuid.UUID) ([]*domain.ReviewEvent, error) {
	var out []*domain.ReviewEvent
	for _, e := range f.events {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventSource) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.ReviewEvent, error) {
	var out []*domain.ReviewEvent
	for _, e := range f.events {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seededLearner builds a learner with mixed mastered and struggling items and
// a matching review history.
func seededLearner(t *testing.T) (uuid.UUID, *fakeItemSource, *fakeEventSource) {
	t.Helper()
	learnerID := uuid.New()
	items := &fakeItemSource{}
	events := &fakeEventSource{}

	words := []struct {
		source  string
		target  string
		mastery float64
		correct int
		seen    int
	}{
		{"het huis", "the house", 0.9, 9, 10},
		{"de fiets", "the bicycle", 0.85, 8, 9},
		{"lopen", "to walk", 0.8, 8, 10},
		{"kaas", "cheese", 0.2, 1, 4},
		{"spreken", "to speak", 0.15, 1, 5},
		{"brood", "bread", 0.1, 0, 3},
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for _, w := range words {
		item, err := domain.NewVocabularyItem(learnerID, w.source, w.target)
		require.NoError(t, err)
		item.TimesSeen = w.seen
		item.TimesCorrect = w.correct
		item.MasteryLevel = w.mastery
		items.items = append(items.items, item)

		for i := 0; i < w.seen; i++ {
			ev, err := domain.NewReviewEvent(
				learnerID, item.ID,
				domain.FormatMultipleChoiceToTarget,
				i < w.correct, 4.5,
			)
			require.NoError(t, err)
			ev.OccurredAt = base.Add(time.Duration(i) * 24 * time.Hour)
			events.events = append(events.events, ev)
		}
	}

	return learnerID, items, events
}

func TestPredictor_Train(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("trains with mixed labels", func(t *testing.T) {
		t.Parallel()
		learnerID, items, events := seededLearner(t)
		p := New(items, events, newTestLogger())

		trained, err := p.Train(ctx, learnerID)
		require.NoError(t, err)
		assert.True(t, trained)
		assert.True(t, p.IsTrained(learnerID))
	})

	t.Run("skips below minimum rows", func(t *testing.T) {
		t.Parallel()
		learnerID := uuid.New()
		items := &fakeItemSource{}
		for i := 0; i < MinTrainingRows-1; i++ {
			item, err := domain.NewVocabularyItem(learnerID, "woord", "word")
			require.NoError(t, err)
			item.TimesSeen = 2
			items.items = append(items.items, item)
		}
		p := New(items, &fakeEventSource{}, newTestLogger())

		trained, err := p.Train(ctx, learnerID)
		require.NoError(t, err)
		assert.False(t, trained)
		assert.False(t, p.IsTrained(learnerID))
	})

	t.Run("skips single-class labels", func(t *testing.T) {
		t.Parallel()
		learnerID := uuid.New()
		items := &fakeItemSource{}
		for _, source := range []string{"one", "two", "three", "four", "five"} {
			item, err := domain.NewVocabularyItem(learnerID, source, source)
			require.NoError(t, err)
			item.TimesSeen = 3
			item.MasteryLevel = 0.1
			items.items = append(items.items, item)
		}
		p := New(items, &fakeEventSource{}, newTestLogger())

		trained, err := p.Train(ctx, learnerID)
		require.NoError(t, err)
		assert.False(t, trained)
		assert.False(t, p.IsTrained(learnerID))
	})

	t.Run("propagates store errors", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemSource{listErr: errors.New("connection reset")}
		p := New(items, &fakeEventSource{}, newTestLogger())

		_, err := p.Train(ctx, uuid.New())
		assert.Error(t, err)
	})
}

func TestPredictor_Predict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("untrained learner gets zero default", func(t *testing.T) {
		t.Parallel()
		learnerID := uuid.New()
		p := New(&fakeItemSource{}, &fakeEventSource{}, newTestLogger())

		item, err := domain.NewVocabularyItem(learnerID, "kaas", "cheese")
		require.NoError(t, err)
		item.TimesSeen = 3

		pred, err := p.Predict(ctx, item)
		require.NoError(t, err)
		assert.False(t, pred.Modeled)
		assert.Zero(t, pred.Value)
	})

	t.Run("unseen item gets zero default even when trained", func(t *testing.T) {
		t.Parallel()
		learnerID, items, events := seededLearner(t)
		p := New(items, events, newTestLogger())
		_, err := p.Train(ctx, learnerID)
		require.NoError(t, err)

		unseen, err := domain.NewVocabularyItem(learnerID, "water", "water")
		require.NoError(t, err)

		pred, err := p.Predict(ctx, unseen)
		require.NoError(t, err)
		assert.False(t, pred.Modeled)
		assert.Zero(t, pred.Value)
	})

	t.Run("trained model separates strong from weak items", func(t *testing.T) {
		t.Parallel()
		learnerID, items, events := seededLearner(t)
		p := New(items, events, newTestLogger())
		_, err := p.Train(ctx, learnerID)
		require.NoError(t, err)

		strong := items.items[0] // "het huis", 9/10 correct
		weak := items.items[5]   // "brood", 0/3 correct

		strongPred, err := p.Predict(ctx, strong)
		require.NoError(t, err)
		weakPred, err := p.Predict(ctx, weak)
		require.NoError(t, err)

		assert.True(t, strongPred.Modeled)
		assert.True(t, weakPred.Modeled)
		assert.Greater(t, strongPred.Value, weakPred.Value)
	})

	t.Run("nil item gets zero default", func(t *testing.T) {
		t.Parallel()
		p := New(&fakeItemSource{}, &fakeEventSource{}, newTestLogger())
		pred, err := p.Predict(ctx, nil)
		require.NoError(t, err)
		assert.False(t, pred.Modeled)
	})
}

func TestPredictor_ApplyToAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no-op when untrained", func(t *testing.T) {
		t.Parallel()
		items := &fakeItemSource{}
		p := New(items, &fakeEventSource{}, newTestLogger())

		require.NoError(t, p.ApplyToAll(ctx, uuid.New()))
		assert.Nil(t, items.applied)
	})

	t.Run("persists predictions for all seen items", func(t *testing.T) {
		t.Parallel()
		learnerID, items, events := seededLearner(t)
		p := New(items, events, newTestLogger())
		_, err := p.Train(ctx, learnerID)
		require.NoError(t, err)

		require.NoError(t, p.ApplyToAll(ctx, learnerID))
		require.Len(t, items.applied, len(items.items))
		for id, level := range items.applied {
			assert.GreaterOrEqual(t, level, 0.0, "item %s", id)
			assert.LessOrEqual(t, level, 1.0, "item %s", id)
		}
	})

	t.Run("propagates persistence errors", func(t *testing.T) {
		t.Parallel()
		learnerID, items, events := seededLearner(t)
		items.updateErr = errors.New("write failed")
		p := New(items, events, newTestLogger())
		_, err := p.Train(ctx, learnerID)
		require.NoError(t, err)

		assert.Error(t, p.ApplyToAll(ctx, learnerID))
	})
}
