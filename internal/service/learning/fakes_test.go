package learning

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkuiper/taalcoach/internal/domain"
	"github.com/mkuiper/taalcoach/internal/store"
)

// In-memory store fakes for service tests. WithTx returns the fake itself;
// the service runs without a database connection in tests.

type fakeLearnerStore struct {
	learners map[string]*domain.Learner
}

func newFakeLearnerStore() *fakeLearnerStore {
	return &fakeLearnerStore{learners: make(map[string]*domain.Learner)}
}

func (f *fakeLearnerStore) Create(_ context.Context, learner *domain.Learner) error {
	if _, ok := f.learners[learner.ExternalID]; ok {
		return store.ErrDuplicate
	}
	f.learners[learner.ExternalID] = learner
	return nil
}

func (f *fakeLearnerStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	for _, l := range f.learners {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrLearnerNotFound
}

func (f *fakeLearnerStore) GetByExternalID(_ context.Context, externalID string) (*domain.Learner, error) {
	if l, ok := f.learners[externalID]; ok {
		return l, nil
	}
	return nil, store.ErrLearnerNotFound
}

func (f *fakeLearnerStore) GetOrCreate(ctx context.Context, externalID, name string) (*domain.Learner, error) {
	if l, ok := f.learners[externalID]; ok {
		return l, nil
	}
	learner, err := domain.NewLearner(externalID, name)
	if err != nil {
		return nil, err
	}
	f.learners[externalID] = learner
	return learner, nil
}

func (f *fakeLearnerStore) WithTx(_ *sql.Tx) store.LearnerStore { return f }

type fakeItemStore struct {
	items map[uuid.UUID]*domain.VocabularyItem
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[uuid.UUID]*domain.VocabularyItem)}
}

func (f *fakeItemStore) Create(_ context.Context, item *domain.VocabularyItem) error {
	for _, existing := range f.items {
		if existing.LearnerID == item.LearnerID &&
			existing.SourceText == item.SourceText &&
			existing.Active && item.Active {
			return store.ErrItemExists
		}
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) GetByID(_ context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	if item, ok := f.items[id]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, store.ErrItemNotFound
}

func (f *fakeItemStore) GetBySourceText(_ context.Context, learnerID uuid.UUID, sourceText string) (*domain.VocabularyItem, error) {
	var newest *domain.VocabularyItem
	for _, item := range f.items {
		if item.LearnerID != learnerID || item.SourceText != sourceText {
			continue
		}
		if newest == nil || item.CreatedAt.After(newest.CreatedAt) {
			newest = item
		}
	}
	if newest == nil {
		return nil, store.ErrItemNotFound
	}
	clone := *newest
	return &clone, nil
}

func (f *fakeItemStore) Update(_ context.Context, item *domain.VocabularyItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return store.ErrItemNotFound
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) Deactivate(_ context.Context, id uuid.UUID) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrItemNotFound
	}
	item.Active = false
	return nil
}

func (f *fakeItemStore) ListActive(_ context.Context, learnerID uuid.UUID, filter store.SeenFilter) ([]*domain.VocabularyItem, error) {
	var out []*domain.VocabularyItem
	for _, item := range f.items {
		if item.LearnerID != learnerID || !item.Active {
			continue
		}
		switch filter {
		case store.SeenOnly:
			if item.TimesSeen == 0 {
				continue
			}
		case store.UnseenOnly:
			if item.TimesSeen > 0 {
				continue
			}
		}
		clone := *item
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeItemStore) ListDue(_ context.Context, learnerID uuid.UUID, now time.Time) ([]*domain.VocabularyItem, error) {
	var out []*domain.VocabularyItem
	for _, item := range f.items {
		if item.LearnerID != learnerID || !item.Active {
			continue
		}
		if item.NextReviewAt != nil && item.NextReviewAt.After(now) {
			continue
		}
		clone := *item
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.NextReviewAt == nil && b.NextReviewAt != nil:
			return true
		case a.NextReviewAt != nil && b.NextReviewAt == nil:
			return false
		case a.NextReviewAt != nil && b.NextReviewAt != nil && !a.NextReviewAt.Equal(*b.NextReviewAt):
			return a.NextReviewAt.Before(*b.NextReviewAt)
		default:
			return a.MasteryLevel < b.MasteryLevel
		}
	})
	return out, nil
}

func (f *fakeItemStore) UpdateMasteryLevels(_ context.Context, learnerID uuid.UUID, levels map[uuid.UUID]float64) error {
	for id, level := range levels {
		if item, ok := f.items[id]; ok && item.LearnerID == learnerID {
			item.MasteryLevel = level
		}
	}
	return nil
}

func (f *fakeItemStore) WithTx(_ *sql.Tx) store.ItemStore { return f }

type fakeEventStore struct {
	events []*domain.ReviewEvent
}

func (f *fakeEventStore) Append(_ context.Context, event *domain.ReviewEvent) error {
	clone := *event
	f.events = append(f.events, &clone)
	return nil
}

func (f *fakeEventStore) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.ReviewEvent, error) {
	var out []*domain.ReviewEvent
	for _, e := range f.events {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) ListByItem(_ context.Context, itemID uuid.UUID) ([]*domain.ReviewEvent, error) {
	var out []*domain.ReviewEvent
	for _, e := range f.events {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) ListByFormat(_ context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) ([]*domain.ReviewEvent, error) {
	var out []*domain.ReviewEvent
	for _, e := range f.events {
		if e.LearnerID == learnerID && e.Format == format {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) WithTx(_ *sql.Tx) store.ReviewEventStore { return f }

type fakeArmStore struct {
	arms map[string]*domain.ArmModel
}

func newFakeArmStore() *fakeArmStore {
	return &fakeArmStore{arms: make(map[string]*domain.ArmModel)}
}

func armKey(learnerID uuid.UUID, format domain.ExerciseFormat) string {
	return learnerID.String() + "/" + string(format)
}

func (f *fakeArmStore) Get(_ context.Context, learnerID uuid.UUID, format domain.ExerciseFormat) (*domain.ArmModel, error) {
	if arm, ok := f.arms[armKey(learnerID, format)]; ok {
		return arm, nil
	}
	return nil, store.ErrArmModelNotFound
}

func (f *fakeArmStore) Save(_ context.Context, arm *domain.ArmModel) error {
	f.arms[armKey(arm.LearnerID, arm.Format)] = arm
	return nil
}

func (f *fakeArmStore) WithTx(_ *sql.Tx) store.ArmModelStore { return f }
