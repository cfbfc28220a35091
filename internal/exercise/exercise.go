// Package exercise renders exercise prompts and grades learner answers. It is
// a pure leaf: callers supply the item, the format the bandit picked, and (for
// multiple choice) the pool of candidate distractors.
package exercise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// distractorCount is the number of wrong options a multiple-choice prompt
// carries alongside the correct one.
const distractorCount = 3

// containmentMinLength is the shortest trimmed answer the substring
// containment rule applies to. Shorter answers match too easily.
const containmentMinLength = 3

// Grammatical articles stripped before the relaxed free-text comparison.
var leadingArticles = []string{"de ", "het ", "een "}

// Rendering errors
var (
	// ErrNilItem is returned when no item is given to render or grade.
	ErrNilItem = errors.New("vocabulary item cannot be nil")
)

// Rand is the randomness source for distractor sampling and option
// shuffling. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Prompt is a rendered exercise ready for the front end. Options is non-nil
// exactly for multiple-choice formats and always contains the correct answer.
type Prompt struct {
	Format   domain.ExerciseFormat `json:"format"`
	Question string                `json:"question"`
	Options  []string              `json:"options,omitempty"`
}

// RenderPrompt builds the prompt for an item in the given format. For
// multiple-choice formats up to three distractors are sampled from
// candidates, which should be the learner's other active items; the item
// itself and inactive entries are filtered out. Free-text formats ignore
// candidates.
func RenderPrompt(rng Rand, item *domain.VocabularyItem, format domain.ExerciseFormat, candidates []*domain.VocabularyItem) (*Prompt, error) {
	if item == nil {
		return nil, ErrNilItem
	}
	if !format.IsValid() {
		return nil, domain.ErrInvalidExerciseFormat
	}

	if !format.IsMultipleChoice() {
		return &Prompt{Format: format, Question: translationQuestion(item, format)}, nil
	}

	if rng == nil {
		panic("rng cannot be nil for multiple choice rendering")
	}

	pool := make([]*domain.VocabularyItem, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.ID == item.ID || !c.Active {
			continue
		}
		pool = append(pool, c)
	}

	options := []string{expectedAnswer(item, format)}
	for i := 0; i < distractorCount && len(pool) > 0; i++ {
		j := rng.Intn(len(pool))
		options = append(options, expectedAnswer(pool[j], format))
		pool[j] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &Prompt{
		Format:   format,
		Question: multipleChoiceQuestion(item, format),
		Options:  options,
	}, nil
}

// CheckAnswer grades a raw learner answer against the item for the given
// format. Multiple choice requires a case-insensitive exact match. Free text
// additionally accepts a match after stripping a leading article from both
// sides, or substring containment in either direction for answers longer
// than three characters.
func CheckAnswer(item *domain.VocabularyItem, format domain.ExerciseFormat, rawAnswer string) (bool, error) {
	if item == nil {
		return false, ErrNilItem
	}
	if !format.IsValid() {
		return false, domain.ErrInvalidExerciseFormat
	}

	answer := strings.ToLower(strings.TrimSpace(rawAnswer))
	expected := strings.ToLower(strings.TrimSpace(expectedAnswer(item, format)))

	if format.IsMultipleChoice() {
		return answer == expected, nil
	}

	if answer == expected {
		return true, nil
	}

	if stripLeadingArticle(answer) == stripLeadingArticle(expected) {
		return true, nil
	}

	if len([]rune(answer)) > containmentMinLength &&
		(strings.Contains(expected, answer) || strings.Contains(answer, expected)) {
		return true, nil
	}

	return false, nil
}

// expectedAnswer is the text the learner must produce for the format's
// direction.
func expectedAnswer(item *domain.VocabularyItem, format domain.ExerciseFormat) string {
	if format.AnswersInSource() {
		return item.SourceText
	}
	return item.TargetText
}

func multipleChoiceQuestion(item *domain.VocabularyItem, format domain.ExerciseFormat) string {
	if format.AnswersInSource() {
		return fmt.Sprintf("What is the Dutch translation of '%s'?", item.TargetText)
	}
	return fmt.Sprintf("What is the English translation of '%s'?", item.SourceText)
}

func translationQuestion(item *domain.VocabularyItem, format domain.ExerciseFormat) string {
	if format.AnswersInSource() {
		return fmt.Sprintf("Translate to Dutch: '%s'", item.TargetText)
	}
	return fmt.Sprintf("Translate to English: '%s'", item.SourceText)
}

func stripLeadingArticle(s string) string {
	for _, article := range leadingArticles {
		if strings.HasPrefix(s, article) {
			return strings.TrimSpace(strings.TrimPrefix(s, article))
		}
	}
	return s
}
