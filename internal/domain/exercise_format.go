package domain

import "errors"

// ExerciseFormat identifies how an exercise for a vocabulary item is
// presented to the learner: multiple choice or free-text translation, in
// either direction. The string values double as persistence keys for the
// per-format bandit arm models, so they must remain stable.
type ExerciseFormat string

// The fixed action set of the exercise bandit.
const (
	FormatMultipleChoiceToSource ExerciseFormat = "multiple_choice_en_to_nl"
	FormatMultipleChoiceToTarget ExerciseFormat = "multiple_choice_nl_to_en"
	FormatTranslationToSource    ExerciseFormat = "translation_en_to_nl"
	FormatTranslationToTarget    ExerciseFormat = "translation_nl_to_en"
)

// ErrInvalidExerciseFormat is returned when an exercise format tag is not
// one of the four known formats.
var ErrInvalidExerciseFormat = errors.New("invalid exercise format")

// AllExerciseFormats lists every format in a stable order.
func AllExerciseFormats() []ExerciseFormat {
	return []ExerciseFormat{
		FormatMultipleChoiceToSource,
		FormatMultipleChoiceToTarget,
		FormatTranslationToSource,
		FormatTranslationToTarget,
	}
}

// IsValid reports whether the format is one of the known formats.
func (f ExerciseFormat) IsValid() bool {
	switch f {
	case FormatMultipleChoiceToSource,
		FormatMultipleChoiceToTarget,
		FormatTranslationToSource,
		FormatTranslationToTarget:
		return true
	default:
		return false
	}
}

// IsMultipleChoice reports whether the format presents answer options.
func (f ExerciseFormat) IsMultipleChoice() bool {
	return f == FormatMultipleChoiceToSource || f == FormatMultipleChoiceToTarget
}

// AnswersInSource reports whether the learner must produce the source-language
// text (the word being learned) rather than its translation.
func (f ExerciseFormat) AnswersInSource() bool {
	return f == FormatMultipleChoiceToSource || f == FormatTranslationToSource
}
