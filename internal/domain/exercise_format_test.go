package domain

import "testing"

func TestExerciseFormatIsValid(t *testing.T) {
	t.Parallel()
	for _, f := range AllExerciseFormats() {
		if !f.IsValid() {
			t.Errorf("Expected format %q to be valid", f)
		}
	}

	if ExerciseFormat("flashcard").IsValid() {
		t.Error("Expected unknown format to be invalid")
	}

	if ExerciseFormat("").IsValid() {
		t.Error("Expected empty format to be invalid")
	}
}

func TestExerciseFormatPredicates(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		format         ExerciseFormat
		multipleChoice bool
		answersSource  bool
	}{
		{FormatMultipleChoiceToSource, true, true},
		{FormatMultipleChoiceToTarget, true, false},
		{FormatTranslationToSource, false, true},
		{FormatTranslationToTarget, false, false},
	}

	for _, tc := range testCases {
		if got := tc.format.IsMultipleChoice(); got != tc.multipleChoice {
			t.Errorf("%s: IsMultipleChoice() = %v, want %v", tc.format, got, tc.multipleChoice)
		}
		if got := tc.format.AnswersInSource(); got != tc.answersSource {
			t.Errorf("%s: AnswersInSource() = %v, want %v", tc.format, got, tc.answersSource)
		}
	}
}
