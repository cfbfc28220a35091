package feature

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/mkuiper/taalcoach/internal/domain"
)

func newItem(t *testing.T, source, target string) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(uuid.New(), source, target)
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

func TestExtractWordFeaturesNilItem(t *testing.T) {
	t.Parallel() // Enable parallel execution
	got := ExtractWordFeatures(nil)

	if got.Difficulty != 0.5 {
		t.Errorf("Expected neutral difficulty 0.5, got %v", got.Difficulty)
	}
	if got.Length != 0 {
		t.Errorf("Expected zero length, got %d", got.Length)
	}
}

func TestExtractWordFeaturesFlags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		source  string
		target  string
		article bool
		comp    bool
		diac    bool
		verb    bool
		number  bool
	}{
		{
			name:    "article-prefixed noun",
			source:  "de fiets",
			target:  "bicycle",
			article: true,
			comp:    true, // article makes it multi-token
		},
		{
			name:   "verb-like translation",
			source: "lopen",
			target: "to walk",
			verb:   true,
		},
		{
			name:   "number word",
			source: "drie",
			target: "three",
			number: true,
		},
		{
			name:   "diacritics",
			source: "één",
			target: "one",
			diac:   true,
			number: true,
		},
		{
			name:   "plain word",
			source: "huis",
			target: "house",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractWordFeatures(newItem(t, tc.source, tc.target))
			if got.HasArticle != tc.article {
				t.Errorf("HasArticle = %v, want %v", got.HasArticle, tc.article)
			}
			if got.IsCompound != tc.comp {
				t.Errorf("IsCompound = %v, want %v", got.IsCompound, tc.comp)
			}
			if got.HasDiacritics != tc.diac {
				t.Errorf("HasDiacritics = %v, want %v", got.HasDiacritics, tc.diac)
			}
			if got.IsVerb != tc.verb {
				t.Errorf("IsVerb = %v, want %v", got.IsVerb, tc.verb)
			}
			if got.IsNumber != tc.number {
				t.Errorf("IsNumber = %v, want %v", got.IsNumber, tc.number)
			}
		})
	}
}

func TestWordDifficulty(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		source   string
		target   string
		expected float64
	}{
		{
			name:   "plain short word",
			source: "huis",
			target: "house",
			// 4 chars * 0.03 + 0.1 default POS
			expected: 0.22,
		},
		{
			name:   "article-prefixed noun",
			source: "de fiets",
			target: "bicycle",
			// 8 chars * 0.03 + 0.2 article + 0.15 compound + 0.1 noun
			expected: 0.69,
		},
		{
			name:   "verb",
			source: "lopen",
			target: "to walk",
			// 5 chars * 0.03 + 0.2 verb
			expected: 0.35,
		},
		{
			name:   "long compound with article caps length factor",
			source: "de verjaardagskalender van oma",
			target: "grandma's birthday calendar",
			// 0.5 length cap + 0.2 article + 0.15 compound + 0.1 noun
			expected: 0.95,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractWordFeatures(newItem(t, tc.source, tc.target)).Difficulty
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Difficulty(%q) = %v, want %v", tc.source, got, tc.expected)
			}
		})
	}
}

func TestWordDifficultyClampedToOne(t *testing.T) {
	t.Parallel()
	// Long, accented, article-prefixed compound: raw sum exceeds 1.
	got := ExtractWordFeatures(newItem(t, "de oliebollenkraam op één hoek", "the fritter stand on a corner")).Difficulty
	if got != 1.0 {
		t.Errorf("Expected difficulty clamped to 1.0, got %v", got)
	}
}
