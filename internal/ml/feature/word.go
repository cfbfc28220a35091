package feature

import (
	"strings"

	"github.com/mkuiper/taalcoach/internal/domain"
)

// Article prefixes that mark grammatical gender on the source side.
var articlePrefixes = []string{"de ", "het "}

// nounPrefixes additionally includes the indefinite article for the
// part-of-speech heuristic.
var nounPrefixes = []string{"de ", "het ", "een "}

// diacriticChars are the accented characters that add difficulty.
const diacriticChars = "áàäéèëíìïóòöúùüñç"

// numberWords are the translations treated as number words.
var numberWords = map[string]bool{
	"one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
}

// WordFeatures captures the static properties of a vocabulary item's source
// text and what they suggest about its difficulty.
type WordFeatures struct {
	Length        int
	Difficulty    float64
	HasArticle    bool
	IsCompound    bool
	HasDiacritics bool
	IsVerb        bool
	IsNumber      bool
}

// ExtractWordFeatures derives word features from a vocabulary item.
// A nil item or empty source text yields neutral defaults.
func ExtractWordFeatures(item *domain.VocabularyItem) WordFeatures {
	if item == nil || item.SourceText == "" {
		return WordFeatures{Difficulty: 0.5}
	}

	return WordFeatures{
		Length:        len([]rune(item.SourceText)),
		Difficulty:    wordDifficulty(item),
		HasArticle:    hasPrefix(item.SourceText, articlePrefixes),
		IsCompound:    len(strings.Fields(item.SourceText)) > 1,
		HasDiacritics: containsDiacritics(item.SourceText),
		IsVerb:        strings.HasPrefix(item.TargetText, "to "),
		IsNumber:      numberWords[item.TargetText],
	}
}

// wordDifficulty builds a heuristic difficulty score in [0,1] additively from
// surface properties of the word pair.
func wordDifficulty(item *domain.VocabularyItem) float64 {
	difficulty := 0.0

	// Length contributes up to 0.5, at 0.03 per character.
	length := float64(len([]rune(item.SourceText)))
	lengthFactor := length * 0.03
	if lengthFactor > 0.5 {
		lengthFactor = 0.5
	}
	difficulty += lengthFactor

	// Grammatical articles add complexity: the learner must memorize the
	// gender along with the word.
	if hasPrefix(item.SourceText, articlePrefixes) {
		difficulty += 0.2
	}

	if len(strings.Fields(item.SourceText)) > 1 {
		difficulty += 0.15
	}

	if containsDiacritics(item.SourceText) {
		difficulty += 0.1
	}

	// Part-of-speech bonus inferred from surface patterns.
	if item.TargetText != "" {
		switch {
		case strings.HasPrefix(item.TargetText, "to "):
			difficulty += 0.2 // verb
		case hasPrefix(item.SourceText, nounPrefixes):
			difficulty += 0.1 // noun
		case numberWords[item.TargetText]:
			difficulty += 0.05 // number
		default:
			difficulty += 0.1
		}
	}

	if difficulty > 1.0 {
		difficulty = 1.0
	}
	return difficulty
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsDiacritics(s string) bool {
	return strings.ContainsAny(strings.ToLower(s), diacriticChars)
}
