package usecase

import (
	"strings"
	"unicode"
)

// Quality filter limits
const (
	minReviewLength       = 15
	minDistinctChars      = 5
	minReviewWords        = 3
	minDistinctWords      = 3
	lowInfoLengthLimit    = 25   // below this, low-information words reject the review
	maxExclamationRatio   = 0.10 // exclamation marks per character
	minUniqueCharRatio    = 0.30
	uniqueCharLengthLimit = 50 // ratio only applies below this length
	meaningfulLengthLimit = 40 // below this, a hair-domain word is required
)

// Quality score bonuses and penalties
const (
	lengthBonusLong       = 2.0 // > 150 chars
	lengthBonusMedium     = 1.5 // > 100 chars
	lengthBonusShort      = 1.0 // > 50 chars
	lengthBonusMinimal    = 0.5 // > 30 chars
	benefitKeywordWeight  = 0.3
	hairTypeKeywordWeight = 0.4
	usageKeywordWeight    = 0.2
	veryShortPenalty      = 1.0 // < 30 chars
	shortPenalty          = 0.5 // < 50 chars
	genericWordPenalty    = 0.5
	maxGenericWords       = 2
)

// lowInfoWords make a very short review meaningless ("smeds" is a recurring typo in the corpus)
var lowInfoWords = map[string]bool{
	"lovely": true, "nice": true, "good": true, "great": true,
	"awesome": true, "amazing": true, "smeds": true,
}

// meaningfulWords are hair-domain terms a short review must contain
var meaningfulWords = []string{
	"hair", "curls", "curl", "frizz", "moisture", "shine", "texture", "dry",
	"wash", "love", "works", "feel", "soft", "smooth", "scalp", "clean",
	"product", "results", "waves", "volume",
}

var benefitKeywords = []string{
	"soft", "smooth", "defined", "curls", "waves", "frizz", "moisture", "shine",
	"volume", "texture", "dry", "oily", "thick", "thin", "fine", "coarse",
}

var hairTypeKeywords = []string{
	"curly", "wavy", "straight", "fine", "thick", "dry", "oily", "color-treated", "damaged",
}

var usageKeywords = []string{
	"air dry", "blow dry", "wash", "use", "apply", "leave in", "rinse", "comb", "brush",
}

var genericWords = []string{
	"good", "great", "nice", "lovely", "awesome", "amazing", "perfect",
}

// IsQualityReview reports whether review content is substantive enough to show
func IsQualityReview(content string) bool {
	text := strings.TrimSpace(content)
	if text == "" || len(text) < minReviewLength {
		return false
	}

	lower := strings.ToLower(text)
	if countDistinctRunes(lower) < minDistinctChars {
		return false
	}

	words := reviewWords(lower)
	if len(words) < minReviewWords {
		return false
	}
	distinct := make(map[string]bool, len(words))
	for _, w := range words {
		distinct[w] = true
	}
	if len(distinct) < minDistinctWords {
		return false
	}

	if len(text) < lowInfoLengthLimit {
		for w := range distinct {
			if lowInfoWords[w] {
				return false
			}
		}
	}

	if float64(strings.Count(text, "!")) > maxExclamationRatio*float64(len(text)) {
		return false
	}

	if len(text) < uniqueCharLengthLimit &&
		float64(countDistinctRunes(lower)) < minUniqueCharRatio*float64(len(text)) {
		return false
	}

	if len(text) < meaningfulLengthLimit && countKeywordHits(lower, meaningfulWords) == 0 {
		return false
	}

	return true
}

// CalculateQualityScore combines the star rating with content heuristics
func CalculateQualityScore(content string, score int) float64 {
	text := strings.TrimSpace(content)
	lower := strings.ToLower(text)
	length := len(text)

	quality := float64(score)

	switch {
	case length > 150:
		quality += lengthBonusLong
	case length > 100:
		quality += lengthBonusMedium
	case length > 50:
		quality += lengthBonusShort
	case length > 30:
		quality += lengthBonusMinimal
	}

	quality += benefitKeywordWeight * float64(countKeywordHits(lower, benefitKeywords))
	quality += hairTypeKeywordWeight * float64(countKeywordHits(lower, hairTypeKeywords))
	quality += usageKeywordWeight * float64(countKeywordHits(lower, usageKeywords))

	if length < 30 {
		quality -= veryShortPenalty
	} else if length < 50 {
		quality -= shortPenalty
	}

	if countKeywordHits(lower, genericWords) > maxGenericWords {
		quality -= genericWordPenalty
	}

	return quality
}

// countKeywordHits counts keywords present as substrings of text
func countKeywordHits(text string, keywords []string) int {
	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits++
		}
	}
	return hits
}

func countDistinctRunes(s string) int {
	seen := make(map[rune]bool)
	for _, r := range s {
		seen[r] = true
	}
	return len(seen)
}

// reviewWords splits text into words with surrounding punctuation removed
func reviewWords(text string) []string {
	var words []string
	for _, f := range strings.Fields(text) {
		w := strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
