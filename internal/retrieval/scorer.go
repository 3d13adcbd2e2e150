package retrieval

import (
	"strings"
	"unicode/utf8"
)

const (
	// PhraseMatchBonus is added once when the query, or two adjacent query terms,
	// appear verbatim in a chunk. It exceeds the largest per-occurrence term weight
	// but not repeated occurrences: a term counted often enough (11 times for a
	// 5-letter term) ties or beats a single phrase match.
	PhraseMatchBonus = 5.0
	// maxWeightedTermLength caps the length used for term weighting.
	maxWeightedTermLength = 10
)

// TermWeight returns the per-occurrence weight of a term. Longer terms weigh more, up to 1.0.
func TermWeight(term string) float64 {
	n := utf8.RuneCountInString(term)
	if n > maxWeightedTermLength {
		n = maxWeightedTermLength
	}
	return float64(n) / maxWeightedTermLength
}

// Score rates how well a chunk matches the query terms.
// The result is zero when no term and no phrase occurs in the chunk.
func Score(chunk Chunk, terms TermSet, query string) float64 {
	score, _ := scoreChunk(chunk, terms, query, QueryPhrases(query, terms))
	return score
}

// scoreChunk computes the score and the matched terms for one chunk.
// phrases is passed in so callers scoring many chunks tokenize the query once.
func scoreChunk(chunk Chunk, terms TermSet, query string, phrases []string) (float64, []string) {
	if len(terms) == 0 || chunk.Text == "" {
		return 0, nil
	}

	lower := strings.ToLower(chunk.Text)

	var score float64
	var matched []string
	for _, term := range terms.Sorted() {
		occurrences := strings.Count(lower, term)
		if occurrences == 0 {
			continue
		}
		score += float64(occurrences) * TermWeight(term)
		matched = append(matched, term)
	}

	if hasPhraseMatch(lower, query, phrases) {
		score += PhraseMatchBonus
	}

	return score, matched
}

func hasPhraseMatch(lowerText, query string, phrases []string) bool {
	if q := strings.TrimSpace(strings.ToLower(query)); q != "" && strings.Contains(lowerText, q) {
		return true
	}
	if len(phrases) == 0 {
		return false
	}

	folded := " " + strings.Join(strings.Fields(foldText(lowerText)), " ") + " "
	for _, phrase := range phrases {
		if strings.Contains(folded, " "+phrase+" ") {
			return true
		}
	}
	return false
}
