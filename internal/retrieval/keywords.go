package retrieval

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the minimum rune length of a non-numeric query term.
const MinTermLength = 2

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {}, "when": {}, "where": {},
	"why": {}, "how": {}, "who": {}, "which": {},
}

// TermSet is the set of normalized significant terms of a query.
type TermSet map[string]struct{}

// Contains reports whether term is in the set.
func (s TermSet) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Sorted returns the terms in lexical order.
func (s TermSet) Sorted() []string {
	terms := make([]string, 0, len(s))
	for term := range s {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// ExtractTerms lowercases the query, strips punctuation, and drops stop words
// and short non-numeric tokens. An empty or all-stop-word query yields an empty set.
func ExtractTerms(query string) TermSet {
	terms := make(TermSet)
	for _, token := range tokenize(query) {
		if isSignificant(token) {
			terms[token] = struct{}{}
		}
	}
	return terms
}

// QueryPhrases returns the phrases formed by significant tokens that sit next
// to each other in the query, e.g. "sale price" for "What is the sale price?".
func QueryPhrases(query string, terms TermSet) []string {
	tokens := tokenize(query)
	seen := make(map[string]struct{})
	var phrases []string
	for i := 0; i+1 < len(tokens); i++ {
		if !terms.Contains(tokens[i]) || !terms.Contains(tokens[i+1]) {
			continue
		}
		phrase := tokens[i] + " " + tokens[i+1]
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}
	return phrases
}

func isSignificant(token string) bool {
	if _, stop := stopWords[token]; stop {
		return false
	}
	if utf8.RuneCountInString(token) < MinTermLength && !isDigits(token) {
		return false
	}
	return true
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(foldText(text))
}

// foldText lowercases text and replaces every non letter/digit rune with a space.
func foldText(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return builder.String()
}
