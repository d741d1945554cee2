package search

import (
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true, "why": true,
}

// tokenizeAndFilter lowercases text and splits it into tokens. Runs of
// letters and digits form one token; every Han character is a token of its
// own. Stop words are dropped.
func tokenizeAndFilter(text string) []string {
	var (
		tokens []string
		word   strings.Builder
	)

	flush := func() {
		if word.Len() == 0 {
			return
		}
		if w := word.String(); !stopWords[w] {
			tokens = append(tokens, w)
		}
		word.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// lexicalOverlap returns the fraction of distinct query tokens that occur in
// the document. A query without tokens scores 0.
func lexicalOverlap(queryTokens map[string]bool, document string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	docTokens := make(map[string]bool)
	for _, token := range tokenizeAndFilter(document) {
		docTokens[token] = true
	}

	hits := 0
	for token := range queryTokens {
		if docTokens[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenizeAndFilter(text) {
		set[token] = true
	}
	return set
}
