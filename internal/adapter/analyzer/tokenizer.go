package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits identifiers and query strings into comparable
// terms. Ranking works on exact term overlap, so the same tokenizer
// must serve both sides.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text on separator characters and camel-case
// transitions, lowercases the pieces and drops everything shorter
// than three characters.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) <= 2 {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// CountTokens returns an approximate LLM token count for budget
// estimation. Rough heuristic: the average word is about 1.3 tokens.
func (t *Tokenizer) CountTokens(text string) int {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	return int(float64(len(words)) * 1.3)
}

// splitWords breaks text into words. Any rune that is not a letter
// or digit separates words, and so does a lower-to-upper case
// transition, so "post_journal" and "postJournal" split the same way.
// Acronym runs stay together: "HTTPServer" gives HTTP and Server.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
				words = append(words, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
