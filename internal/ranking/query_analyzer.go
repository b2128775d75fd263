package ranking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopwords are location filler words that never narrow a keyword search.
var stopwords = map[string]bool{
	"area":     true,
	"county":   true,
	"state":    true,
	"city":     true,
	"school":   true,
	"schools":  true,
	"district": true,
}

// minSignificantLen is the rune count a token must exceed to be significant.
const minSignificantLen = 2

// QueryAnalyzer splits keyword queries into tokens.
type QueryAnalyzer struct{}

// NewQueryAnalyzer creates a new QueryAnalyzer.
func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

// Analyze parses a query string and returns an AnalyzedQuery.
func (qa *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	result := &AnalyzedQuery{
		Original:   query,
		Normalized: strings.ToLower(strings.TrimSpace(query)),
	}
	if result.Normalized == "" {
		return result
	}

	result.Tokens = qa.tokenize(result.Normalized)
	if len(result.Tokens) == 0 {
		result.Tokens = []string{result.Normalized}
	}

	for _, tok := range result.Tokens {
		if utf8.RuneCountInString(tok) > minSignificantLen {
			result.Significant = append(result.Significant, tok)
		}
	}
	if len(result.Significant) == 0 {
		result.Significant = append([]string(nil), result.Tokens...)
	}
	result.Phrase = strings.Join(result.Significant, " ")
	return result
}

// tokenize replaces punctuation with spaces, splits on whitespace and drops stopwords.
func (qa *QueryAnalyzer) tokenize(normalized string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, normalized)

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if stopwords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
