// Package ranking scores and orders schools for free-text keyword queries.
package ranking

import "github.com/hyperjump/schoolfinder/internal/models"

// AnalyzedQuery holds the parsed form of a keyword query.
type AnalyzedQuery struct {
	// Original is the query as received.
	Original string
	// Normalized is the lowercased, trimmed query used for raw substring and equality checks.
	Normalized string
	// Tokens are the query words with punctuation and stopwords removed.
	Tokens []string
	// Significant are the tokens longer than two characters, or all tokens when none are.
	Significant []string
	// Phrase is Significant joined by single spaces.
	Phrase string
}

// Empty reports whether the query has nothing to match.
func (q *AnalyzedQuery) Empty() bool {
	return q == nil || q.Normalized == ""
}

// ScoreBreakdown provides detailed scoring information for debugging.
type ScoreBreakdown struct {
	// FinalScore is the sum of every component below.
	FinalScore float64
	// FieldScore is the sum of the per-field substring matches.
	FieldScore float64
	// PhraseScore is the sum of the exact phrase matches.
	PhraseScore float64
	// MetroScore is the metro area contribution.
	MetroScore float64
	// AcademicScore is the ACT and SAT contribution.
	AcademicScore float64
	// Fields lists the fields that matched, for example "city" or "exact_name".
	Fields []string
}

// ScoredSchool is a candidate with its relevance score.
type ScoredSchool struct {
	School *models.School
	Score  float64
}
