// Package search classifies location queries, retrieves matching schools and resolves school identifiers.
package search

import (
	"strings"
	"unicode"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// zipDigits is the length of a base ZIP code.
const zipDigits = 5

// Index is the read-only view of a dataset that matching needs.
type Index interface {
	Rows() []*models.School
	HasCity(city string) bool
	HasState(state string) bool
	Lookup(id string) []*models.School
}

// Query is a search string split into the character classes classification needs.
type Query struct {
	// Normalized is the lowercased, trimmed query.
	Normalized string
	// Digits holds every ASCII digit of the query, in order.
	Digits    string
	HasLetter bool
}

// ParseQuery normalizes query and records its digits and whether it has letters.
func ParseQuery(query string) Query {
	normalized := strings.ToLower(strings.TrimSpace(query))
	var digits strings.Builder
	q := Query{Normalized: normalized}
	for _, r := range normalized {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			q.HasLetter = true
		}
	}
	q.Digits = digits.String()
	return q
}

// Empty reports whether the query is blank.
func (q Query) Empty() bool { return q.Normalized == "" }

// IsZip reports a query with no letters and at least five digits.
func (q Query) IsZip() bool {
	return !q.HasLetter && len(q.Digits) >= zipDigits
}

// HasDigit reports whether the query contains any digit.
func (q Query) HasDigit() bool { return q.Digits != "" }

// Classify assigns query to the first class whose rule accepts it:
// ZIP, street address, exact city, exact state, then keyword.
// City and state are probed against idx. A blank query is MatchNone.
func Classify(idx Index, query string) models.MatchType {
	q := ParseQuery(query)
	switch {
	case q.Empty():
		return models.MatchNone
	case q.IsZip():
		return models.MatchZip
	case q.HasDigit():
		return models.MatchStreetAddress
	case idx != nil && idx.HasCity(q.Normalized):
		return models.MatchExactCity
	case idx != nil && idx.HasState(q.Normalized):
		return models.MatchExactState
	default:
		return models.MatchKeyword
	}
}
