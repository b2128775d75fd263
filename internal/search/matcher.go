package search

import (
	"strings"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/normalize"
	"github.com/hyperjump/schoolfinder/internal/ranking"
)

// Matcher is one retrieval strategy.
type Matcher interface {
	// Type is the class reported when this strategy yields rows.
	Type() models.MatchType
	// Applies reports whether the strategy may run for the query at all.
	Applies(q Query) bool
	// Match returns the matching rows.
	Match(idx Index, q Query) []*models.School
}

// ZipMatcher matches rows whose zip starts with the first five digits of the query.
type ZipMatcher struct{}

func (ZipMatcher) Type() models.MatchType { return models.MatchZip }
func (ZipMatcher) Applies(q Query) bool   { return q.IsZip() }

func (ZipMatcher) Match(idx Index, q Query) []*models.School {
	prefix := q.Digits[:zipDigits]
	var out []*models.School
	for _, row := range idx.Rows() {
		if strings.HasPrefix(row.Keys.ZipDigits, prefix) {
			out = append(out, row)
		}
	}
	return out
}

// StreetMatcher matches rows whose punctuation-stripped street, or street plus
// city, state and zip, equals the punctuation-stripped query.
type StreetMatcher struct{}

func (StreetMatcher) Type() models.MatchType { return models.MatchStreetAddress }
func (StreetMatcher) Applies(q Query) bool   { return q.HasDigit() }

func (StreetMatcher) Match(idx Index, q Query) []*models.School {
	key := normalize.Key(q.Normalized)
	if key == "" {
		return nil
	}
	var out []*models.School
	for _, row := range idx.Rows() {
		if row.Keys.StreetKey == key || containsString(row.Keys.AddressKeys, key) {
			out = append(out, row)
		}
	}
	return out
}

// CityMatcher matches rows whose city equals the query.
type CityMatcher struct{}

func (CityMatcher) Type() models.MatchType { return models.MatchExactCity }
func (CityMatcher) Applies(q Query) bool   { return !q.HasDigit() }

func (CityMatcher) Match(idx Index, q Query) []*models.School {
	if !idx.HasCity(q.Normalized) {
		return nil
	}
	var out []*models.School
	for _, row := range idx.Rows() {
		if row.Keys.City == q.Normalized {
			out = append(out, row)
		}
	}
	return out
}

// StateMatcher matches rows whose state abbreviation or full state name equals the query.
type StateMatcher struct{}

func (StateMatcher) Type() models.MatchType { return models.MatchExactState }
func (StateMatcher) Applies(q Query) bool   { return !q.HasDigit() }

func (StateMatcher) Match(idx Index, q Query) []*models.School {
	if !idx.HasState(q.Normalized) {
		return nil
	}
	var out []*models.School
	for _, row := range idx.Rows() {
		if row.Keys.StateAbbr == q.Normalized || row.Keys.State == q.Normalized {
			out = append(out, row)
		}
	}
	return out
}

// KeywordMatcher runs the ranked multi-field keyword search.
type KeywordMatcher struct {
	Ranker *ranking.Ranker
}

func (KeywordMatcher) Type() models.MatchType { return models.MatchKeyword }
func (KeywordMatcher) Applies(Query) bool     { return true }

func (m KeywordMatcher) Match(idx Index, q Query) []*models.School {
	r := m.Ranker
	if r == nil {
		r = ranking.NewRanker(nil)
	}
	return r.Search(q.Normalized, idx.Rows())
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
