package search

import (
	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/ranking"
)

// DefaultMatchers returns the strategies in fallthrough order.
func DefaultMatchers(r *ranking.Ranker) []Matcher {
	return []Matcher{
		ZipMatcher{},
		StreetMatcher{},
		CityMatcher{},
		StateMatcher{},
		KeywordMatcher{Ranker: r},
	}
}

// Run tries each applicable matcher in order and returns the rows of the first one
// that yields any, together with its class. A blank query yields MatchNone and no rows.
func Run(idx Index, matchers []Matcher, query string) (models.MatchType, []*models.School) {
	q := ParseQuery(query)
	if q.Empty() || idx == nil {
		return models.MatchNone, nil
	}
	for _, m := range matchers {
		if !m.Applies(q) {
			continue
		}
		if rows := m.Match(idx, q); len(rows) > 0 {
			return m.Type(), rows
		}
	}
	return models.MatchNone, nil
}
