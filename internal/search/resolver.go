package search

import (
	"strings"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/normalize"
)

// Resolver tie-break weights.
const (
	nameExact     = 6
	namePartial   = 3
	cityExact     = 4
	cityPartial   = 2
	stateExact    = 3
	statePartial  = 1
	zipExactScore = 2
)

// Pick returns the best of the rows sharing one identifier, or nil when rows is empty.
// The first row leads; a later row takes over when it scores higher against hints,
// or scores the same and has strictly more populated attributes.
func Pick(rows []*models.School, hints models.Hints) *models.School {
	if len(rows) == 0 {
		return nil
	}
	if len(rows) == 1 && hints.Empty() {
		return rows[0]
	}

	h := normalizedHints{
		name:  normalize.Text(hints.Name),
		city:  normalize.Text(hints.City),
		state: normalize.Text(hints.State),
		zip:   zip5(normalize.Zip(hints.Zip)),
	}
	leader := rows[0]
	leaderScore := h.score(leader)
	leaderFields := leader.Completeness()
	for _, row := range rows[1:] {
		score := h.score(row)
		if score > leaderScore {
			leader, leaderScore, leaderFields = row, score, row.Completeness()
			continue
		}
		if score == leaderScore {
			if fields := row.Completeness(); fields > leaderFields {
				leader, leaderFields = row, fields
			}
		}
	}
	return leader
}

type normalizedHints struct {
	name, city, state, zip string
}

func (h normalizedHints) score(row *models.School) int {
	score := 0
	score += tiered(h.name, row.Keys.Name, nameExact, namePartial)
	score += tiered(h.city, row.Keys.City, cityExact, cityPartial)
	score += max(
		tiered(h.state, row.Keys.StateAbbr, stateExact, statePartial),
		tiered(h.state, row.Keys.State, stateExact, statePartial),
	)
	if h.zip != "" && h.zip == zip5(row.Zip) {
		score += zipExactScore
	}
	return score
}

func tiered(hint, value string, exact, partial int) int {
	switch {
	case hint == "" || value == "":
		return 0
	case hint == value:
		return exact
	case strings.Contains(value, hint):
		return partial
	default:
		return 0
	}
}

func zip5(zip string) string {
	if len(zip) > zipDigits {
		return zip[:zipDigits]
	}
	return zip
}
