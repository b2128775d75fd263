package models

import (
	"fmt"
	"strings"
)

// SearchQuery is a free-text location search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate rejects blank queries and clamps Limit into [1, maxLimit], using defaultLimit when unset.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return nil
}

// Hints disambiguate a detail lookup when several rows share an identifier.
type Hints struct {
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}

// Empty reports whether no hint was supplied.
func (h Hints) Empty() bool {
	return strings.TrimSpace(h.Name) == "" && strings.TrimSpace(h.City) == "" &&
		strings.TrimSpace(h.State) == "" && strings.TrimSpace(h.Zip) == ""
}
