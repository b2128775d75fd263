package present

import "github.com/hyperjump/schoolfinder/internal/models"

// ComputeStats counts rows and the distinct non-empty states, cities, counties and metro areas.
func ComputeStats(rows []*models.School) models.Stats {
	states := make(map[string]struct{})
	cities := make(map[string]struct{})
	counties := make(map[string]struct{})
	metros := make(map[string]struct{})
	for _, s := range rows {
		addNonEmpty(states, s.StateName)
		addNonEmpty(cities, s.City)
		addNonEmpty(counties, s.County)
		addNonEmpty(metros, s.Metro)
	}
	return models.Stats{
		TotalSchools: len(rows),
		States:       len(states),
		Cities:       len(cities),
		Counties:     len(counties),
		MetroAreas:   len(metros),
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

// SearchData assembles the search payload: aggregate metrics over every match and
// formatted rows for the first limit matches.
func SearchData(result *models.SearchResult, limit int) models.SearchData {
	shown := result.Schools
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	return models.SearchData{
		Query:        result.Query,
		TotalSchools: result.Total,
		MatchType:    result.MatchType,
		Metrics:      Aggregate(result.Schools),
		Schools:      FormatAll(shown),
		Suggestions:  result.Suggestions,
		QueryTimeMS:  result.QueryTimeMS,
	}
}
