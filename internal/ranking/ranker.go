package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// Ranker selects and orders keyword candidates.
type Ranker struct {
	config   *RankingConfig
	analyzer *QueryAnalyzer
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:   config,
		analyzer: NewQueryAnalyzer(),
	}
}

// AnalyzeQuery parses and analyzes a query string.
func (r *Ranker) AnalyzeQuery(query string) *AnalyzedQuery {
	return r.analyzer.Analyze(query)
}

// Candidates returns the rows the query may refer to, in dataset order.
//
// The broad set holds rows where the whole query or any significant token is a
// substring of name, city, county, metro, state or street. The result narrows it to
// rows where every significant token appears in name, city, county or state; when
// that leaves nothing, the broad set is returned instead.
func (r *Ranker) Candidates(query *AnalyzedQuery, rows []*models.School) []*models.School {
	if query.Empty() {
		return nil
	}
	var broad []*models.School
	for _, s := range rows {
		if broadMatch(query, &s.Keys) {
			broad = append(broad, s)
		}
	}
	if len(broad) == 0 || len(query.Significant) == 0 {
		return broad
	}

	strict := make([]*models.School, 0, len(broad))
	for _, s := range broad {
		if allTokensMatch(query.Significant, &s.Keys) {
			strict = append(strict, s)
		}
	}
	if len(strict) == 0 {
		return broad
	}
	return strict
}

func broadMatch(query *AnalyzedQuery, k *models.SearchKeys) bool {
	fields := [...]string{k.Name, k.City, k.County, k.Metro, k.State, k.Street}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(f, query.Normalized) {
			return true
		}
		for _, tok := range query.Significant {
			if strings.Contains(f, tok) {
				return true
			}
		}
	}
	return false
}

func allTokensMatch(tokens []string, k *models.SearchKeys) bool {
	for _, tok := range tokens {
		if !strings.Contains(k.Name, tok) &&
			!strings.Contains(k.City, tok) &&
			!strings.Contains(k.County, tok) &&
			!strings.Contains(k.State, tok) {
			return false
		}
	}
	return true
}

// Rank scores candidates and sorts them by descending score. Ties keep their input order.
func (r *Ranker) Rank(query *AnalyzedQuery, candidates []*models.School) []ScoredSchool {
	scored := make([]ScoredSchool, len(candidates))
	for i, s := range candidates {
		scored[i] = ScoredSchool{School: s, Score: r.Score(query, s)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Search runs Candidates then Rank and returns the ordered schools.
func (r *Ranker) Search(query string, rows []*models.School) []*models.School {
	q := r.AnalyzeQuery(query)
	ranked := r.Rank(q, r.Candidates(q, rows))
	out := make([]*models.School, len(ranked))
	for i, sc := range ranked {
		out[i] = sc.School
	}
	return out
}

// Score calculates the relevance score of one school.
func (r *Ranker) Score(query *AnalyzedQuery, s *models.School) float64 {
	return r.ScoreWithBreakdown(query, s).FinalScore
}

// ScoreWithBreakdown returns detailed scoring information.
func (r *Ranker) ScoreWithBreakdown(query *AnalyzedQuery, s *models.School) *ScoreBreakdown {
	b := &ScoreBreakdown{}
	if query.Empty() {
		return b
	}
	k := &s.Keys
	terms := append([]string{query.Normalized}, query.Significant...)

	fieldScores := []struct {
		name  string
		value string
		score float64
	}{
		{"name", k.Name, r.config.NameMatchScore},
		{"city", k.City, r.config.CityMatchScore},
		{"county", k.County, r.config.CountyMatchScore},
		{"state", k.State, r.config.StateMatchScore},
	}
	for _, f := range fieldScores {
		if containsAny(f.value, terms) {
			b.FieldScore += f.score
			b.Fields = append(b.Fields, f.name)
		}
	}

	phraseScores := []struct {
		name  string
		value string
		score float64
	}{
		{"exact_city", k.City, r.config.ExactCityScore},
		{"exact_county", k.County, r.config.ExactCountyScore},
		{"exact_name", k.Name, r.config.ExactNameScore},
	}
	for _, f := range phraseScores {
		if query.Phrase != "" && f.value == query.Phrase {
			b.PhraseScore += f.score
			b.Fields = append(b.Fields, f.name)
		}
	}

	if k.Metro != "" {
		if strings.Contains(k.Metro, query.Normalized) {
			b.MetroScore += r.config.MetroMatchScore
			b.Fields = append(b.Fields, "metro")
		}
		if k.Metro == query.Normalized {
			b.MetroScore += r.config.ExactMetroScore
			b.Fields = append(b.Fields, "exact_metro")
		}
	}

	if s.ACTAverage != nil {
		b.AcademicScore += *s.ACTAverage * r.config.ACTMultiplier
	}
	if s.SATAverage != nil {
		b.AcademicScore += *s.SATAverage * r.config.SATMultiplier
	}

	b.FinalScore = b.FieldScore + b.PhraseScore + b.MetroScore + b.AcademicScore
	return b
}

func containsAny(field string, terms []string) bool {
	if field == "" {
		return false
	}
	for _, t := range terms {
		if t != "" && strings.Contains(field, t) {
			return true
		}
	}
	return false
}
