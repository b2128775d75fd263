package ranking

// RankingConfig holds the additive weights of the keyword relevance function.
type RankingConfig struct {
	// Substring matches of any significant token (or the whole query) per field.
	NameMatchScore   float64 `yaml:"name_match_score"`   // default: 70
	CityMatchScore   float64 `yaml:"city_match_score"`   // default: 120
	CountyMatchScore float64 `yaml:"county_match_score"` // default: 100
	StateMatchScore  float64 `yaml:"state_match_score"`  // default: 60

	// Joined significant-token phrase equal to the field.
	ExactCityScore   float64 `yaml:"exact_city_score"`   // default: 200
	ExactCountyScore float64 `yaml:"exact_county_score"` // default: 150
	ExactNameScore   float64 `yaml:"exact_name_score"`   // default: 150

	// Raw query against the metro area.
	MetroMatchScore float64 `yaml:"metro_match_score"` // default: 30
	ExactMetroScore float64 `yaml:"exact_metro_score"` // default: 50

	// Academic boosts, multiplied by the raw metric when present.
	ACTMultiplier float64 `yaml:"act_multiplier"` // default: 0.1
	SATMultiplier float64 `yaml:"sat_multiplier"` // default: 0.01
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		NameMatchScore:   70,
		CityMatchScore:   120,
		CountyMatchScore: 100,
		StateMatchScore:  60,

		ExactCityScore:   200,
		ExactCountyScore: 150,
		ExactNameScore:   150,

		MetroMatchScore: 30,
		ExactMetroScore: 50,

		ACTMultiplier: 0.1,
		SATMultiplier: 0.01,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.NameMatchScore == 0 {
		c.NameMatchScore = defaults.NameMatchScore
	}
	if c.CityMatchScore == 0 {
		c.CityMatchScore = defaults.CityMatchScore
	}
	if c.CountyMatchScore == 0 {
		c.CountyMatchScore = defaults.CountyMatchScore
	}
	if c.StateMatchScore == 0 {
		c.StateMatchScore = defaults.StateMatchScore
	}

	// Exact phrase
	if c.ExactCityScore == 0 {
		c.ExactCityScore = defaults.ExactCityScore
	}
	if c.ExactCountyScore == 0 {
		c.ExactCountyScore = defaults.ExactCountyScore
	}
	if c.ExactNameScore == 0 {
		c.ExactNameScore = defaults.ExactNameScore
	}

	// Metro
	if c.MetroMatchScore == 0 {
		c.MetroMatchScore = defaults.MetroMatchScore
	}
	if c.ExactMetroScore == 0 {
		c.ExactMetroScore = defaults.ExactMetroScore
	}

	if c.ACTMultiplier == 0 {
		c.ACTMultiplier = defaults.ACTMultiplier
	}
	if c.SATMultiplier == 0 {
		c.SATMultiplier = defaults.SATMultiplier
	}
}
