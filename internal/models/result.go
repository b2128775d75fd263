package models

// MatchType names the strategy that produced a result set.
type MatchType string

const (
	MatchNone          MatchType = "none"
	MatchZip           MatchType = "zip"
	MatchStreetAddress MatchType = "street_address"
	MatchExactCity     MatchType = "exact_city"
	MatchExactState    MatchType = "exact_state"
	MatchKeyword       MatchType = "keyword"
)

// SearchResult is the full matched set for one query, before any display cap.
type SearchResult struct {
	Query       string
	MatchType   MatchType
	Schools     []*School
	Total       int
	QueryTimeMS int64
	Suggestions []string
}

// AggregateMetrics summarise a matched cohort.
type AggregateMetrics struct {
	CollegeReadinessScore float64 `json:"college_readiness_score"`
	AcademicPreparation   float64 `json:"academic_preparation"`
	CollegeEnrollment     float64 `json:"college_enrollment"`
	AcademicPerformance   float64 `json:"academic_performance"`
}

// Address is the presented address block.
type Address struct {
	Street  string  `json:"street"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zipcode *string `json:"zipcode"`
}

// Coordinates is present only when both latitude and longitude are known.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SchoolMetrics are per-school metrics with fractions scaled to 0-100.
type SchoolMetrics struct {
	CollegeReadinessScore *float64 `json:"college_readiness_score"`
	CollegePreparation    *float64 `json:"college_preparation"`
	CollegeEnrollment     *float64 `json:"college_enrollment"`
	CollegePerformance    *float64 `json:"college_performance"`
	GraduationRate        *float64 `json:"graduation_rate"`
	TotalStudents         *int     `json:"total_students"`
	SATAverage            *float64 `json:"sat_average"`
	ACTAverage            *float64 `json:"act_average"`
	MathProficiency       *float64 `json:"math_proficiency"`
	ReadingProficiency    *float64 `json:"reading_proficiency"`
}

// Demographics is the presented demographics block.
type Demographics struct {
	FreeReducedLunch   *float64           `json:"free_reduced_lunch"`
	DiversityBreakdown map[string]float64 `json:"diversity_breakdown"`
}

// SchoolView is the response shape of one school.
type SchoolView struct {
	ID            string        `json:"id"`
	SchoolName    string        `json:"school_name"`
	Address       Address       `json:"address"`
	Coordinates   *Coordinates  `json:"coordinates"`
	Metrics       SchoolMetrics `json:"metrics"`
	Demographics  Demographics  `json:"demographics"`
	SchoolType    string        `json:"school_type"`
	GradesOffered string        `json:"grades_offered"`
	TopColleges   []RankedEntry `json:"top_colleges,omitempty"`
	TopMajors     []RankedEntry `json:"top_majors,omitempty"`
}

// SearchData is the payload of a search response.
type SearchData struct {
	Query        string           `json:"query"`
	TotalSchools int              `json:"total_schools"`
	MatchType    MatchType        `json:"match_type"`
	Metrics      AggregateMetrics `json:"metrics"`
	Schools      []SchoolView     `json:"schools"`
	Suggestions  []string         `json:"suggestions,omitempty"`
	QueryTimeMS  int64            `json:"query_time_ms"`
}

// Stats summarise the loaded dataset.
type Stats struct {
	TotalSchools int `json:"total_schools"`
	States       int `json:"states"`
	Cities       int `json:"cities"`
	Counties     int `json:"counties"`
	MetroAreas   int `json:"metro_areas"`
}

// Envelope wraps every successful API payload.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}
