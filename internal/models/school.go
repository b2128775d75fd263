// Package models defines the school record, query inputs, and response shapes.
package models

// RankedEntry is one item of a ranked list such as top colleges or top majors.
type RankedEntry struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// School is one row of the dataset. Absent numeric values are nil; fractions are 0-1.
type School struct {
	ID         string `json:"id"`
	SourceID   string `json:"source_id,omitempty"`
	NCESID     string `json:"nces_id,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
	Name       string `json:"school_name"`

	Street    string   `json:"street"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	StateName string   `json:"state_name"`
	County    string   `json:"county"`
	Metro     string   `json:"metro_area"`
	Zip       string   `json:"zip"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	ACTAverage         *float64 `json:"act_average,omitempty"`
	SATAverage         *float64 `json:"sat_average,omitempty"`
	SATMath            *float64 `json:"sat_math,omitempty"`
	SATVerbal          *float64 `json:"sat_verbal,omitempty"`
	GraduationRate     *float64 `json:"graduation_rate,omitempty"`
	MathProficiency    *float64 `json:"math_proficiency,omitempty"`
	ReadingProficiency *float64 `json:"reading_proficiency,omitempty"`
	MatriculationRate  *float64 `json:"four_year_matriculation_rate,omitempty"`
	GradeAcademics     string   `json:"grade_academics,omitempty"`

	TotalStudents       *int     `json:"total_students,omitempty"`
	IsPublic            bool     `json:"is_public"`
	IsCharter           bool     `json:"is_charter"`
	IsBoarding          bool     `json:"is_boarding"`
	IsElementary        bool     `json:"is_elementary"`
	IsMiddle            bool     `json:"is_middle"`
	IsHigh              bool     `json:"is_high"`
	GradesOffered       string   `json:"grades_offered,omitempty"`
	Tuition             *float64 `json:"tuition,omitempty"`
	StudentTeacherRatio *float64 `json:"student_teacher_ratio,omitempty"`
	FreeReducedLunch    *float64 `json:"free_reduced_lunch,omitempty"`

	Diversity   map[string]float64 `json:"diversity,omitempty"`
	TopColleges []RankedEntry      `json:"top_colleges,omitempty"`
	TopMajors   []RankedEntry      `json:"top_majors,omitempty"`

	Keys SearchKeys `json:"-"`
}

// SearchKeys are lowercased copies of textual fields used only for matching.
type SearchKeys struct {
	Name      string
	City      string
	County    string
	Metro     string
	State     string // full state name
	StateAbbr string
	Street    string
	// StreetKey and AddressKeys are punctuation-stripped. AddressKeys holds street+city+state+zip,
	// the same with the 5-digit zip, and street+city+state.
	StreetKey   string
	AddressKeys []string
	ZipDigits   string
}

// Completeness counts the attributes that carry a value.
func (s *School) Completeness() int {
	n := 0
	for _, v := range []string{
		s.SourceID, s.NCESID, s.DistrictID, s.Name, s.Street, s.City, s.State, s.StateName,
		s.County, s.Metro, s.Zip, s.GradeAcademics, s.GradesOffered,
	} {
		if v != "" {
			n++
		}
	}
	for _, v := range []*float64{
		s.Latitude, s.Longitude, s.ACTAverage, s.SATAverage, s.SATMath, s.SATVerbal,
		s.GraduationRate, s.MathProficiency, s.ReadingProficiency, s.MatriculationRate,
		s.Tuition, s.StudentTeacherRatio, s.FreeReducedLunch,
	} {
		if v != nil {
			n++
		}
	}
	if s.TotalStudents != nil {
		n++
	}
	if len(s.Diversity) > 0 {
		n++
	}
	if len(s.TopColleges) > 0 {
		n++
	}
	if len(s.TopMajors) > 0 {
		n++
	}
	return n
}
