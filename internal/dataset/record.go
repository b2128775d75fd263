package dataset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/normalize"
)

// maxRanked bounds the top colleges and top majors lists.
const maxRanked = 10

var diversityGroups = []string{
	"african_american", "asian", "hispanic", "white", "multiracial", "native_american",
}

// rawRecord is one canonical row before numeric coercion.
type rawRecord struct {
	SourceID   string `mapstructure:"niche_school_uuid"`
	NCESID     string `mapstructure:"nces_id"`
	DistrictID string `mapstructure:"district_id"`
	Name       string `mapstructure:"school_name"`

	Street    string `mapstructure:"address_address"`
	City      string `mapstructure:"address_city"`
	State     string `mapstructure:"address_state"`
	Zip       string `mapstructure:"address_zipcode"`
	County    string `mapstructure:"county_name"`
	Metro     string `mapstructure:"metro_area_name"`
	StateName string `mapstructure:"state_name"`
	Latitude  string `mapstructure:"latitude"`
	Longitude string `mapstructure:"longitude"`

	ACTAverage         string `mapstructure:"act_average"`
	SATAverage         string `mapstructure:"sat_average"`
	SATMath            string `mapstructure:"sat_math"`
	SATVerbal          string `mapstructure:"sat_verbal"`
	GraduationRate     string `mapstructure:"graduation_rate"`
	MathProficiency    string `mapstructure:"math_proficiency"`
	ReadingProficiency string `mapstructure:"reading_proficiency"`
	MatriculationRate  string `mapstructure:"four_year_matriculation_rate"`
	GradeAcademics     string `mapstructure:"grade_academics"`

	TotalStudents       string `mapstructure:"total_students"`
	IsPublic            string `mapstructure:"is_public"`
	IsCharter           string `mapstructure:"is_charter"`
	IsBoarding          string `mapstructure:"is_boarding"`
	IsElementary        string `mapstructure:"is_elementary"`
	IsMiddle            string `mapstructure:"is_middle"`
	IsHigh              string `mapstructure:"is_high"`
	GradesOffered       string `mapstructure:"grades_offered"`
	Tuition             string `mapstructure:"tuition"`
	StudentTeacherRatio string `mapstructure:"student_teacher_ratio"`
	FreeReducedLunch    string `mapstructure:"free_reduced_lunch"`
}

// toSchool converts a canonical row into a School with derived keys and stable id.
// Malformed values degrade to absent for that field only.
func toSchool(row map[string]string) (*models.School, error) {
	var raw rawRecord
	if err := mapstructure.Decode(row, &raw); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	abbr, stateName := fillState(clean(raw.State), clean(raw.StateName))
	s := &models.School{
		SourceID:   clean(raw.SourceID),
		NCESID:     clean(raw.NCESID),
		DistrictID: clean(raw.DistrictID),
		Name:       clean(raw.Name),

		Street:    clean(raw.Street),
		City:      clean(raw.City),
		State:     abbr,
		StateName: stateName,
		County:    clean(raw.County),
		Metro:     clean(raw.Metro),
		Zip:       normalize.Zip(raw.Zip),
		Latitude:  normalize.Float(raw.Latitude),
		Longitude: normalize.Float(raw.Longitude),

		ACTAverage:         normalize.NonZero(raw.ACTAverage),
		SATAverage:         normalize.NonZero(raw.SATAverage),
		SATMath:            normalize.NonZero(raw.SATMath),
		SATVerbal:          normalize.NonZero(raw.SATVerbal),
		GraduationRate:     normalize.Rate(raw.GraduationRate),
		MathProficiency:    normalize.Rate(raw.MathProficiency),
		ReadingProficiency: normalize.Rate(raw.ReadingProficiency),
		MatriculationRate:  normalize.Rate(raw.MatriculationRate),
		GradeAcademics:     strings.ToUpper(clean(raw.GradeAcademics)),

		TotalStudents:       normalize.Count(raw.TotalStudents),
		IsPublic:            normalize.Bool(raw.IsPublic),
		IsCharter:           normalize.Bool(raw.IsCharter),
		IsBoarding:          normalize.Bool(raw.IsBoarding),
		IsElementary:        normalize.Bool(raw.IsElementary),
		IsMiddle:            normalize.Bool(raw.IsMiddle),
		IsHigh:              normalize.Bool(raw.IsHigh),
		GradesOffered:       clean(raw.GradesOffered),
		Tuition:             normalize.NonZero(raw.Tuition),
		StudentTeacherRatio: normalize.NonZero(raw.StudentTeacherRatio),
		FreeReducedLunch:    normalize.Percent(raw.FreeReducedLunch),
	}
	if s.SATAverage == nil && s.SATMath != nil && s.SATVerbal != nil {
		total := *s.SATMath + *s.SATVerbal
		s.SATAverage = &total
	}

	for _, group := range diversityGroups {
		if v := normalize.Rate(row["diversity_breakdown_"+group]); v != nil {
			if s.Diversity == nil {
				s.Diversity = make(map[string]float64, len(diversityGroups))
			}
			s.Diversity[group] = *v
		}
	}
	s.TopColleges = rankedList(row, "top_colleges")
	s.TopMajors = rankedList(row, "top_majors")

	s.ID = StableID(s.Name, s.City, s.State, s.Street, s.Zip)
	DeriveKeys(s)
	return s, nil
}

// rankedList reads prefix_1_name/prefix_1_id ... prefix_10_name.
func rankedList(row map[string]string, prefix string) []models.RankedEntry {
	var out []models.RankedEntry
	for i := 1; i <= maxRanked; i++ {
		name := clean(row[fmt.Sprintf("%s_%d_name", prefix, i)])
		if name == "" {
			continue
		}
		out = append(out, models.RankedEntry{
			Name: name,
			ID:   clean(row[fmt.Sprintf("%s_%d_id", prefix, i)]),
		})
	}
	return out
}

// clean trims s and maps null-like literals to "".
func clean(s string) string {
	if normalize.Text(s) == "" {
		return ""
	}
	return strings.TrimSpace(s)
}

// StableID derives NAME-SLUG-CITY-SLUG-STATE. Rows with a blank name fall back to
// "NO-NAME-" plus a UUIDv5 of street|city|state|zip, which is reproducible across processes.
func StableID(name, city, state, street, zip string) string {
	nameSlug := normalize.Slug(name)
	if nameSlug == "" {
		content := strings.Join([]string{
			strings.TrimSpace(street), strings.TrimSpace(city), strings.TrimSpace(state), strings.TrimSpace(zip),
		}, "|")
		return "NO-NAME-" + strings.ToUpper(uuid.NewSHA1(uuid.NameSpaceOID, []byte(content)).String())
	}
	parts := []string{nameSlug}
	if citySlug := normalize.Slug(city); citySlug != "" {
		parts = append(parts, citySlug)
	}
	if st := strings.ToUpper(strings.TrimSpace(state)); st != "" {
		parts = append(parts, st)
	}
	return strings.Join(parts, "-")
}

// DeriveKeys recomputes the search keys of s from its display fields.
func DeriveKeys(s *models.School) {
	zip5 := s.Zip
	if len(zip5) > 5 {
		zip5 = zip5[:5]
	}
	s.Keys = models.SearchKeys{
		Name:      normalize.Text(s.Name),
		City:      normalize.Text(s.City),
		County:    normalize.Text(s.County),
		Metro:     normalize.Text(s.Metro),
		State:     normalize.Text(s.StateName),
		StateAbbr: normalize.Text(s.State),
		Street:    normalize.Text(s.Street),
		StreetKey: normalize.Key(s.Street),
		AddressKeys: uniqueNonEmpty(
			normalize.Key(s.Street+s.City+s.State+s.Zip),
			normalize.Key(s.Street+s.City+s.State+zip5),
			normalize.Key(s.Street+s.City+s.State),
		),
		ZipDigits: normalize.Digits(s.Zip),
	}
}

func uniqueNonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
