// Package present maps school rows to response shapes and summarises matched cohorts.
package present

import (
	"math"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// gradeScores converts the academics letter grade into a 0-100 score.
var gradeScores = map[string]float64{
	"A+": 100, "A": 95, "A-": 90,
	"B+": 85, "B": 80, "B-": 75,
	"C+": 70, "C": 65,
}

// defaultGradeScore is used for letter grades outside gradeScores.
const defaultGradeScore = 70

// School types.
const (
	TypePublic  = "Public"
	TypeCharter = "Charter"
	TypePrivate = "Private"
)

// Format maps one row to its response shape. Fraction metrics are scaled to 0-100 here and nowhere else.
func Format(s *models.School) models.SchoolView {
	v := models.SchoolView{
		ID:         s.ID,
		SchoolName: s.Name,
		Address: models.Address{
			Street: s.Street,
			City:   s.City,
			State:  s.State,
		},
		Metrics: models.SchoolMetrics{
			CollegeReadinessScore: s.ACTAverage,
			CollegePreparation:    collegePreparation(s),
			CollegeEnrollment:     Percent(s.MatriculationRate),
			CollegePerformance:    Percent(s.GraduationRate),
			GraduationRate:        Percent(s.GraduationRate),
			TotalStudents:         s.TotalStudents,
			SATAverage:            s.SATAverage,
			ACTAverage:            s.ACTAverage,
			MathProficiency:       Percent(s.MathProficiency),
			ReadingProficiency:    Percent(s.ReadingProficiency),
		},
		Demographics: models.Demographics{
			FreeReducedLunch:   Percent(s.FreeReducedLunch),
			DiversityBreakdown: make(map[string]float64, len(s.Diversity)),
		},
		SchoolType:    SchoolType(s),
		GradesOffered: s.GradesOffered,
		TopColleges:   s.TopColleges,
		TopMajors:     s.TopMajors,
	}
	if s.Zip != "" {
		zip := s.Zip
		v.Address.Zipcode = &zip
	}
	if s.Latitude != nil && s.Longitude != nil {
		v.Coordinates = &models.Coordinates{Latitude: *s.Latitude, Longitude: *s.Longitude}
	}
	for group, share := range s.Diversity {
		v.Demographics.DiversityBreakdown[group] = round2(share * 100)
	}
	return v
}

// FormatAll formats rows in order.
func FormatAll(rows []*models.School) []models.SchoolView {
	out := make([]models.SchoolView, len(rows))
	for i, s := range rows {
		out[i] = Format(s)
	}
	return out
}

// Percent scales a stored fraction to 0-100, rounded to two decimals. Absent stays absent.
func Percent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	v := round2(*fraction * 100)
	return &v
}

// SchoolType is Public, Charter or Private, checked in that order.
func SchoolType(s *models.School) string {
	switch {
	case s.IsPublic:
		return TypePublic
	case s.IsCharter:
		return TypeCharter
	default:
		return TypePrivate
	}
}

// collegePreparation averages math and reading proficiency (as percentages) with the letter-grade score.
func collegePreparation(s *models.School) *float64 {
	var scores []float64
	if s.MathProficiency != nil {
		scores = append(scores, *s.MathProficiency*100)
	}
	if s.ReadingProficiency != nil {
		scores = append(scores, *s.ReadingProficiency*100)
	}
	if s.GradeAcademics != "" {
		score, ok := gradeScores[s.GradeAcademics]
		if !ok {
			score = defaultGradeScore
		}
		scores = append(scores, score)
	}
	if len(scores) == 0 {
		return nil
	}
	v := round2(mean(scores))
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
