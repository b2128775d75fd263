package present

import (
	"math"
	"sort"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// Cohort defaults used when no row in a non-empty set carries the metric.
const (
	defaultMathProficiency    = 0.5
	defaultReadingProficiency = 0.5
	defaultMatriculationRate  = 0.6
	defaultGraduationRate     = 0.75

	// satFloor and satPerACTPoint map an SAT mean onto the ACT scale.
	satFloor       = 400
	satPerACTPoint = 52
)

// Aggregate summarises rows. An empty set yields all zeros rather than the defaults.
// The result does not depend on the order of rows.
func Aggregate(rows []*models.School) models.AggregateMetrics {
	if len(rows) == 0 {
		return models.AggregateMetrics{}
	}

	var readiness float64
	if act, ok := meanOf(rows, func(s *models.School) *float64 { return s.ACTAverage }); ok {
		readiness = act
	} else if sat, ok := meanOf(rows, func(s *models.School) *float64 { return s.SATAverage }); ok {
		readiness = (sat - satFloor) / satPerACTPoint
	}
	readiness = math.Max(readiness, 0)

	mathProf := meanOr(rows, func(s *models.School) *float64 { return s.MathProficiency }, defaultMathProficiency)
	reading := meanOr(rows, func(s *models.School) *float64 { return s.ReadingProficiency }, defaultReadingProficiency)
	enrollment := meanOr(rows, func(s *models.School) *float64 { return s.MatriculationRate }, defaultMatriculationRate)
	graduation := meanOr(rows, func(s *models.School) *float64 { return s.GraduationRate }, defaultGraduationRate)

	return models.AggregateMetrics{
		CollegeReadinessScore: roundNonNegative(readiness),
		AcademicPreparation:   roundNonNegative((mathProf + reading) * 50),
		CollegeEnrollment:     roundNonNegative(enrollment * 100),
		AcademicPerformance:   roundNonNegative(graduation * 100),
	}
}

// roundNonNegative rounds half to even and floors the result at 0.
func roundNonNegative(v float64) float64 {
	r := math.RoundToEven(v)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return r + 0 // normalizes -0
}

func meanOr(rows []*models.School, field func(*models.School) *float64, fallback float64) float64 {
	if m, ok := meanOf(rows, field); ok {
		return m
	}
	return fallback
}

// meanOf averages the present, finite values of field. Values are summed in sorted
// order so the result is identical for any permutation of rows.
func meanOf(rows []*models.School, field func(*models.School) *float64) (float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, s := range rows {
		if v := field(s); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)
	return mean(values), true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
