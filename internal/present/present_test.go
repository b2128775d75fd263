package present

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/normalize"
)

func fp(v float64) *float64 { return &v }

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, models.AggregateMetrics{}, Aggregate(nil))
	assert.Equal(t, models.AggregateMetrics{}, Aggregate([]*models.School{}))
}

func TestAggregate_Defaults(t *testing.T) {
	got := Aggregate([]*models.School{{Name: "bare"}})
	assert.Equal(t, models.AggregateMetrics{
		CollegeReadinessScore: 0,
		AcademicPreparation:   50,
		CollegeEnrollment:     60,
		AcademicPerformance:   75,
	}, got)
}

func TestAggregate_Values(t *testing.T) {
	rows := []*models.School{
		{ACTAverage: fp(20), SATAverage: fp(1000), MathProficiency: fp(0.6), ReadingProficiency: fp(0.8),
			MatriculationRate: fp(0.5), GraduationRate: fp(0.9)},
		{ACTAverage: fp(25), MathProficiency: fp(0.4), GraduationRate: fp(0.8)},
		{SATAverage: fp(1600)},
	}
	got := Aggregate(rows)
	// ACT mean 22.5 rounds half to even.
	assert.Equal(t, 22.0, got.CollegeReadinessScore)
	// (0.5 + 0.8) * 50 = 65
	assert.Equal(t, 65.0, got.AcademicPreparation)
	assert.Equal(t, 50.0, got.CollegeEnrollment)
	assert.Equal(t, 85.0, got.AcademicPerformance)
}

func TestAggregate_SATFallback(t *testing.T) {
	got := Aggregate([]*models.School{{SATAverage: fp(1180)}, {SATAverage: fp(1220)}})
	// (1200 - 400) / 52 = 15.38
	assert.Equal(t, 15.0, got.CollegeReadinessScore)

	low := Aggregate([]*models.School{{SATAverage: fp(300)}})
	assert.Equal(t, 0.0, low.CollegeReadinessScore)
	assert.False(t, math.Signbit(low.CollegeReadinessScore))
}

func TestAggregate_IndependentOfRowOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([]*models.School, 200)
	for i := range rows {
		rows[i] = &models.School{
			ACTAverage:         fp(15 + rng.Float64()*20),
			MathProficiency:    fp(rng.Float64()),
			ReadingProficiency: fp(rng.Float64()),
			MatriculationRate:  fp(rng.Float64()),
			GraduationRate:     fp(rng.Float64()),
		}
	}
	want := Aggregate(rows)
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		assert.Equal(t, want, Aggregate(rows))
	}
}

func TestFormat(t *testing.T) {
	students := 1200
	s := &models.School{
		ID: "LINCOLN-HIGH-BOSTON-MA", Name: "Lincoln High", Street: "123 Main St", City: "Boston", State: "MA",
		Zip: "02139", Latitude: fp(42.36), Longitude: fp(-71.1),
		ACTAverage: fp(27), SATAverage: fp(1300), GraduationRate: fp(0.93), MatriculationRate: fp(0.71),
		MathProficiency: fp(0.8), ReadingProficiency: fp(0.9), GradeAcademics: "A-",
		TotalStudents: &students, IsCharter: true, FreeReducedLunch: fp(0.25),
		Diversity:     map[string]float64{"asian": 0.125},
		GradesOffered: "9-12",
		TopColleges:   []models.RankedEntry{{Name: "MIT", ID: "m"}},
	}
	v := Format(s)
	assert.Equal(t, "LINCOLN-HIGH-BOSTON-MA", v.ID)
	require.NotNil(t, v.Address.Zipcode)
	assert.Equal(t, "02139", *v.Address.Zipcode)
	require.NotNil(t, v.Coordinates)
	assert.Equal(t, -71.1, v.Coordinates.Longitude)
	assert.Equal(t, 93.0, *v.Metrics.GraduationRate)
	assert.Equal(t, 93.0, *v.Metrics.CollegePerformance)
	assert.Equal(t, 71.0, *v.Metrics.CollegeEnrollment)
	// (80 + 90 + 90) / 3
	assert.InDelta(t, 86.67, *v.Metrics.CollegePreparation, 1e-9)
	assert.Equal(t, 27.0, *v.Metrics.CollegeReadinessScore)
	assert.Equal(t, 25.0, *v.Demographics.FreeReducedLunch)
	assert.Equal(t, 12.5, v.Demographics.DiversityBreakdown["asian"])
	assert.Equal(t, TypeCharter, v.SchoolType)
	assert.Len(t, v.TopColleges, 1)
}

func TestFormat_AbsentValues(t *testing.T) {
	s := &models.School{Name: "Sparse", Latitude: fp(40), TotalStudents: normalize.Count("0"),
		ACTAverage: normalize.NonZero("nan"), GradeAcademics: "D"}
	v := Format(s)
	assert.Nil(t, v.Address.Zipcode)
	assert.Nil(t, v.Coordinates, "coordinates need both latitude and longitude")
	assert.Nil(t, v.Metrics.TotalStudents)
	assert.Nil(t, v.Metrics.ACTAverage)
	assert.Nil(t, v.Metrics.GraduationRate)
	assert.Equal(t, 70.0, *v.Metrics.CollegePreparation, "unknown grades score 70")
	assert.Equal(t, TypePrivate, v.SchoolType)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	metrics := decoded["metrics"].(map[string]any)
	assert.Contains(t, metrics, "total_students")
	assert.Nil(t, metrics["total_students"])
}

func TestPercent_RoundTrip(t *testing.T) {
	stored := normalize.Percent("93")
	require.NotNil(t, stored)
	assert.InDelta(t, 0.93, *stored, 1e-12)

	shown := Percent(stored)
	require.NotNil(t, shown)
	assert.Equal(t, 93.0, *shown)

	again := normalize.Percent("93")
	assert.InDelta(t, *stored, *again, 1e-12)
	assert.Nil(t, Percent(nil))
}

func TestSchoolType(t *testing.T) {
	assert.Equal(t, TypePublic, SchoolType(&models.School{IsPublic: true, IsCharter: true}))
	assert.Equal(t, TypeCharter, SchoolType(&models.School{IsCharter: true}))
	assert.Equal(t, TypePrivate, SchoolType(&models.School{}))
}

func TestComputeStats(t *testing.T) {
	rows := []*models.School{
		{City: "Boston", StateName: "Massachusetts", County: "Suffolk County", Metro: "Boston"},
		{City: "Boston", StateName: "Massachusetts", County: "Suffolk County"},
		{City: "Austin", StateName: "Texas", County: "Travis County", Metro: "Austin"},
		{City: "", StateName: ""},
	}
	assert.Equal(t, models.Stats{TotalSchools: 4, States: 2, Cities: 2, Counties: 2, MetroAreas: 2}, ComputeStats(rows))
}

func TestSearchData_CapsDisplayNotMetrics(t *testing.T) {
	rows := make([]*models.School, 60)
	for i := range rows {
		rows[i] = &models.School{Name: "S", GraduationRate: fp(0.5)}
	}
	rows[59].GraduationRate = fp(1.0)
	result := &models.SearchResult{Query: "q", MatchType: models.MatchKeyword, Schools: rows, Total: len(rows)}

	data := SearchData(result, 50)
	assert.Len(t, data.Schools, 50)
	assert.Equal(t, 60, data.TotalSchools)
	// mean(59*0.5 + 1.0)/60 = 0.5083 -> 51
	assert.Equal(t, 51.0, data.Metrics.AcademicPerformance)
}
