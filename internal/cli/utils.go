// Package cli provides CLI output helpers for schoolfinder.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const nameWidth = 40

// WriteSearchResults writes a search payload to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, data models.SearchData, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, data)
	default:
		writeSearchResultsText(w, data)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, data models.SearchData) {
	fmt.Fprintf(w, "\nFound %d schools in %dms (match: %s)\n", data.TotalSchools, data.QueryTimeMS, data.MatchType)
	if data.TotalSchools == 0 {
		if len(data.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(data.Suggestions, ", "))
		}
		return
	}
	m := data.Metrics
	fmt.Fprintf(w, "Readiness %.0f | Preparation %.0f | Enrollment %.0f | Performance %.0f\n\n",
		m.CollegeReadinessScore, m.AcademicPreparation, m.CollegeEnrollment, m.AcademicPerformance)
	for i, s := range data.Schools {
		fmt.Fprintf(w, "%3d. %-*s %s\n", i+1, nameWidth+3, utils.Truncate(s.SchoolName, nameWidth), location(s.Address))
		fmt.Fprintf(w, "     ID: %s | %s\n", s.ID, s.SchoolType)
	}
	if hidden := data.TotalSchools - len(data.Schools); hidden > 0 {
		fmt.Fprintf(w, "\n... and %d more\n", hidden)
	}
}

// WriteSchool writes one formatted school to w.
func WriteSchool(w io.Writer, view models.SchoolView, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, view)
	}
	fmt.Fprintf(w, "%s\n", view.SchoolName)
	fmt.Fprintf(w, "ID:      %s\n", view.ID)
	fmt.Fprintf(w, "Address: %s, %s\n", view.Address.Street, location(view.Address))
	fmt.Fprintf(w, "Type:    %s\n", view.SchoolType)
	if view.GradesOffered != "" {
		fmt.Fprintf(w, "Grades:  %s\n", view.GradesOffered)
	}
	if view.Coordinates != nil {
		fmt.Fprintf(w, "Coords:  %.5f, %.5f\n", view.Coordinates.Latitude, view.Coordinates.Longitude)
	}
	m := view.Metrics
	writeMetric(w, "Graduation rate", m.GraduationRate, "%")
	writeMetric(w, "College enrollment", m.CollegeEnrollment, "%")
	writeMetric(w, "College preparation", m.CollegePreparation, "")
	writeMetric(w, "Math proficiency", m.MathProficiency, "%")
	writeMetric(w, "Reading proficiency", m.ReadingProficiency, "%")
	writeMetric(w, "SAT average", m.SATAverage, "")
	writeMetric(w, "ACT average", m.ACTAverage, "")
	if m.TotalStudents != nil {
		fmt.Fprintf(w, "  %-20s %d\n", "Students", *m.TotalStudents)
	}
	return nil
}

func writeMetric(w io.Writer, label string, v *float64, unit string) {
	if v == nil {
		return
	}
	fmt.Fprintf(w, "  %-20s %.2f%s\n", label, *v, unit)
}

// WriteStats writes dataset statistics to w.
func WriteStats(w io.Writer, stats models.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	fmt.Fprintf(w, "Schools:     %d\n", stats.TotalSchools)
	fmt.Fprintf(w, "States:      %d\n", stats.States)
	fmt.Fprintf(w, "Cities:      %d\n", stats.Cities)
	fmt.Fprintf(w, "Counties:    %d\n", stats.Counties)
	fmt.Fprintf(w, "Metro areas: %d\n", stats.MetroAreas)
	return nil
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(data models.SearchData) {
	_ = WriteSearchResults(os.Stdout, data, OutputText)
}

func location(a models.Address) string {
	loc := a.City
	if a.State != "" {
		loc += ", " + a.State
	}
	if a.Zipcode != nil {
		loc += " " + *a.Zipcode
	}
	return loc
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
