package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/schoolfinder/internal/models"
)

// SnapshotTable is the table SaveSnapshot writes. Its columns use the canonical
// niche-style names so a snapshot database can be loaded back as a dataset.
const SnapshotTable = "schools"

// SQLiteStorage implements SnapshotStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// snapshotColumns lists the canonical columns after stable_id, in insert order.
var snapshotColumns = []string{
	"niche_school_uuid", "nces_id", "district_id", "school_name",
	"address_address", "address_city", "address_state", "address_zipcode",
	"county_name", "metro_area_name", "state_name", "latitude", "longitude",
	"act_average", "sat_average", "sat_math", "sat_verbal",
	"graduation_rate", "math_proficiency", "reading_proficiency", "four_year_matriculation_rate",
	"grade_academics", "total_students",
	"is_public", "is_charter", "is_boarding", "is_elementary", "is_middle", "is_high",
	"grades_offered", "tuition", "student_teacher_ratio", "free_reduced_lunch",
	"payload",
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schools (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		stable_id TEXT NOT NULL,
		niche_school_uuid TEXT,
		nces_id TEXT,
		district_id TEXT,
		school_name TEXT,
		address_address TEXT,
		address_city TEXT,
		address_state TEXT,
		address_zipcode TEXT,
		county_name TEXT,
		metro_area_name TEXT,
		state_name TEXT,
		latitude TEXT,
		longitude TEXT,
		act_average TEXT,
		sat_average TEXT,
		sat_math TEXT,
		sat_verbal TEXT,
		graduation_rate TEXT,
		math_proficiency TEXT,
		reading_proficiency TEXT,
		four_year_matriculation_rate TEXT,
		grade_academics TEXT,
		total_students TEXT,
		is_public TEXT,
		is_charter TEXT,
		is_boarding TEXT,
		is_elementary TEXT,
		is_middle TEXT,
		is_high TEXT,
		grades_offered TEXT,
		tuition TEXT,
		student_teacher_ratio TEXT,
		free_reduced_lunch TEXT,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schools_stable_id ON schools(stable_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveSnapshot deletes the previous snapshot and inserts schools in one transaction.
// Row order is preserved through the autoincrement rowid.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, schools []*models.School) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schools`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	placeholders := strings.Repeat("?, ", len(snapshotColumns)) + "?"
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO schools (stable_id, %s) VALUES (%s)`, strings.Join(snapshotColumns, ", "), placeholders,
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, school := range schools {
		args, err := snapshotArgs(school)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert %s: %w", school.ID, err)
		}
	}
	return tx.Commit()
}

func snapshotArgs(school *models.School) ([]any, error) {
	payload, err := json.Marshal(school)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", school.ID, err)
	}
	return []any{
		school.ID,
		school.SourceID, school.NCESID, school.DistrictID, school.Name,
		school.Street, school.City, school.State, school.Zip,
		school.County, school.Metro, school.StateName, formatFloat(school.Latitude), formatFloat(school.Longitude),
		formatFloat(school.ACTAverage), formatFloat(school.SATAverage), formatFloat(school.SATMath), formatFloat(school.SATVerbal),
		formatFloat(school.GraduationRate), formatFloat(school.MathProficiency), formatFloat(school.ReadingProficiency), formatFloat(school.MatriculationRate),
		school.GradeAcademics, formatInt(school.TotalStudents),
		formatBool(school.IsPublic), formatBool(school.IsCharter), formatBool(school.IsBoarding),
		formatBool(school.IsElementary), formatBool(school.IsMiddle), formatBool(school.IsHigh),
		school.GradesOffered, formatFloat(school.Tuition), formatFloat(school.StudentTeacherRatio), formatFloat(school.FreeReducedLunch),
		string(payload),
	}, nil
}

// GetSchool returns the first stored school with the given stable id, decoded from its JSON payload.
func (s *SQLiteStorage) GetSchool(ctx context.Context, id string) (*models.School, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM schools WHERE stable_id = ? ORDER BY rowid LIMIT 1`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var school models.School
	if err := json.Unmarshal([]byte(payload), &school); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}
	return &school, nil
}

// CountSchools returns the number of stored rows.
func (s *SQLiteStorage) CountSchools(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schools`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
