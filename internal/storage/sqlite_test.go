package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/schoolfinder/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestSQLiteStorage_Snapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "test.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	students := 1200
	schools := []*models.School{
		{
			ID: "LINCOLN-HIGH-SPRINGFIELD-IL", Name: "Lincoln High", City: "Springfield", State: "IL",
			StateName: "Illinois", Zip: "62701", ACTAverage: ptr(24), GraduationRate: ptr(0.93),
			TotalStudents: &students, IsPublic: true,
			Diversity:   map[string]float64{"asian": 0.1},
			TopColleges: []models.RankedEntry{{Name: "UIUC", ID: "u1"}},
		},
		{ID: "OAK-ACADEMY-DENVER-CO", Name: "Oak Academy", City: "Denver", State: "CO"},
	}
	if err := store.SaveSnapshot(ctx, schools); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountSchools(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountSchools = %d, want 2", n)
	}

	got, err := store.GetSchool(ctx, "LINCOLN-HIGH-SPRINGFIELD-IL")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Lincoln High" || got.GraduationRate == nil || *got.GraduationRate != 0.93 {
		t.Errorf("got %+v", got)
	}
	if got.Diversity["asian"] != 0.1 || len(got.TopColleges) != 1 {
		t.Errorf("payload lost nested fields: %+v", got)
	}

	// A second snapshot replaces the first.
	if err := store.SaveSnapshot(ctx, schools[1:]); err != nil {
		t.Fatal(err)
	}
	n, _ = store.CountSchools(ctx)
	if n != 1 {
		t.Errorf("after replace CountSchools = %d, want 1", n)
	}
	if _, err := store.GetSchool(ctx, "LINCOLN-HIGH-SPRINGFIELD-IL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	err = store.SaveSnapshot(ctx, []*models.School{
		{ID: "A-X-TX", Name: "A", City: "X", State: "TX", Zip: "75001", ACTAverage: ptr(21.5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	cols, rows, err := ReadTable(ctx, path, SnapshotTable)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	byName := make(map[string]string)
	for i, c := range cols {
		byName[c] = rows[0][i]
	}
	if byName["school_name"] != "A" || byName["address_zipcode"] != "75001" || byName["act_average"] != "21.5" {
		t.Errorf("unexpected row %v", byName)
	}
	if byName["sat_average"] != "" {
		t.Errorf("absent value should read as empty, got %q", byName["sat_average"])
	}
}

func TestReadTable_InvalidName(t *testing.T) {
	tests := []string{"", "schools; DROP TABLE x", "1abc", `a"b`}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadTable(context.Background(), filepath.Join(t.TempDir(), "x.db"), name)
			if !errors.Is(err, ErrInvalidTable) {
				t.Errorf("ReadTable(%q) err = %v, want ErrInvalidTable", name, err)
			}
		})
	}
}
