package suggest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
)

func fixture() *dataset.Dataset {
	return dataset.New([]*models.School{
		{Name: "Lincoln High", City: "Boston", State: "MA", StateName: "Massachusetts", County: "Suffolk County"},
		{Name: "Latin Academy", City: "Boston", State: "MA", StateName: "Massachusetts", County: "Suffolk County"},
		{Name: "Rindge School", City: "Cambridge", State: "MA", StateName: "Massachusetts", County: "Middlesex County"},
		{Name: "Oxford High", City: "Oxford", State: "MS", StateName: "Mississippi", County: "Lafayette County"},
	}, dataset.Info{})
}

func TestSuggest_Typo(t *testing.T) {
	s := New(nil)
	defer s.Close()
	ds := fixture()

	got, err := s.Suggest(context.Background(), ds, "Bostn", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0] != "Boston" {
		t.Fatalf("Suggest(Bostn) = %v, want Boston first", got)
	}
	for i, v := range got {
		for _, w := range got[i+1:] {
			if v == w {
				t.Errorf("duplicate suggestion %q in %v", v, got)
			}
		}
	}
}

func TestSuggest_SchoolName(t *testing.T) {
	s := New(nil)
	defer s.Close()
	got, err := s.Suggest(context.Background(), fixture(), "Linclon", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0] != "Lincoln High" {
		t.Errorf("Suggest(Linclon) = %v, want Lincoln High first", got)
	}
}

func TestSuggest_Limits(t *testing.T) {
	s := New(nil)
	defer s.Close()
	ds := fixture()

	got, err := s.Suggest(context.Background(), ds, "Boston Oxford Cambridge", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 2 {
		t.Errorf("expected at most 2 suggestions, got %v", got)
	}

	for _, q := range []string{"", "   ", "!!"} {
		got, err := s.Suggest(context.Background(), ds, q, 5)
		if err != nil || len(got) != 0 {
			t.Errorf("Suggest(%q) = %v, %v; want none", q, got, err)
		}
	}
	if got, _ := s.Suggest(context.Background(), ds, "zzzzzzzzzz", 5); len(got) != 0 {
		t.Errorf("expected no suggestions for unrelated query, got %v", got)
	}
}

func TestSuggest_RebuildsForNewDataset(t *testing.T) {
	s := New(nil)
	defer s.Close()
	if err := s.Warm(fixture()); err != nil {
		t.Fatal(err)
	}
	other := dataset.New([]*models.School{{Name: "Denver East", City: "Denver", StateName: "Colorado"}}, dataset.Info{})
	got, err := s.Suggest(context.Background(), other, "Denvr", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0] != "Denver" {
		t.Errorf("Suggest(Denvr) = %v, want Denver", got)
	}
}

func TestSuggest_ConcurrentDatasetSwaps(t *testing.T) {
	s := New(nil)
	defer s.Close()
	boston := fixture()
	denver := dataset.New([]*models.School{{Name: "Denver East", City: "Denver", StateName: "Colorado"}}, dataset.Info{})

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				ds, query, want := boston, "Bostn", "Boston"
				if (g+i)%2 == 1 {
					ds, query, want = denver, "Denvr", "Denver"
				}
				got, err := s.Suggest(context.Background(), ds, query, 3)
				if err != nil {
					errs <- err
					return
				}
				if len(got) == 0 || got[0] != want {
					errs <- fmt.Errorf("Suggest(%s) = %v, want %s", query, got, want)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSuggester_CloseIsIdempotent(t *testing.T) {
	s := New(nil)
	if err := s.Warm(fixture()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"boston", "bostn", 1},
		{"kitten", "sitting", 3},
		{"münchen", "munchen", 1},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
