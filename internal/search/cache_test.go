package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
)

func TestResultCache_GetSet(t *testing.T) {
	ds := fixture()
	c := NewResultCache(2)
	if v, ok := c.Get(ds, "a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set(ds, "a", &models.SearchResult{Total: 1})
	v, ok := c.Get(ds, "a")
	if !ok || v.Total != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set(ds, "b", &models.SearchResult{Total: 2})
	c.Set(ds, "c", &models.SearchResult{Total: 3}) // evicts a
	if _, ok := c.Get(ds, "a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get(ds, "b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get(ds, "c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestResultCache_ResetsOnNewDataset(t *testing.T) {
	c := NewResultCache(4)
	first := fixture()
	c.Set(first, "boston", &models.SearchResult{Total: 2})
	if _, ok := c.Get(fixture(), "boston"); ok {
		t.Error("entry from another dataset must not be served")
	}
	if c.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", c.Len())
	}
}

func TestSearch_CachedResult(t *testing.T) {
	calls := 0
	src := &staticSource{ds: fixture(), onCurrent: func() { calls++ }}
	sugg := &fakeSuggester{out: []string{"Boston"}}
	cache := NewResultCache(8)
	e := NewEngine(src, WithCache(cache), WithSuggester(sugg, 1))

	first, err := e.Search(context.Background(), "Boston")
	require.NoError(t, err)
	second, err := e.Search(context.Background(), "  BOSTON ")
	require.NoError(t, err)
	assert.Equal(t, first.Schools, second.Schools)
	assert.Equal(t, first.MatchType, second.MatchType)
	assert.Equal(t, "  BOSTON ", second.Query)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 2, calls)

	_, err = e.Search(context.Background(), "Bostn")
	require.NoError(t, err)
	res, err := e.Search(context.Background(), "bostn")
	require.NoError(t, err)
	assert.Equal(t, []string{"Boston"}, res.Suggestions)
	assert.Equal(t, 1, sugg.calls)

	src.ds = dataset.New(fixture().Rows()[:1], dataset.Info{})
	res, err = e.Search(context.Background(), "Boston")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}
