package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/observability"
)

type staticSource struct {
	ds        *dataset.Dataset
	err       error
	onCurrent func()
}

func (s *staticSource) Current(context.Context) (*dataset.Dataset, error) {
	if s.onCurrent != nil {
		s.onCurrent()
	}
	return s.ds, s.err
}

type fakeSuggester struct {
	calls int
	out   []string
}

func (f *fakeSuggester) Suggest(_ context.Context, _ *dataset.Dataset, _ string, n int) ([]string, error) {
	f.calls++
	if len(f.out) > n {
		return f.out[:n], nil
	}
	return f.out, nil
}

func fp(v float64) *float64 { return &v }

func fixture() *dataset.Dataset {
	return dataset.New([]*models.School{
		{Name: "Lincoln High", Street: "123 Main St", City: "Boston", State: "MA", StateName: "Massachusetts",
			Zip: "02139", County: "Suffolk County", Metro: "Boston Metro Area", ACTAverage: fp(24)},
		{Name: "Lincoln Prep", Street: "1234 Main St", City: "Boston", State: "MA", StateName: "Massachusetts",
			Zip: "02139-1234", County: "Suffolk County"},
		{Name: "Cambridge Rindge", Street: "459 Broadway", City: "Cambridge", State: "MA", StateName: "Massachusetts",
			Zip: "02138", County: "Middlesex County"},
		{Name: "Oxford High", Street: "10 Oak St", City: "Oxford", State: "MS", StateName: "Mississippi",
			Zip: "38655", County: "Lafayette County"},
		{Name: "Oxford County Academy", Street: "5 Pine Rd", City: "Paris", State: "ME", StateName: "Maine",
			Zip: "04281", County: "Oxford County"},
		{Name: "Central High", Street: "1 Elm St", City: "Lincoln", State: "NE", StateName: "Nebraska",
			Zip: "68508", County: "Lancaster County"},
	}, dataset.Info{Source: "fixture"})
}

func schoolNames(rows []*models.School) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func newEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	return NewEngine(&staticSource{ds: fixture()}, opts...)
}

func TestClassify(t *testing.T) {
	ds := fixture()
	tests := []struct {
		query string
		want  models.MatchType
	}{
		{"", models.MatchNone},
		{"   ", models.MatchNone},
		{"02139", models.MatchZip},
		{"02139-1234", models.MatchZip},
		{"  021 39 ", models.MatchZip},
		{"1234", models.MatchStreetAddress},
		{"123 Main St", models.MatchStreetAddress},
		{"5th Avenue, New York", models.MatchStreetAddress},
		{"Oxford", models.MatchExactCity},
		{"BOSTON", models.MatchExactCity},
		{"ma", models.MatchExactState},
		{"Mississippi", models.MatchExactState},
		{"lincoln high", models.MatchKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(ds, tt.query))
		})
	}
}

func TestSearch_Zip(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	base, err := e.Search(ctx, "02139")
	require.NoError(t, err)
	assert.Equal(t, models.MatchZip, base.MatchType)
	assert.Equal(t, []string{"Lincoln High", "Lincoln Prep"}, schoolNames(base.Schools))
	for _, s := range base.Schools {
		assert.True(t, strings.HasPrefix(s.Zip, "02139"))
	}

	plus4, err := e.Search(ctx, "02139-1234")
	require.NoError(t, err)
	assert.Equal(t, schoolNames(base.Schools), schoolNames(plus4.Schools))
	assert.Equal(t, base.Total, plus4.Total)
}

func TestSearch_ExactAddress(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(context.Background(), "123 Main St, Boston, MA")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStreetAddress, res.MatchType)
	assert.Equal(t, []string{"Lincoln High"}, schoolNames(res.Schools))

	res, err = e.Search(context.Background(), "123 Main St.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lincoln High"}, schoolNames(res.Schools))

	res, err = e.Search(context.Background(), "1234 Main St Boston MA 02139-1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lincoln Prep"}, schoolNames(res.Schools))
}

func TestSearch_ExactCityBeforeKeyword(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(context.Background(), "Oxford")
	require.NoError(t, err)
	assert.Equal(t, models.MatchExactCity, res.MatchType)
	assert.Equal(t, []string{"Oxford High"}, schoolNames(res.Schools))
}

func TestSearch_ExactState(t *testing.T) {
	e := newEngine(t)
	for _, q := range []string{"Maine", "me", "ME"} {
		res, err := e.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, models.MatchExactState, res.MatchType, q)
		assert.Equal(t, []string{"Oxford County Academy"}, schoolNames(res.Schools), q)
	}
}

func TestSearch_KeywordRanked(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(context.Background(), "Lincoln High")
	require.NoError(t, err)
	assert.Equal(t, models.MatchKeyword, res.MatchType)
	assert.Equal(t, []string{"Lincoln High", "Central High"}, schoolNames(res.Schools))
}

func TestSearch_AddressFallsThroughToKeyword(t *testing.T) {
	e := newEngine(t)
	res, err := e.Search(context.Background(), "99 Broadway")
	require.NoError(t, err)
	assert.Equal(t, models.MatchKeyword, res.MatchType)
	assert.Equal(t, []string{"Cambridge Rindge"}, schoolNames(res.Schools))
}

func TestSearch_TotalBounds(t *testing.T) {
	e := newEngine(t)
	queries := []string{
		"", " ", "02139", "123 Main", "Oxford", "ma", "zzz", "!!!", "lincoln",
		strings.Repeat("a", 10000), "((", "[a-", `\`, "0", "१२३४५", "Ünïcödé",
	}
	for _, q := range queries {
		res, err := e.Search(context.Background(), q)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Total, 0)
		assert.LessOrEqual(t, len(res.Schools), res.Total)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	sugg := &fakeSuggester{out: []string{"x"}}
	e := newEngine(t, WithSuggester(sugg, 5))
	res, err := e.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, models.MatchNone, res.MatchType)
	assert.Zero(t, res.Total)
	assert.Zero(t, sugg.calls)
}

func TestSearch_SuggestionsOnlyOnZeroResults(t *testing.T) {
	sugg := &fakeSuggester{out: []string{"Boston", "Lincoln High", "Oxford"}}
	e := newEngine(t, WithSuggester(sugg, 2))

	res, err := e.Search(context.Background(), "Bostn")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Equal(t, []string{"Boston", "Lincoln High"}, res.Suggestions)

	res, err = e.Search(context.Background(), "Boston")
	require.NoError(t, err)
	assert.NotZero(t, res.Total)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, 1, sugg.calls)
}

func TestSearch_QueryTimeUsesClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &staticSource{ds: fixture(), onCurrent: func() { clock.Advance(15 * time.Millisecond) }}
	e := NewEngine(src, WithClock(clock))
	res, err := e.Search(context.Background(), "Boston")
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.QueryTimeMS)
}

func TestSearch_SourceError(t *testing.T) {
	e := NewEngine(&staticSource{err: dataset.ErrNoData})
	_, err := e.Search(context.Background(), "Boston")
	assert.ErrorIs(t, err, dataset.ErrNoData)
	_, err = e.Resolve(context.Background(), "X", models.Hints{})
	assert.ErrorIs(t, err, dataset.ErrNoData)
}

func TestSearch_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	e := newEngine(t, WithMetrics(m))
	_, _ = e.Search(context.Background(), "Boston")
	_, _ = e.Search(context.Background(), "02139")
	_, _ = e.Search(context.Background(), "Boston")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Searches.WithLabelValues("exact_city")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Searches.WithLabelValues("zip")))

	_, _ = e.Resolve(context.Background(), "NOPE", models.Hints{})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Resolves.WithLabelValues("not_found")))
}

func BenchmarkEngine_Search(b *testing.B) {
	schools := make([]*models.School, 0, 20000)
	cities := []string{"Boston", "Lincoln", "Denver", "Austin", "Salem", "Oxford"}
	for i := 0; i < 20000; i++ {
		schools = append(schools, &models.School{
			Name: cities[i%len(cities)] + " Academy", City: cities[(i+1)%len(cities)],
			State: "MA", StateName: "Massachusetts", Zip: "02139", Street: "1 Main St",
		})
	}
	e := NewEngine(&staticSource{ds: dataset.New(schools, dataset.Info{})})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Search(ctx, "lincoln academy"); err != nil {
			b.Fatal(errors.Unwrap(err))
		}
	}
}
