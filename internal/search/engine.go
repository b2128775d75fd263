package search

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/observability"
	"github.com/hyperjump/schoolfinder/internal/ranking"
)

// Source supplies the dataset a request runs against.
type Source interface {
	Current(ctx context.Context) (*dataset.Dataset, error)
}

// Suggester proposes alternative queries when a search finds nothing.
type Suggester interface {
	Suggest(ctx context.Context, ds *dataset.Dataset, query string, n int) ([]string, error)
}

// Engine answers search and resolve requests against the current dataset.
type Engine struct {
	source          Source
	matchers        []Matcher
	suggester       Suggester
	suggestionCount int
	cache           *ResultCache
	clock           clockwork.Clock
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used for query timing.
func WithClock(c clockwork.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithMetrics records search and resolve outcomes on m.
func WithMetrics(m *observability.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithSuggester enables up to n suggestions for searches with no results.
func WithSuggester(s Suggester, n int) EngineOption {
	return func(e *Engine) {
		e.suggester = s
		e.suggestionCount = n
	}
}

// WithCache memoizes results per dataset in c.
func WithCache(c *ResultCache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithRanker replaces the keyword ranker.
func WithRanker(r *ranking.Ranker) EngineOption {
	return func(e *Engine) { e.matchers = DefaultMatchers(r) }
}

// NewEngine creates a search engine over source.
func NewEngine(source Source, opts ...EngineOption) *Engine {
	e := &Engine{
		source:   source,
		matchers: DefaultMatchers(ranking.NewRanker(nil)),
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns every row matching query, in match order, and the class that produced them.
// Total equals len(Schools); display caps are applied by callers.
func (e *Engine) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	start := e.clock.Now()
	ds, err := e.source.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	key := ParseQuery(query).Normalized
	var result *models.SearchResult
	if cached, ok := e.cachedResult(ds, key); ok {
		copied := *cached
		copied.Query = query
		result = &copied
	} else {
		result = e.search(ctx, ds, query)
		if e.cache != nil {
			stored := *result
			e.cache.Set(ds, key, &stored)
		}
	}

	result.QueryTimeMS = e.clock.Since(start).Milliseconds()
	e.metrics.ObserveSearch(string(result.MatchType), result.Total)
	e.logger.Debug("search",
		zap.String("query", query),
		zap.String("match_type", string(result.MatchType)),
		zap.Int("total", result.Total),
		zap.Int64("query_time_ms", result.QueryTimeMS),
	)
	return result, nil
}

func (e *Engine) cachedResult(ds *dataset.Dataset, key string) (*models.SearchResult, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(ds, key)
}

func (e *Engine) search(ctx context.Context, ds *dataset.Dataset, query string) *models.SearchResult {
	matchType, rows := Run(ds, e.matchers, query)
	result := &models.SearchResult{
		Query:     query,
		MatchType: matchType,
		Schools:   rows,
		Total:     len(rows),
	}

	if result.Total == 0 && e.suggester != nil && e.suggestionCount > 0 && !ParseQuery(query).Empty() {
		suggestions, err := e.suggester.Suggest(ctx, ds, query, e.suggestionCount)
		if err != nil {
			e.logger.Warn("suggestions failed", zap.String("query", query), zap.Error(err))
		} else {
			result.Suggestions = suggestions
		}
	}
	return result
}

// Resolve returns the school identified by id, using hints to choose among rows that share it.
// It returns ErrNotFound when no row has the identifier.
func (e *Engine) Resolve(ctx context.Context, id string, hints models.Hints) (*models.School, error) {
	ds, err := e.source.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	rows := ds.Lookup(id)
	school := Pick(rows, hints)
	e.metrics.ObserveResolve(school != nil)
	if school == nil {
		e.logger.Debug("resolve miss", zap.String("id", id))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if len(rows) > 1 {
		e.logger.Debug("resolved duplicate identifier",
			zap.String("id", id),
			zap.Int("candidates", len(rows)),
		)
	}
	return school, nil
}

// Dataset returns the dataset currently in service.
func (e *Engine) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	return e.source.Current(ctx)
}
