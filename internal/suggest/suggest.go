// Package suggest proposes "did you mean" alternatives for searches that match nothing.
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/dataset"
)

// Indexed fields, in the order a matching field is preferred as the suggestion.
var suggestFields = []string{"city", "name", "county", "state"}

// maxFuzziness is the largest edit distance a suggestion may be from a query term.
const maxFuzziness = 2

// Suggester keeps an in-memory Bleve index of the dataset it last served.
// The index is rebuilt when a different dataset is passed in. A replaced index
// stays open until the searches still using it release it.
type Suggester struct {
	mu      sync.Mutex
	current *sharedIndex
	logger  *zap.Logger
}

// sharedIndex is a Bleve index with a count of in-flight searches.
type sharedIndex struct {
	ds      *dataset.Dataset
	index   bleve.Index
	refs    int
	retired bool
}

// New creates a suggester. logger may be nil.
func New(logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{logger: logger}
}

func newIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.IncludeTermVectors = true
	for _, f := range suggestFields {
		docMapping.AddFieldMappingsAt(f, textFieldMapping)
	}
	im.AddDocumentMapping("school", docMapping)
	im.DefaultType = "school"
	im.DefaultMapping = docMapping
	return im
}

// Warm builds the index for ds ahead of the first zero-result search.
func (s *Suggester) Warm(ds *dataset.Dataset) error {
	shared, err := s.acquire(ds)
	if err != nil {
		return err
	}
	return s.release(shared)
}

// acquire returns the index for ds with its reference count raised. Callers
// must hand it back through release.
func (s *Suggester) acquire(ds *dataset.Dataset) (*sharedIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ds == ds {
		s.current.refs++
		return s.current, nil
	}

	index, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := index.NewBatch()
	for i, row := range ds.Rows() {
		doc := map[string]interface{}{
			"name":   row.Name,
			"city":   row.City,
			"county": row.County,
			"state":  row.StateName,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index row %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index dataset: %w", err)
	}

	if err := s.retire(s.current); err != nil {
		s.logger.Warn("failed to close suggestion index", zap.Error(err))
	}
	s.current = &sharedIndex{ds: ds, index: index, refs: 1}
	s.logger.Debug("suggestion index built", zap.Int("rows", ds.Len()))
	return s.current, nil
}

// release drops one reference and closes the index once it is retired and unused.
func (s *Suggester) release(shared *sharedIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shared.refs--
	if shared.retired && shared.refs == 0 {
		return shared.index.Close()
	}
	return nil
}

// retire marks shared as replaced. It is closed now if no search holds it.
// Must be called with s.mu held.
func (s *Suggester) retire(shared *sharedIndex) error {
	if shared == nil || shared.retired {
		return nil
	}
	shared.retired = true
	if shared.refs == 0 {
		return shared.index.Close()
	}
	return nil
}

// Suggest returns up to n distinct city or school names (or county or state names when
// those are what matched) that are within a small edit distance of the query terms, best first.
func (s *Suggester) Suggest(ctx context.Context, ds *dataset.Dataset, query string, n int) ([]string, error) {
	terms := tokenize(query)
	if len(terms) == 0 || n <= 0 || ds == nil || ds.Len() == 0 {
		return nil, nil
	}
	shared, err := s.acquire(ds)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.release(shared); err != nil {
			s.logger.Warn("failed to close suggestion index", zap.Error(err))
		}
	}()

	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness(term))
		queries = append(queries, fq)
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = n * 10
	req.IncludeLocations = true
	results, err := shared.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	type candidate struct {
		text string
		rank int
	}
	seen := make(map[string]bool)
	var candidates []candidate
	for rank, hit := range results.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= ds.Len() {
			continue
		}
		row := ds.Row(i)
		values := map[string]string{
			"city": row.City, "name": row.Name, "county": row.County, "state": row.StateName,
		}
		for _, f := range suggestFields {
			if _, ok := hit.Locations[f]; !ok || values[f] == "" {
				continue
			}
			key := strings.ToLower(values[f])
			if !seen[key] {
				seen[key] = true
				candidates = append(candidates, candidate{text: values[f], rank: rank})
			}
			break
		}
	}

	normalized := strings.Join(terms, " ")
	sort.SliceStable(candidates, func(a, b int) bool {
		da := editDistance(normalized, strings.ToLower(candidates[a].text))
		db := editDistance(normalized, strings.ToLower(candidates[b].text))
		if da != db {
			return da < db
		}
		return candidates[a].rank < candidates[b].rank
	})

	out := make([]string, 0, min(n, len(candidates)))
	for _, c := range candidates {
		if len(out) == n {
			break
		}
		out = append(out, c.text)
	}
	return out, nil
}

// Close releases the index.
// Searches still in flight keep it open until they finish.
func (s *Suggester) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.retire(s.current)
	s.current = nil
	return err
}

// tokenize lowercases query and splits it on anything that is not a letter or digit.
func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fuzziness allows one edit for short terms and two otherwise.
func fuzziness(term string) int {
	if len([]rune(term)) <= 4 {
		return 1
	}
	return maxFuzziness
}
