// Package dataset loads school records from tabular sources into an immutable in-memory table.
package dataset

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/config"
	"github.com/hyperjump/schoolfinder/internal/models"
)

// buildChunk is the number of rows normalized per pool task.
const buildChunk = 512

// Dataset is a read-only table of schools plus lookup indexes.
// Nothing mutates a Dataset after New returns, so it is safe for concurrent readers.
type Dataset struct {
	schools    []*models.School
	byID       map[string][]int
	bySourceID map[string][]int
	cities     map[string]struct{}
	states     map[string]struct{}
	source     string
	schema     string
	loadedAt   time.Time
}

// Info describes where a dataset came from.
type Info struct {
	Source   string
	Schema   string
	LoadedAt time.Time
}

// New indexes schools. Rows without an ID get a stable id, and every row's search keys are recomputed.
func New(schools []*models.School, info Info) *Dataset {
	d := &Dataset{
		schools:    schools,
		byID:       make(map[string][]int, len(schools)),
		bySourceID: make(map[string][]int),
		cities:     make(map[string]struct{}),
		states:     make(map[string]struct{}),
		source:     info.Source,
		schema:     info.Schema,
		loadedAt:   info.LoadedAt,
	}
	for i, s := range schools {
		if s.ID == "" {
			s.ID = StableID(s.Name, s.City, s.State, s.Street, s.Zip)
		}
		DeriveKeys(s)
		d.byID[s.ID] = append(d.byID[s.ID], i)
		for _, alt := range []string{s.SourceID, s.NCESID} {
			if alt != "" && alt != s.ID {
				d.bySourceID[alt] = append(d.bySourceID[alt], i)
			}
		}
		if s.Keys.City != "" {
			d.cities[s.Keys.City] = struct{}{}
		}
		if s.Keys.State != "" {
			d.states[s.Keys.State] = struct{}{}
		}
		if s.Keys.StateAbbr != "" {
			d.states[s.Keys.StateAbbr] = struct{}{}
		}
	}
	return d
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.schools) }

// Rows returns the rows in source order. Callers must not modify them.
func (d *Dataset) Rows() []*models.School { return d.schools }

// Row returns row i.
func (d *Dataset) Row(i int) *models.School { return d.schools[i] }

// Lookup returns the rows whose stable id equals id, falling back to the
// source identifiers (niche uuid, NCES id) when no stable id matches.
func (d *Dataset) Lookup(id string) []*models.School {
	idx := d.byID[id]
	if len(idx) == 0 {
		idx = d.bySourceID[id]
	}
	out := make([]*models.School, len(idx))
	for i, j := range idx {
		out[i] = d.schools[j]
	}
	return out
}

// HasCity reports whether some row's lowercased city equals city.
func (d *Dataset) HasCity(city string) bool {
	_, ok := d.cities[city]
	return ok
}

// HasState reports whether some row's lowercased state abbreviation or name equals state.
func (d *Dataset) HasState(state string) bool {
	_, ok := d.states[state]
	return ok
}

// Info returns the dataset provenance.
func (d *Dataset) Info() Info {
	return Info{Source: d.source, Schema: d.schema, LoadedAt: d.loadedAt}
}

// Load reads, canonicalizes and indexes the source described by cfg.
// Any failure is returned; callers treat it as "no school data".
func Load(ctx context.Context, cfg config.DataConfig, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	t, err := readTable(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}
	adapter, err := SelectAdapter(cfg.Schema, t.header)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}
	schools, err := Build(t.records(), adapter)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}
	if len(schools) == 0 {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, ErrNoData)
	}
	ds := New(schools, Info{Source: cfg.Path, Schema: adapter.Name(), LoadedAt: time.Now()})
	logger.Info("school data loaded",
		zap.String("source", cfg.Path),
		zap.String("schema", adapter.Name()),
		zap.Int("rows", ds.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

// Build canonicalizes and converts records on a worker pool. Output order matches input order.
func Build(records []map[string]string, adapter SchemaAdapter) ([]*models.School, error) {
	schools := make([]*models.School, len(records))
	if len(records) == 0 {
		return schools, nil
	}
	pool, err := ants.NewPool(runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	convert := func(from, to int) {
		defer wg.Done()
		for i := from; i < to; i++ {
			s, err := toSchool(adapter.Canonicalize(records[i]))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("row %d: %w", i+1, err)
				}
				mu.Unlock()
				return
			}
			schools[i] = s
		}
	}
	for from := 0; from < len(records); from += buildChunk {
		to := min(from+buildChunk, len(records))
		wg.Add(1)
		f, t := from, to
		if err := pool.Submit(func() { convert(f, t) }); err != nil {
			convert(f, t)
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return schools, nil
}
