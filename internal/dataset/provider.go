package dataset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/config"
	"github.com/hyperjump/schoolfinder/internal/observability"
	"github.com/hyperjump/schoolfinder/internal/watcher"
)

// Provider hands out the dataset in service according to the configured reload policy:
//
//	static       load once at Start
//	per_request  load again on every Current call
//	watch        load once, reload whenever the source file changes
//
// A failed background reload keeps the previous dataset.
type Provider struct {
	cfg      config.DataConfig
	logger   *zap.Logger
	clock    clockwork.Clock
	metrics  *observability.Metrics
	debounce time.Duration

	current atomic.Pointer[Dataset]
	mu      sync.Mutex
	watcher *watcher.Watcher
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used to time loads.
func WithClock(c clockwork.Clock) ProviderOption {
	return func(p *Provider) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithMetrics records load outcomes on m.
func WithMetrics(m *observability.Metrics) ProviderOption {
	return func(p *Provider) { p.metrics = m }
}

// WithWatchDebounce sets the file watcher quiet period for the watch policy.
func WithWatchDebounce(d time.Duration) ProviderOption {
	return func(p *Provider) { p.debounce = d }
}

// NewProvider creates a provider for cfg. Call Start before Current.
func NewProvider(cfg config.DataConfig, opts ...ProviderOption) *Provider {
	p := &Provider{
		cfg:    cfg,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the configured reload policy.
func (p *Provider) Policy() string {
	if p.cfg.Reload == "" {
		return config.ReloadStatic
	}
	return p.cfg.Reload
}

// Start performs the initial load. Under the watch policy it also starts the file watcher.
func (p *Provider) Start(ctx context.Context) error {
	if err := p.Reload(ctx); err != nil {
		return err
	}
	if p.Policy() != config.ReloadWatch {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher != nil {
		return nil
	}
	w := watcher.NewWatcher(p.cfg.Path, func(string) {
		if err := p.Reload(context.Background()); err != nil {
			p.logger.Error("dataset reload failed, keeping previous data", zap.String("source", p.cfg.Path), zap.Error(err))
		}
	}, watcher.WithLogger(p.logger), watcher.WithDebounce(p.debounce))
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", p.cfg.Path, err)
	}
	p.watcher = w
	return nil
}

// Current returns the dataset in service. Under the per_request policy it loads a fresh one.
func (p *Provider) Current(ctx context.Context) (*Dataset, error) {
	if p.Policy() == config.ReloadPerRequest {
		ds, err := p.load(ctx)
		if err != nil {
			return nil, err
		}
		p.current.Store(ds)
		return ds, nil
	}
	ds := p.current.Load()
	if ds == nil {
		return nil, ErrNoData
	}
	return ds, nil
}

// Reload loads the source and swaps it in on success. On failure the previous dataset stays.
func (p *Provider) Reload(ctx context.Context) error {
	ds, err := p.load(ctx)
	if err != nil {
		return err
	}
	if prev := p.current.Swap(ds); prev != nil {
		p.logger.Info("dataset reloaded", zap.Int("previous_rows", prev.Len()), zap.Int("rows", ds.Len()))
	}
	return nil
}

func (p *Provider) load(ctx context.Context) (*Dataset, error) {
	start := p.clock.Now()
	ds, err := Load(ctx, p.cfg, p.logger)
	rows := 0
	if ds != nil {
		rows = ds.Len()
	}
	p.metrics.ObserveLoad(rows, p.clock.Since(start), err)
	return ds, err
}

// Close stops the file watcher, if any.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher != nil {
		p.watcher.Stop()
		p.watcher = nil
	}
	return nil
}
