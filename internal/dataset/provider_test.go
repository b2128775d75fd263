package dataset

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/schoolfinder/internal/config"
	"github.com/hyperjump/schoolfinder/internal/observability"
)

func TestProvider_Static(t *testing.T) {
	path := writeFile(t, "schools.csv", nicheCSV)
	p := NewProvider(config.DataConfig{Path: path, Reload: config.ReloadStatic}, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, p.Start(context.Background()))
	defer p.Close()

	a, err := p.Current(context.Background())
	require.NoError(t, err)
	b, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestProvider_PerRequest(t *testing.T) {
	path := writeFile(t, "schools.csv", nicheCSV)
	p := NewProvider(config.DataConfig{Path: path, Reload: config.ReloadPerRequest})
	require.NoError(t, p.Start(context.Background()))

	a, err := p.Current(context.Background())
	require.NoError(t, err)
	b, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Len(), b.Len())

	require.NoError(t, os.Remove(path))
	_, err = p.Current(context.Background())
	assert.Error(t, err, "per-request load failure surfaces to the caller")
}

func TestProvider_CurrentBeforeStart(t *testing.T) {
	p := NewProvider(config.DataConfig{Path: "unused.csv"})
	_, err := p.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestProvider_StartFailsWithoutData(t *testing.T) {
	path := writeFile(t, "schools.csv", "")
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	p := NewProvider(config.DataConfig{Path: path}, WithMetrics(metrics))
	err := p.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("error")))
}

func TestProvider_ReloadKeepsPreviousOnFailure(t *testing.T) {
	path := writeFile(t, "schools.csv", nicheCSV)
	p := NewProvider(config.DataConfig{Path: path})
	require.NoError(t, p.Start(context.Background()))
	before, _ := p.Current(context.Background())

	require.NoError(t, os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0600))
	assert.Error(t, p.Reload(context.Background()))

	after, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestProvider_WatchReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "schools.csv", nicheCSV)
	p := NewProvider(config.DataConfig{Path: path, Reload: config.ReloadWatch}, WithWatchDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	defer p.Close()

	before, err := p.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, before.Len())

	require.NoError(t, os.WriteFile(path, []byte(censusCSV), 0600))
	assert.Eventually(t, func() bool {
		ds, err := p.Current(ctx)
		return err == nil && ds.Len() == 2
	}, 3*time.Second, 25*time.Millisecond)
}
