package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/trendline/internal/iocache"
	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeriveCachedWithoutStore(t *testing.T) {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSummaryStore").Return(nil)

	summary, err := DeriveCached(context.Background(), loader.Builtin().Points, builtinOpts(), mgr)
	require.NoError(t, err)
	assert.Equal(t, 223, summary.ImprovementPercent)
	mgr.AssertExpectations(t)

	summary, err = DeriveCached(context.Background(), loader.Builtin().Points, builtinOpts(), nil)
	require.NoError(t, err)
	assert.Equal(t, 290, summary.RecoveryRate)
}

func TestDeriveCachedMiss(t *testing.T) {
	series, opts := loader.Builtin().Points, builtinOpts()
	key, err := generateCacheKey(series, opts)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(nil, 0, int64(0), errors.New("not found"))
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSummaryStore").Return(store)

	summary, err := DeriveCached(context.Background(), series, opts, mgr)
	require.NoError(t, err)
	assert.Equal(t, 41, summary.PeakValue)
	store.AssertExpectations(t)
}

func TestDeriveCachedHit(t *testing.T) {
	series, opts := loader.Builtin().Points, builtinOpts()
	key, err := generateCacheKey(series, opts)
	require.NoError(t, err)

	cached := &schema.MetricsSummary{Pivot: opts.Pivot, PeakValue: 999}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(data, currentCacheVersion, int64(1700000000), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSummaryStore").Return(store)

	summary, err := DeriveCached(context.Background(), series, opts, mgr)
	require.NoError(t, err)
	assert.Equal(t, 999, summary.PeakValue)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeriveCachedVersionMismatch(t *testing.T) {
	series, opts := loader.Builtin().Points, builtinOpts()
	key, err := generateCacheKey(series, opts)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return([]byte(`{"peak_value":999}`), currentCacheVersion+1, int64(0), nil)
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(errors.New("disk full"))
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSummaryStore").Return(store)

	// A failing Set only warns
	summary, err := DeriveCached(context.Background(), series, opts, mgr)
	require.NoError(t, err)
	assert.Equal(t, 41, summary.PeakValue)
	store.AssertExpectations(t)
}

func TestDeriveCachedDoesNotCacheFailures(t *testing.T) {
	series := loader.Builtin().Points
	opts := schema.DeriveOptions{Pivot: "Dec '99"}
	key, err := generateCacheKey(series, opts)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(nil, 0, int64(0), errors.New("not found"))
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetSummaryStore").Return(store)

	_, err = DeriveCached(context.Background(), series, opts, mgr)
	assert.ErrorIs(t, err, ErrNotFound)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeriveCachedCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DeriveCached(ctx, loader.Builtin().Points, builtinOpts(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateCacheKey(t *testing.T) {
	series, opts := loader.Builtin().Points, builtinOpts()
	key1, err := generateCacheKey(series, opts)
	require.NoError(t, err)
	key2, err := generateCacheKey(loader.Builtin().Points, builtinOpts())
	require.NoError(t, err)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 64)

	otherOpts, err := generateCacheKey(series, schema.DeriveOptions{Pivot: opts.Pivot})
	require.NoError(t, err)
	assert.NotEqual(t, key1, otherOpts)

	changed := loader.Builtin().Points
	changed[0].Value++
	otherSeries, err := generateCacheKey(changed, opts)
	require.NoError(t, err)
	assert.NotEqual(t, key1, otherSeries)
}
