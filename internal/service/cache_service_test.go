package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCache struct{ *memCache }

func (f *failingCache) Delete(ctx context.Context, keys ...string) error {
	return errors.New("redis unavailable")
}

func (f *failingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis unavailable")
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilSvc *CacheService
	hit, err := nilSvc.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, nilSvc.Invalidate(context.Background(), "k"))
	assert.NoError(t, nilSvc.Delete(context.Background(), "k"))

	store := newMemCache()
	svc := NewCacheService(store, nil, time.Minute, zap.NewNop(), false)
	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, store.entries)
}

func TestCacheServiceRoundTripRecordsMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemCache(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"n": 1}, 0))
	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["n"])

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
			if g := m.GetGauge(); g != nil && mf.GetName() == "cache_hit_ratio" {
				values[mf.GetName()] = g.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["cache_hits_total"])
	assert.Equal(t, 1.0, values["cache_misses_total"])
	assert.Equal(t, 0.5, values["cache_hit_ratio"])
}

func TestCacheServiceInvalidateContinuesPastFailures(t *testing.T) {
	svc := NewCacheService(&failingCache{newMemCache()}, nil, time.Minute, zap.NewNop(), true)
	err := svc.Invalidate(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestCacheServiceDeleteTreatsKeysLiterally(t *testing.T) {
	store := newMemCache()
	svc := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "attendance:monthly:A*:2024-03", 1, 0))
	require.NoError(t, svc.Set(ctx, "attendance:monthly:AB:2024-03", 2, 0))

	require.NoError(t, svc.Delete(ctx, "attendance:monthly:A*:2024-03"))
	assert.NotContains(t, store.entries, "attendance:monthly:A*:2024-03")
	assert.Contains(t, store.entries, "attendance:monthly:AB:2024-03")
	assert.Empty(t, store.deleted)
}

func TestCacheServiceDeleteReportsFailure(t *testing.T) {
	svc := NewCacheService(&failingCache{newMemCache()}, nil, time.Minute, zap.NewNop(), true)
	assert.Error(t, svc.Delete(context.Background(), "k"))
	assert.NoError(t, svc.Delete(context.Background()))
}
