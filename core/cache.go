package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// DeriveCached behaves like Derive but memoizes successful summaries in the summary cache.
// Failed derivations are never cached.
func DeriveCached(ctx context.Context, series schema.Series, opts schema.DeriveOptions, mgr contract.CacheManager) (*schema.MetricsSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetSummaryStore()
	}
	if store == nil {
		return Derive(series, opts)
	}

	key, err := generateCacheKey(series, opts)
	if err != nil {
		return Derive(series, opts)
	}
	if summary := checkCacheHit(store, key); summary != nil {
		return summary, nil
	}
	return computeAndStore(series, opts, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached summary
func checkCacheHit(store contract.CacheStore, key string) *schema.MetricsSummary {
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil
	}
	var summary schema.MetricsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}
	return &summary
}

// computeAndStore derives the summary and stores it in the cache
func computeAndStore(series schema.Series, opts schema.DeriveOptions, store contract.CacheStore, key string) (*schema.MetricsSummary, error) {
	summary, err := Derive(series, opts)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(summary); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache summary", err)
		}
	}
	return summary, nil
}

// generateCacheKey hashes the canonical JSON of the derivation input.
// The summary is a pure function of the series and options, so entries never go stale.
func generateCacheKey(series schema.Series, opts schema.DeriveOptions) (string, error) {
	canonical, err := json.Marshal(struct {
		Version int                  `json:"version"`
		Options schema.DeriveOptions `json:"options"`
		Series  schema.Series        `json:"series"`
	}{currentCacheVersion, opts, series})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(canonical)), nil
}
