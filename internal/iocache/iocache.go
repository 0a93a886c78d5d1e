package iocache

import (
	"sync"

	"github.com/huangsam/trendline/internal/contract"
)

// CacheStoreManager holds the summary cache and the run history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	summary      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSummaryStore returns the summary cache, or nil when caching is off.
func (mgr *CacheStoreManager) GetSummaryStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.summary
}

// GetHistoryStore returns the history store, or nil when history is off.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
