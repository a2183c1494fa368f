// Package engine orchestrates the prediction pipeline: cache, feature
// extraction, parallel signal computation, blending, and persistence.
package engine

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/blazesportsintel/prediction-engine/internal/metrics"
	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// CacheKey uniquely identifies a cached prediction. The model version is
// part of the key so a model bump invalidates every stale record.
type CacheKey struct {
	GameID       string
	ModelVersion string
}

// String returns the string representation of a cache key.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s", k.GameID, k.ModelVersion)
}

// PredictionCache provides in-memory TTL caching for game predictions.
type PredictionCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a prediction cache with the given TTL.
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction. An entry that is not a prediction
// record is treated as corrupt: it is evicted and reported as a miss so
// the caller recomputes.
func (pc *PredictionCache) Get(key CacheKey) *models.GamePrediction {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if raw, found := pc.cache.Get(key.String()); found {
		if prediction, ok := raw.(*models.GamePrediction); ok {
			pc.hitCount++
			pc.updateMetrics()
			return prediction
		}
		pc.cache.Delete(key.String())
	}

	pc.missCount++
	pc.updateMetrics()
	return nil
}

// Set stores a prediction, evicting expired entries when the size limit
// is reached.
func (pc *PredictionCache) Set(key CacheKey, prediction *models.GamePrediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}
	pc.cache.Set(key.String(), prediction, pc.ttl)
}

// Clear flushes the entire cache.
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache hit statistics.
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.statsLocked()
}

func (pc *PredictionCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount
	misses = pc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}

// ItemCount returns the number of cached entries.
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}

func (pc *PredictionCache) updateMetrics() {
	_, _, ratio := pc.statsLocked()
	metrics.CacheHitRatio.Set(ratio)
}
