// Package cache keeps the latest validation result per product for the live feed.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/pkg/logger"
)

// DefaultCapacity bounds a RecentResults with no explicit capacity
const DefaultCapacity = 100

// RecentResults is an in-memory latest-result-per-product cache
// ⭐ SSOT: the websocket snapshot is served from here
type RecentResults struct {
	mu       sync.RWMutex
	results  map[string]contracts.ValidationResult
	capacity int
	logger   *logger.Logger
}

// NewRecentResults creates a cache holding up to capacity products
func NewRecentResults(capacity int, log *logger.Logger) *RecentResults {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RecentResults{
		results:  make(map[string]contracts.ValidationResult),
		capacity: capacity,
		logger:   log,
	}
}

func key(r contracts.ValidationResult) string {
	return contracts.ProductRef{ID: r.ProductID, Name: r.ProductName}.Key()
}

// Update stores r unless a newer result for the same product is already held.
// The oldest product is evicted when full; Update reports false when that is r itself.
func (c *RecentResults) Update(r contracts.ValidationResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(r)
	if existing, ok := c.results[k]; ok && r.EvaluatedAt.Before(existing.EvaluatedAt) {
		c.logger.WithFields(map[string]interface{}{
			"product":  k,
			"new_time": r.EvaluatedAt,
			"old_time": existing.EvaluatedAt,
		}).Debug("Rejected older validation result")
		return false
	}

	c.results[k] = r
	if len(c.results) > c.capacity {
		if evicted := c.evictOldest(); evicted == k {
			c.logger.WithField("product", k).Debug("Validation result older than every cached entry, dropped")
			return false
		}
	}
	return true
}

// evictOldest removes the oldest result and returns its key. Ties go to the smallest key.
func (c *RecentResults) evictOldest() string {
	var oldestKey string
	first := true
	for k, r := range c.results {
		if first {
			oldestKey, first = k, false
			continue
		}
		oldest := c.results[oldestKey].EvaluatedAt
		if r.EvaluatedAt.Before(oldest) || (r.EvaluatedAt.Equal(oldest) && k < oldestKey) {
			oldestKey = k
		}
	}
	delete(c.results, oldestKey)
	return oldestKey
}

// Get returns the latest result for ref
func (c *RecentResults) Get(ref contracts.ProductRef) (contracts.ValidationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[ref.Key()]
	return r, ok
}

// Snapshot returns up to limit results, newest first. limit <= 0 returns all.
func (c *RecentResults) Snapshot(limit int) []contracts.ValidationResult {
	c.mu.RLock()
	out := make([]contracts.ValidationResult, 0, len(c.results))
	for _, r := range c.results {
		out = append(out, r)
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EvaluatedAt.Equal(out[j].EvaluatedAt) {
			return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
		}
		return key(out[i]) < key(out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of products held
func (c *RecentResults) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Prune drops results evaluated before cutoff and returns how many were removed
func (c *RecentResults) Prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, r := range c.results {
		if r.EvaluatedAt.Before(cutoff) {
			delete(c.results, k)
			removed++
		}
	}
	return removed
}
