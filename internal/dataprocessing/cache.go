package dataprocessing

import (
	"sync"
	"time"

	"unistats/pkg/contracts/domain"
)

// CacheEntry is the normalized result for one sheet at one input
// fingerprint.
type CacheEntry struct {
	Fingerprint string
	Rows        []domain.Observation
	Files       int
	Skipped     int
	CachedAt    time.Time
	HitCount    int
}

// CacheStats summarises cache activity.
type CacheStats struct {
	Entries   int   `json:"entries"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// ObservationCache keeps the latest normalized rows per sheet. An entry is
// only served while the input fingerprint it was built from still matches.
type ObservationCache struct {
	mutex     sync.RWMutex
	entries   map[string]CacheEntry
	hitCount  int64
	missCount int64
}

// NewObservationCache creates an empty cache.
func NewObservationCache() *ObservationCache {
	return &ObservationCache{entries: make(map[string]CacheEntry)}
}

// Get returns a copy of the rows cached for sheet when they were built
// from the given fingerprint.
func (c *ObservationCache) Get(sheet, fingerprint string) ([]domain.Observation, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[sheet]
	if !ok || entry.Fingerprint != fingerprint {
		c.missCount++
		return nil, false
	}

	entry.HitCount++
	c.entries[sheet] = entry
	c.hitCount++

	return copyObservations(entry.Rows), true
}

// Set stores rows for sheet, replacing any entry built from older inputs.
func (c *ObservationCache) Set(sheet string, entry CacheEntry) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry.Rows = copyObservations(entry.Rows)
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now()
	}
	c.entries[sheet] = entry
}

// Invalidate drops every entry.
func (c *ObservationCache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]CacheEntry)
}

// Stats returns the current counters.
func (c *ObservationCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return CacheStats{
		Entries:   len(c.entries),
		HitCount:  c.hitCount,
		MissCount: c.missCount,
	}
}

func copyObservations(rows []domain.Observation) []domain.Observation {
	out := make([]domain.Observation, len(rows))
	copy(out, rows)
	return out
}
