package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/example/session-scheduler/internal/conflict"
	"github.com/example/session-scheduler/internal/project"
	"github.com/example/session-scheduler/internal/snapshot"
)

// reportCache stores recently computed grid reports to avoid rerunning the
// validation battery for identical snapshots while the grid is unchanged.
type reportCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]reportCacheEntry
}

type reportCacheEntry struct {
	report    conflict.GridReport
	expiresAt time.Time
}

func newReportCache(ttl time.Duration, maxEntries int, now func() time.Time) *reportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &reportCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]reportCacheEntry),
	}
}

func (c *reportCache) Get(key string) (conflict.GridReport, bool) {
	if c == nil || key == "" {
		return conflict.GridReport{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return conflict.GridReport{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return conflict.GridReport{}, false
	}
	return entry.report, true
}

func (c *reportCache) Store(key string, report conflict.GridReport) {
	if c == nil || key == "" {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = reportCacheEntry{report: report, expiresAt: expiry}
}

func (c *reportCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]reportCacheEntry)
	c.mu.Unlock()
}

func (c *reportCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *reportCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// reportCacheKey fingerprints the snapshot content plus the filter flag.
func reportCacheKey(p *project.Project, schedulingOnly bool) (string, error) {
	data, err := snapshot.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + "|" + strconv.FormatBool(schedulingOnly), nil
}
