// Package cache memoizes full analysis results keyed by file identity,
// content fingerprint, and filter parameters. It is a pure performance
// optimization: removing it changes nothing in the result except the
// injected system.cache annotation.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"
	"golang.org/x/sync/singleflight"

	"kpilens/pkg/contracts/domain"
)

// Key identifies one deterministic analysis: identical keys must yield
// byte-identical results modulo the cache annotation.
type Key struct {
	Path       string
	Lang       string
	Cycle      string
	Terms      string
	Mode       string
	Hold       string
	PromptHash string
	ModTimeNS  int64
	Size       int64
}

// NewKey builds a cache key from the resolved file path, language, filters,
// prompt, and the file metadata used as a content fingerprint.
func NewKey(path, lang, prompt string, lens domain.Lens, modTime time.Time, size int64) Key {
	return Key{
		Path:       path,
		Lang:       lang,
		Cycle:      lens.Cycle,
		Terms:      lens.Terms,
		Mode:       lens.Mode,
		Hold:       lens.Hold,
		PromptHash: promptFingerprint(prompt),
		ModTimeNS:  modTime.UnixNano(),
		Size:       size,
	}
}

// promptFingerprint is the short stable digest of the free-text prompt
func promptFingerprint(prompt string) string {
	sum := sha1.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])[:12]
}

// String renders the key for singleflight grouping
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%d|%d",
		k.Path, k.Lang, k.Cycle, k.Terms, k.Mode, k.Hold, k.PromptHash, k.ModTimeNS, k.Size)
}

type entry struct {
	cachedAt time.Time
	result   *domain.Analysis
}

// AnalysisCache is the process-wide, mutex-guarded result store with TTL
// expiry and size-bounded oldest-first eviction. It is created once at
// process start and torn down with the process via Stop.
type AnalysisCache struct {
	mu      sync.Mutex
	entries map[Key]entry
	ttl     time.Duration
	maxSize int

	group singleflight.Group

	hitCount  int64
	missCount int64

	stopOnce sync.Once
	stopChan chan struct{}
}

// New creates an analysis cache with the given TTL window and entry bound
func New(ttl time.Duration, maxSize int) *AnalysisCache {
	c := &AnalysisCache{
		entries:  make(map[Key]entry),
		ttl:      ttl,
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// GetOrCompute returns the cached result for key, or computes and stores it.
// The returned value is always a deep copy annotated with system.cache
// {hit, age_s}; callers may mutate it freely. Concurrent misses on the same
// key are deduplicated: compute runs once and every waiter receives its own
// copy.
func (c *AnalysisCache) GetOrCompute(key Key, compute func() *domain.Analysis) *domain.Analysis {
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && now.Sub(e.cachedAt) < c.ttl {
		c.hitCount++
		age := now.Sub(e.cachedAt)
		c.mu.Unlock()
		return annotate(clone(e.result), true, age)
	}
	c.missCount++
	c.mu.Unlock()

	shared, _, _ := c.group.Do(key.String(), func() (interface{}, error) {
		out := compute()
		c.store(key, out)
		return out, nil
	})

	return annotate(clone(shared.(*domain.Analysis)), false, 0)
}

// Invalidate removes one key from the cache
func (c *AnalysisCache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns cache statistics for diagnostics
func (c *AnalysisCache) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hitCount + c.missCount
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(c.hitCount) / float64(total)
	}

	return map[string]interface{}{
		"entries":     len(c.entries),
		"max_size":    c.maxSize,
		"hit_count":   c.hitCount,
		"miss_count":  c.missCount,
		"hit_ratio":   hitRatio,
		"ttl_seconds": c.ttl.Seconds(),
	}
}

// Stop terminates the background expiry sweep
func (c *AnalysisCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// store inserts a deep copy under key, evicting the globally oldest entry
// first when the bound is reached.
func (c *AnalysisCache) store(key Key, result *domain.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry{
		cachedAt: time.Now(),
		result:   clone(result),
	}
}

// evictOldest removes the entry with the oldest insertion time. Caller holds mu.
func (c *AnalysisCache) evictOldest() {
	var oldestKey Key
	var oldestTime time.Time
	found := false

	for key, e := range c.entries {
		if !found || e.cachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.cachedAt
			found = true
		}
	}

	if found {
		delete(c.entries, oldestKey)
	}
}

func (c *AnalysisCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.entries {
				if now.Sub(e.cachedAt) >= c.ttl {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}

// clone deep-copies a result so cached state can never be mutated by callers
func clone(a *domain.Analysis) *domain.Analysis {
	var out domain.Analysis
	if err := deepcopy.Copy(&out, a); err != nil {
		// copy of a plain data struct cannot realistically fail; keep the
		// original rather than dropping the result
		return a
	}
	return &out
}

// annotate injects the non-destructive cache annotation
func annotate(a *domain.Analysis, hit bool, age time.Duration) *domain.Analysis {
	a.System.Cache = &domain.CacheInfo{
		Hit:  hit,
		AgeS: math.Round(age.Seconds()*100) / 100,
	}
	return a
}
