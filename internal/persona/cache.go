package persona

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/genpersona/api/internal/metrics"
)

const (
	// CacheHighWater is the size above which a set is downsized.
	CacheHighWater = 100
	// CacheSampleSize is the size a set is downsized to.
	CacheSampleSize = 50
)

// NameCache remembers issued full names and first names so the generator
// can reject repeats. Membership is best-effort: once a set passes
// CacheHighWater it is cut to a random sample, so old names may come back.
//
// All methods are safe for concurrent use.
type NameCache struct {
	mu         sync.Mutex
	fullNames  map[string]struct{}
	firstNames map[string]struct{}
	intn       func(int) int
}

// CacheSnapshot is a point-in-time copy of both sets.
type CacheSnapshot struct {
	FullNames  []string `json:"full_names"`
	FirstNames []string `json:"first_names"`
}

// NewNameCache returns an empty cache.
func NewNameCache() *NameCache {
	return &NameCache{
		fullNames:  make(map[string]struct{}),
		firstNames: make(map[string]struct{}),
		intn:       rand.IntN,
	}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FirstName returns the first token of a full name.
func FirstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Reserve inserts full and its first name unless either was already issued.
// The check and the insert happen under one lock.
func (c *NameCache) Reserve(full string) bool {
	fullKey := normalizeName(full)
	firstKey := normalizeName(FirstName(full))
	if fullKey == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fullNames[fullKey]; ok {
		return false
	}
	if _, ok := c.firstNames[firstKey]; ok {
		return false
	}
	c.fullNames[fullKey] = struct{}{}
	c.firstNames[firstKey] = struct{}{}
	c.report()
	return true
}

// Add inserts full and its first name unconditionally.
func (c *NameCache) Add(full string) {
	fullKey := normalizeName(full)
	if fullKey == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fullNames[fullKey] = struct{}{}
	c.firstNames[normalizeName(FirstName(full))] = struct{}{}
	c.report()
}

// Seen reports whether full, or its first name, was already issued.
func (c *NameCache) Seen(full string) (fullSeen, firstSeen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, fullSeen = c.fullNames[normalizeName(full)]
	_, firstSeen = c.firstNames[normalizeName(FirstName(full))]
	return fullSeen, firstSeen
}

// ReserveFallback draws a first name, redrawing up to redraws times while
// it has already been issued, and inserts "first last". Drawing and insertion
// happen under one lock. The last draw is kept even if it repeats.
func (c *NameCache) ReserveFallback(drawFirst func() string, redraws int, last string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	first := drawFirst()
	for i := 0; i < redraws && c.hasFirstLocked(first); i++ {
		first = drawFirst()
	}

	full := first + " " + last
	c.fullNames[normalizeName(full)] = struct{}{}
	c.firstNames[normalizeName(first)] = struct{}{}
	c.report()
	return full
}

func (c *NameCache) hasFirstLocked(first string) bool {
	_, ok := c.firstNames[normalizeName(first)]
	return ok
}

// Len returns the size of both sets.
func (c *NameCache) Len() (full, first int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fullNames), len(c.firstNames)
}

// Downsize cuts any set holding more than CacheHighWater entries down to a
// random sample of CacheSampleSize. It reports whether anything was dropped.
func (c *NameCache) Downsize() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	if len(c.fullNames) > CacheHighWater {
		c.fullNames = c.sample(c.fullNames, CacheSampleSize)
		changed = true
	}
	if len(c.firstNames) > CacheHighWater {
		c.firstNames = c.sample(c.firstNames, CacheSampleSize)
		changed = true
	}
	if changed {
		c.report()
	}
	return changed
}

// sample keeps n random keys using a partial Fisher-Yates shuffle.
func (c *NameCache) sample(set map[string]struct{}, n int) map[string]struct{} {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	for i := 0; i < n; i++ {
		j := i + c.intn(len(keys)-i)
		keys[i], keys[j] = keys[j], keys[i]
	}
	out := make(map[string]struct{}, n)
	for _, k := range keys[:n] {
		out[k] = struct{}{}
	}
	return out
}

// Snapshot copies both sets.
func (c *NameCache) Snapshot() CacheSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CacheSnapshot{
		FullNames:  make([]string, 0, len(c.fullNames)),
		FirstNames: make([]string, 0, len(c.firstNames)),
	}
	for k := range c.fullNames {
		s.FullNames = append(s.FullNames, k)
	}
	for k := range c.firstNames {
		s.FirstNames = append(s.FirstNames, k)
	}
	return s
}

// Restore merges a snapshot into the cache.
func (c *NameCache) Restore(s CacheSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range s.FullNames {
		if k = normalizeName(k); k != "" {
			c.fullNames[k] = struct{}{}
		}
	}
	for _, k := range s.FirstNames {
		if k = normalizeName(k); k != "" {
			c.firstNames[k] = struct{}{}
		}
	}
	c.report()
}

// report publishes set sizes; callers hold c.mu.
func (c *NameCache) report() {
	metrics.NameCacheEntries.WithLabelValues("full").Set(float64(len(c.fullNames)))
	metrics.NameCacheEntries.WithLabelValues("first").Set(float64(len(c.firstNames)))
}
