package slack

import (
	"sync"
	"time"
)

// DedupeCache suppresses replayed event deliveries. Slack redelivers
// events it believes were not acknowledged in time, so the same
// event_id can arrive several times within minutes.
type DedupeCache struct {
	ttl   time.Duration
	mutex sync.Mutex
	seen  map[string]time.Time // key -> expiry
	now   func() time.Time
}

// NewDedupeCache creates a cache with the given entry TTL.
func NewDedupeCache(ttl time.Duration) *DedupeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DedupeCache{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen records key and reports whether it was already present and
// unexpired. Expired entries are pruned on each call; event volume is
// low enough that a sweep here beats a background goroutine.
func (c *DedupeCache) Seen(key string) bool {
	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for k, expires := range c.seen {
		if !expires.After(now) {
			delete(c.seen, k)
		}
	}

	if expires, ok := c.seen[key]; ok && expires.After(now) {
		return true
	}
	c.seen[key] = now.Add(c.ttl)
	return false
}

// Size returns the number of live entries.
func (c *DedupeCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.seen)
}
