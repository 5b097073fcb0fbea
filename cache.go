package proxygen

import (
	"sync"
	"time"
)

//  ██████╗ █████╗  ██████╗██╗  ██╗███████╗
//  ██╔════╝██╔══██╗██╔════╝██║  ██║██╔════╝
//  ██║     ███████║██║     ███████║█████╗
//  ██║     ██╔══██║██║     ██╔══██║██╔══╝
//  ╚██████╗██║  ██║╚██████╗██║  ██║███████╗
//   ╚═════╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝╚══════╝
//

const cacheTTL = 20 * time.Minute

// cacheEntry is the stored outcome of one verification attempt.
type cacheEntry struct {
	latency   time.Duration
	ok        bool
	expiresAt time.Time
}

// verifyCache maps addr to its last verification result, bounding rework
// for cacheTTL. Both successes and failures are cached, so a relay that
// just failed isn't immediately retried by the next harvest cycle.
// get/put on the same key are safe to race; the cache does not itself
// deduplicate in-flight verifications.
type verifyCache struct {
	m sync.Map // string -> cacheEntry
}

func newVerifyCache() *verifyCache {
	return &verifyCache{}
}

// get returns the cached latency/ok pair and whether the entry was present
// and unexpired.
func (c *verifyCache) get(addr string) (latency time.Duration, ok bool, hit bool) {
	v, found := c.m.Load(addr)
	if !found {
		return 0, false, false
	}

	entry := v.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.m.Delete(addr)
		return 0, false, false
	}

	return entry.latency, entry.ok, true
}

// put stores the outcome unconditionally with a fresh TTL stamp.
func (c *verifyCache) put(addr string, latency time.Duration, ok bool) {
	c.m.Store(addr, cacheEntry{
		latency:   latency,
		ok:        ok,
		expiresAt: time.Now().Add(cacheTTL),
	})
}
