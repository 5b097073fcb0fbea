package proxygen

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

//  ███████╗████████╗ █████╗ ████████╗███████╗
//  ██╔════╝╚══██╔══╝██╔══██╗╚══██╔══╝██╔════╝
//  ███████╗   ██║   ███████║   ██║   ███████╗
//  ╚════██║   ██║   ██╔══██║   ██║   ╚════██║
//  ███████║   ██║   ██║  ██║   ██║   ███████║
//  ╚══════╝   ╚═╝   ╚═╝  ╚═╝   ╚═╝   ╚══════╝
//

// stats is the engine-wide counter set fed to the dashboard (web.go).
// RPM/elapsed bookkeeping over a rolling delivered-timestamps slice;
// per-server stats become per-provider last-list-size plus cache
// hit/miss totals, matching what this engine actually tracks.
type stats struct {
	mu        sync.RWMutex
	delivered []time.Time
	providers map[string]int // provider name -> size of its last list
	cacheHits int
	cacheMiss int
	verified  int
	dropped   int
}

func newStats() *stats {
	return &stats{providers: make(map[string]int)}
}

func (s *stats) recordDelivered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, time.Now())
	s.verified++
}

func (s *stats) recordProviderList(name string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[name] = n
}

func (s *stats) recordCacheHit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

func (s *stats) recordCacheMiss() {
	s.mu.Lock()
	s.cacheMiss++
	s.mu.Unlock()
}

func (s *stats) recordDropped() {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
}

func (s *stats) rpm() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rpm, lastMinute := 0, time.Now().Add(-time.Minute)
	for i := len(s.delivered) - 1; i >= 0; i-- {
		if s.delivered[i].Before(lastMinute) {
			break
		}
		rpm++
	}
	return rpm
}

func (s *stats) elapsed() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n := len(s.delivered); n > 1 {
		elapsed := int(s.delivered[n-1].Sub(s.delivered[0]).Seconds())
		return fmt.Sprintf("%02d:%02d", elapsed/60, elapsed%60)
	}
	return "00:00"
}

// MarshalJSON renders the dashboard snapshot.
func (s *stats) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return json.Marshal(struct {
		RPM       int            `json:"rpm"`
		Verified  int            `json:"verified"`
		Dropped   int            `json:"dropped"`
		CacheHits int            `json:"cache_hits"`
		CacheMiss int            `json:"cache_misses"`
		Elapsed   string         `json:"elapsed"`
		Providers map[string]int `json:"providers"`
	}{
		RPM:       s.rpm(),
		Verified:  s.verified,
		Dropped:   s.dropped,
		CacheHits: s.cacheHits,
		CacheMiss: s.cacheMiss,
		Elapsed:   s.elapsed(),
		Providers: s.providers,
	})
}
