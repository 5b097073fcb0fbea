package proxygen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

//  ███████╗███╗   ██╗ ██████╗ ██╗███╗   ██╗███████╗
//  ██╔════╝████╗  ██║██╔════╝ ██║████╗  ██║██╔════╝
//  █████╗  ██╔██╗ ██║██║  ███╗██║██╔██╗ ██║█████╗
//  ██╔══╝  ██║╚██╗██║██║   ██║██║██║╚██╗██║██╔══╝
//  ███████╗██║ ╚████║╚██████╔╝██║██║ ╚████║███████╗
//  ╚══════╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝╚══════╝
//

const (
	channelCapacity   = 100
	harvestCycleSleep = time.Second
	harvestBatchLimit = 10
)

// job is one verification unit enqueued by the harvester.
type job struct {
	meta     ProxyMetadata
	provider string
}

// Generator orchestrates providers, a verification worker pool, the output
// channel, and the feedback loop that routes the most recently delivered
// verified proxy back as the upstream for subsequent provider fetches.
type Generator struct {
	providers []Provider

	filterMu sync.RWMutex
	filter   ProxyFilter

	lastGoodMu sync.RWMutex
	lastGood   string
	health     *relayHealth

	cache *verifyCache
	stats *stats

	jobCh    chan job
	outputCh chan VerifiedProxy

	runOnce sync.Once
}

// New constructs an engine with an empty provider list, a default
// (accept-all) filter, bounded job/output channels (capacity 100), an
// empty cache, and an empty last-known-good slot.
func New() *Generator {
	return &Generator{
		filter:   NewFilter(),
		cache:    newVerifyCache(),
		stats:    newStats(),
		health:   newRelayHealth(),
		jobCh:    make(chan job, channelCapacity),
		outputCh: make(chan VerifiedProxy, channelCapacity),
	}
}

// AddProvider registers a provider. Only valid before Run.
func (g *Generator) AddProvider(p Provider) {
	g.providers = append(g.providers, p)
}

// StartDashboard launches the live WebSocket dashboard in the background,
// bound to this engine's own stats counters. Errors from the HTTP server
// (other than a clean shutdown) are logged, not returned, since the
// dashboard is an optional side channel and must never block delivery.
func (g *Generator) StartDashboard(port int) {
	d := newDashboard(g.stats)
	go func() {
		if err := d.serve(port); err != nil {
			logError(fmt.Sprintf("dashboard: %v", err))
		}
	}()
}

// SetFilter atomically replaces the current filter. Safe at any time; the
// new filter is visible to all subsequent AcceptMetadata/AcceptProxy calls,
// though jobs already in flight may still be evaluated under the replaced
// filter.
func (g *Generator) SetFilter(f ProxyFilter) {
	g.filterMu.Lock()
	g.filter = f
	g.filterMu.Unlock()
}

func (g *Generator) currentFilter() ProxyFilter {
	g.filterMu.RLock()
	defer g.filterMu.RUnlock()
	return g.filter
}

// Run spawns the harvester and worker-pool dispatcher background tasks.
// Idempotent; returns immediately.
func (g *Generator) Run(ctx context.Context) {
	g.runOnce.Do(func() {
		go g.harvestLoop(ctx)
		go g.dispatchLoop(ctx)
	})
}

// Get blocks for the next delivered proxy. On delivery, the engine stores
// the proxy's addr in the last-known-good slot.
func (g *Generator) Get(ctx context.Context) (VerifiedProxy, bool) {
	select {
	case p, ok := <-g.outputCh:
		if !ok {
			return VerifiedProxy{}, false
		}
		g.setLastGood(p.Addr)
		g.stats.recordDelivered()
		return p, true
	case <-ctx.Done():
		return VerifiedProxy{}, false
	}
}

func (g *Generator) setLastGood(addr string) {
	g.lastGoodMu.Lock()
	if g.lastGood != addr {
		g.health.reset()
	}
	g.lastGood = addr
	g.lastGoodMu.Unlock()
}

func (g *Generator) clearLastGood() {
	g.lastGoodMu.Lock()
	g.lastGood = ""
	g.lastGoodMu.Unlock()
	g.health.reset()
}

func (g *Generator) currentLastGood() string {
	g.lastGoodMu.RLock()
	defer g.lastGoodMu.RUnlock()
	return g.lastGood
}

// harvestLoop is the single long-lived task that walks every registered
// provider in round-robin order, one provider at a time (sequential by
// design, so upstream-proxy changes serialize against each provider).
func (g *Generator) harvestLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		for _, p := range g.providers {
			g.harvestOne(ctx, p)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(harvestCycleSleep):
		}
	}
}

func (g *Generator) harvestOne(ctx context.Context, p Provider) {
	p.SetUpstream(g.currentLastGood())

	batch, err := p.List(ctx)
	if err != nil {
		logWarn(fmt.Sprintf("engine: %s listing failed: %v", p.Name(), err))
		g.clearLastGood()
		return
	}

	g.stats.recordProviderList(p.Name(), len(batch))

	filter := g.currentFilter()
	survivors := batch[:0]
	for _, m := range batch {
		if filter.AcceptMetadata(m) {
			survivors = append(survivors, m)
		}
	}

	shuffleMetadata(survivors)
	if len(survivors) > harvestBatchLimit {
		survivors = survivors[:harvestBatchLimit]
	}

	for _, m := range survivors {
		j := job{meta: m, provider: p.Name()}
		select {
		case g.jobCh <- j:
		case <-ctx.Done():
			return
		}
	}
}

func shuffleMetadata(s []ProxyMetadata) {
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// dispatchLoop consumes jobs and spawns one independent verification task
// per job.
func (g *Generator) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-g.jobCh:
			if !ok {
				return
			}
			go g.verifyJob(ctx, j)
		}
	}
}

func (g *Generator) verifyJob(ctx context.Context, j job) {
	latency, ok, cached := g.lookupOrVerify(ctx, j.meta)
	if !cached {
		wasLastGood := j.meta.Addr == g.currentLastGood()
		if wasLastGood && g.health.record(ok) {
			logWarn(fmt.Sprintf("engine: relay %s exhausted after %d consecutive failures, clearing", j.meta.Addr, healthWindow))
			g.clearLastGood()
		}
	}

	if !ok {
		g.stats.recordDropped()
		return
	}

	verified := VerifiedProxy{
		Addr:     j.meta.Addr,
		Kind:     j.meta.Kind,
		Country:  j.meta.Country,
		Provider: j.provider,
		Latency:  latency,
	}

	if !g.currentFilter().AcceptProxy(verified) {
		g.stats.recordDropped()
		return
	}

	select {
	case g.outputCh <- verified:
	case <-ctx.Done():
		logWarn("engine: output channel send aborted, shutting down")
	}
}

func (g *Generator) lookupOrVerify(ctx context.Context, meta ProxyMetadata) (latency time.Duration, ok bool, cached bool) {
	if latency, ok, hit := g.cache.get(meta.Addr); hit {
		g.stats.recordCacheHit()
		return latency, ok, true
	}

	g.stats.recordCacheMiss()
	latency, ok = verifyFn(ctx, meta.Addr, meta.Kind)
	g.cache.put(meta.Addr, latency, ok)
	return latency, ok, false
}

// verifyFn is a package-level indirection over Verify so tests can stub
// out the network round trip without dialing anything real.
var verifyFn = Verify
