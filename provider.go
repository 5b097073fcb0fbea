package proxygen

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/grishkovelli/proxygen/internal/relay"
)

//  ██████╗ ██████╗  ██████╗ ██╗   ██╗██╗██████╗ ███████╗██████╗
//  ██╔══██╗██╔══██╗██╔═══██╗██║   ██║██║██╔══██╗██╔════╝██╔══██╗
//  ██████╔╝██████╔╝██║   ██║██║   ██║██║██║  ██║█████╗  ██████╔╝
//  ██╔═══╝ ██╔══██╗██║   ██║╚██╗ ██╔╝██║██║  ██║██╔══╝  ██╔══██╗
//  ██║     ██║  ██║╚██████╔╝ ╚████╔╝ ██║██████╔╝███████╗██║  ██║
//  ╚═╝     ╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚═╝╚═════╝ ╚══════╝╚═╝  ╚═╝
//

const (
	providerTTL     = 20 * time.Minute
	providerTimeout = 10 * time.Second
)

// Provider is a plug-in that lists candidate proxies from one upstream
// source.
type Provider interface {
	// List returns the current batch from the upstream source.
	List(ctx context.Context) ([]ProxyMetadata, error)
	// Name is a stable, human-readable identifier, typically the
	// upstream hostname.
	Name() string
	// SetUpstream instructs subsequent requests issued by this provider
	// to route through addr. Empty clears any upstream. Applies to the
	// next List() call at the latest.
	SetUpstream(addr string)
}

// baseProvider gives a concrete Provider an in-memory (list, last-update)
// pair with a 20-minute TTL, plus the upstream relay address. Embed it and
// call shouldRefresh/cacheList/cachedList around the real fetch.
type baseProvider struct {
	mu         sync.Mutex
	upstream   string
	list       []ProxyMetadata
	lastUpdate time.Time
}

func (b *baseProvider) shouldRefresh() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastUpdate.IsZero() {
		return true
	}
	if len(b.list) == 0 {
		return true
	}
	return time.Since(b.lastUpdate) >= providerTTL
}

func (b *baseProvider) cacheList(batch []ProxyMetadata) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.list = batch
	b.lastUpdate = time.Now()
}

func (b *baseProvider) cachedList() []ProxyMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ProxyMetadata, len(b.list))
	copy(out, b.list)
	return out
}

func (b *baseProvider) setUpstream(addr string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upstream = addr
}

func (b *baseProvider) currentUpstream() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upstream
}

// httpClient builds the client a provider should use for its listing
// request: a 10-second total timeout, routed through the provider's
// upstream when set (http.ProxyURL regardless of the upstream's own
// protocol, since a last-known-good relay is always dialed as an HTTP
// proxy here).
func (b *baseProvider) httpClient() (*http.Client, error) {
	return relay.NewClient(relay.Options{
		Upstream: b.currentUpstream(),
		Timeout:  providerTimeout,
	})
}

// providerSpec names a built-in provider: its default listing URL and how
// to construct it given a (possibly overridden) URL.
type providerSpec struct {
	defaultURL string
	build      func(url string) Provider
}

// knownProviders names every concrete Provider a config can enable, keyed
// by the same stable name Provider.Name() returns for it.
var knownProviders = map[string]providerSpec{
	"free-proxy-list.net": {
		defaultURL: "https://free-proxy-list.net/",
		build:      func(url string) Provider { return newHTMLTableProvider("free-proxy-list.net", url) },
	},
	"api.proxyscrape.com": {
		defaultURL: "https://api.proxyscrape.com/v2/?request=getproxies&protocol=http&timeout=10000&country=all&ssl=all&anonymity=all",
		build:      func(url string) Provider { return newStaticListProvider("api.proxyscrape.com", url, Http) },
	},
	"thespeedx.http": {
		defaultURL: "https://raw.githubusercontent.com/TheSpeedX/SOCKS-List/master/http.txt",
		build:      func(url string) Provider { return newStaticListProvider("thespeedx.http", url, Http) },
	},
	"vakhov.fresh-proxy-list": {
		defaultURL: "https://vakhov.github.io/fresh-proxy-list/http.txt",
		build:      func(url string) Provider { return newStaticListProvider("vakhov.fresh-proxy-list", url, Http) },
	},
	"www.cybersyndrome.net": {
		defaultURL: "https://www.cybersyndrome.net/plr6.html",
		build:      func(url string) Provider { return newJSObfuscatedProvider("www.cybersyndrome.net", url) },
	},
	"www.cool-proxy.net": {
		defaultURL: "https://www.cool-proxy.net/proxies/http_proxy_list/sort:score/direction:desc",
		build:      func(url string) Provider { return newROT13Provider("www.cool-proxy.net", url) },
	},
}

// buildProviders resolves a config's per-provider settings into concrete
// Provider instances. A provider absent from cfg, or present with
// Enabled == nil, is enabled by default with its built-in URL; Enabled ==
// false disables it; a non-empty URL overrides the default. Names in cfg
// with no registered constructor are logged and skipped.
func buildProviders(cfg map[string]ProviderConfig) []Provider {
	names := make([]string, 0, len(knownProviders))
	for name := range knownProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Provider, 0, len(names))
	for _, name := range names {
		spec := knownProviders[name]
		url := spec.defaultURL
		enabled := true

		if pc, ok := cfg[name]; ok {
			if pc.Enabled != nil {
				enabled = *pc.Enabled
			}
			if pc.URL != "" {
				url = pc.URL
			}
		}

		if !enabled {
			continue
		}
		out = append(out, spec.build(url))
	}

	for name := range cfg {
		if _, ok := knownProviders[name]; !ok {
			logWarn("config: unknown provider " + name)
		}
	}

	return out
}
