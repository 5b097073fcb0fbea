package proxygen

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/grishkovelli/proxygen/internal/relay"
)

// staticListProvider fetches a plain-text "host:port" per line feed, the
// simplest of the harvest shapes: every non-empty line containing a
// colon is treated as one proxy.
type staticListProvider struct {
	baseProvider
	url  string
	name string
	kind ProxyType
}

func newStaticListProvider(name, url string, kind ProxyType) *staticListProvider {
	return &staticListProvider{name: name, url: url, kind: kind}
}

func (p *staticListProvider) Name() string { return p.name }

func (p *staticListProvider) SetUpstream(addr string) { p.setUpstream(addr) }

func (p *staticListProvider) List(ctx context.Context) ([]ProxyMetadata, error) {
	if !p.shouldRefresh() {
		return p.cachedList(), nil
	}

	client, err := p.httpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	body, _, err := relay.Get(ctx, client, p.url, ua.get())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	var batch []ProxyMetadata
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		batch = append(batch, ProxyMetadata{Addr: line, Kind: p.kind, Country: "unknown"})
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("%s: proxies not found", p.name)
	}

	p.cacheList(batch)
	return batch, nil
}

var _ Provider = (*staticListProvider)(nil)
