package proxygen

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/grishkovelli/proxygen/internal/relay"
)

var reQuotedLiteral = regexp.MustCompile(`"(.*?[^\\])"`)

// rot13Provider decodes per-row IP cells that hide the address behind a
// tiny obfuscation chain: a ROT13'd, base64-encoded string embedded in a
// quoted JS literal inside the cell, with the port given as plain text
// in the row's second cell.
type rot13Provider struct {
	baseProvider
	url  string
	name string
}

func newROT13Provider(name, url string) *rot13Provider {
	return &rot13Provider{name: name, url: url}
}

func (p *rot13Provider) Name() string { return p.name }

func (p *rot13Provider) SetUpstream(addr string) { p.setUpstream(addr) }

func (p *rot13Provider) List(ctx context.Context) ([]ProxyMetadata, error) {
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

	rows := extractTableRows(string(body))

	var batch []ProxyMetadata
	for _, cols := range rows {
		if len(cols) < 2 {
			continue
		}

		literal := reQuotedLiteral.FindStringSubmatch(cols[0])
		if literal == nil {
			continue
		}

		ip, ok := decodeRot13Base64(literal[1])
		if !ok {
			continue
		}

		port := strings.TrimSpace(cols[1])
		batch = append(batch, ProxyMetadata{
			Addr:    fmt.Sprintf("%s:%s", ip, port),
			Kind:    Http,
			Country: "unknown",
		})
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("%s: proxies not found", p.name)
	}

	p.cacheList(batch)
	return batch, nil
}

func decodeRot13Base64(encoded string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(rot13(encoded))
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		default:
			return r
		}
	}, s)
}

var _ Provider = (*rot13Provider)(nil)
