package proxygen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/grishkovelli/proxygen/internal/relay"
)

//  ██████╗ ██████╗ ███████╗██╗   ██╗███████╗ ██████╗ █████╗ ████████╗███████╗██████╗
//  ██╔═══██╗██╔══██╗██╔════╝██║   ██║██╔════╝██╔════╝██╔══██╗╚══██╔══╝██╔════╝██╔══██╗
//  ██║   ██║██████╔╝█████╗  ██║   ██║███████╗██║     ███████║   ██║   █████╗  ██║  ██║
//  ██║   ██║██╔══██╗██╔══╝  ██║   ██║╚════██║██║     ██╔══██║   ██║   ██╔══╝  ██║  ██║
//  ╚██████╔╝██████╔╝██║     ╚██████╔╝███████║╚██████╗██║  ██║   ██║   ███████╗██████╗
//   ╚═════╝ ╚═════╝ ╚═╝      ╚═════╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝   ╚═╝   ╚══════╝╚═════╝
//

var (
	reJSArrayAs = regexp.MustCompile(`var\s+as\s*=\s*\[([^\]]+)\];`)
	reJSArrayPs = regexp.MustCompile(`var\s+ps\s*=\s*\[([^\]]+)\];`)
	reJSExprN   = regexp.MustCompile(`var\s+n\s*=\s*\(([^)]+)\)%120;`)
)

// jsObfuscatedProvider decodes a page that hides its IPv4 octets and
// ports behind two JS integer arrays ("as" holds rotated octets, "ps"
// holds ports) and a rotation amount "n" computed from an expression
// referencing ps by index. A sibling HTML table carries one row per
// proxy, each keyed by a <td id="n<k+1>"> cell naming the country for
// index k in its fifth column.
type jsObfuscatedProvider struct {
	baseProvider
	url  string
	name string
}

func newJSObfuscatedProvider(name, url string) *jsObfuscatedProvider {
	return &jsObfuscatedProvider{name: name, url: url}
}

func (p *jsObfuscatedProvider) Name() string { return p.name }

func (p *jsObfuscatedProvider) SetUpstream(addr string) { p.setUpstream(addr) }

func (p *jsObfuscatedProvider) List(ctx context.Context) ([]ProxyMetadata, error) {
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

	batch, err := decodeObfuscatedJS(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	p.cacheList(batch)
	return batch, nil
}

func decodeObfuscatedJS(doc string) ([]ProxyMetadata, error) {
	countries := extractCountryMap(doc)

	asMatch := reJSArrayAs.FindStringSubmatch(doc)
	psMatch := reJSArrayPs.FindStringSubmatch(doc)
	nMatch := reJSExprN.FindStringSubmatch(doc)
	if asMatch == nil || psMatch == nil || nMatch == nil {
		return nil, fmt.Errorf("obfuscated array/expression not found")
	}

	octets := parseIntList(asMatch[1])
	ports := parseIntList(psMatch[1])
	if len(octets) == 0 || len(ports) == 0 {
		return nil, fmt.Errorf("empty octet or port list")
	}

	n := evalRotation(nMatch[1], ports) % 120
	if n < 0 {
		n += 120
	}
	if n < len(octets) {
		rotateLeft(octets, n)
	}

	count := len(octets) / 4
	if len(ports) < count {
		count = len(ports)
	}

	batch := make([]ProxyMetadata, 0, count)
	for j := 0; j < count; j++ {
		ip := fmt.Sprintf("%d.%d.%d.%d", octets[j*4], octets[j*4+1], octets[j*4+2], octets[j*4+3])
		country, ok := countries[j]
		if !ok {
			country = "unknown"
		}
		batch = append(batch, ProxyMetadata{
			Addr:    fmt.Sprintf("%s:%d", ip, ports[j]),
			Kind:    Http,
			Country: country,
		})
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("proxies not found")
	}
	return batch, nil
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func rotateLeft(s []int, n int) {
	n = n % len(s)
	rotated := append(append([]int{}, s[n:]...), s[:n]...)
	copy(s, rotated)
}

// evalRotation evaluates expressions of the form "123+456*ps[7]+890":
// a sum of plain integer literals and "<coeff>*ps[<idx>]" terms.
func evalRotation(expr string, ps []int) int {
	sum := 0
	for _, part := range strings.Split(expr, "+") {
		part = strings.TrimSpace(part)
		if idx := strings.Index(part, "*ps["); idx >= 0 {
			coeff, err := strconv.Atoi(strings.TrimSpace(part[:idx]))
			if err != nil {
				continue
			}
			end := strings.Index(part[idx:], "]")
			if end < 0 {
				continue
			}
			i, err := strconv.Atoi(part[idx+4 : idx+end])
			if err != nil || i < 0 || i >= len(ps) {
				continue
			}
			sum += coeff * ps[i]
			continue
		}
		if v, err := strconv.Atoi(part); err == nil {
			sum += v
		}
	}
	return sum
}

// extractCountryMap walks the sibling HTML table that names one country
// per proxy row. A row qualifies when its second <td> carries an id of
// the form "n<k>" (k >= 1); the country text lives in that row's fifth
// <td>, and is keyed into the result at index k-1 to line up with the
// zero-based proxy index produced by decodeObfuscatedJS.
func extractCountryMap(doc string) map[int]string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	countries := make(map[int]string)

	type cell struct {
		id   string
		text strings.Builder
	}

	var row []*cell
	var cur *cell
	inRow := false

	flushRow := func() {
		cur = nil
		if inRow && len(row) >= 5 {
			if id := row[1].id; strings.HasPrefix(id, "n") {
				if idx, err := strconv.Atoi(id[1:]); err == nil && idx > 0 {
					countries[idx-1] = strings.TrimSpace(row[4].text.String())
				}
			}
		}
		row = nil
		inRow = false
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			flushRow()
			return countries
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			switch string(name) {
			case "tr":
				flushRow()
				inRow = true
			case "td":
				c := &cell{}
				if hasAttr {
					for {
						key, val, more := tokenizer.TagAttr()
						if string(key) == "id" {
							c.id = string(val)
						}
						if !more {
							break
						}
					}
				}
				row = append(row, c)
				cur = c
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "tr":
				flushRow()
			case "td":
				cur = nil
			}
		case html.TextToken:
			if cur != nil {
				cur.text.Write(tokenizer.Text())
			}
		}
	}
}

var _ Provider = (*jsObfuscatedProvider)(nil)
