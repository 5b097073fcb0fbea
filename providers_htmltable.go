package proxygen

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/grishkovelli/proxygen/internal/relay"
)

// htmlTableProvider scrapes a table of ip/port/country/https columns out
// of a plain HTML listing page: column 0 is the ip, column 1 the port,
// column 2 the country code, column 6 an https yes/no flag. Walks
// golang.org/x/net/html's tokenizer directly rather than a jQuery-style
// selector API.
type htmlTableProvider struct {
	baseProvider
	url        string
	name       string
	ipCol      int
	portCol    int
	countryCol int
	httpsCol   int
	minColumns int
}

func newHTMLTableProvider(name, url string) *htmlTableProvider {
	return &htmlTableProvider{
		name:       name,
		url:        url,
		ipCol:      0,
		portCol:    1,
		countryCol: 2,
		httpsCol:   6,
		minColumns: 8,
	}
}

func (p *htmlTableProvider) Name() string { return p.name }

func (p *htmlTableProvider) SetUpstream(addr string) { p.setUpstream(addr) }

func (p *htmlTableProvider) List(ctx context.Context) ([]ProxyMetadata, error) {
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
		if len(cols) < p.minColumns {
			continue
		}

		kind := Http
		if strings.EqualFold(strings.TrimSpace(cols[p.httpsCol]), "yes") {
			kind = Https
		}

		addr := fmt.Sprintf("%s:%s", strings.TrimSpace(cols[p.ipCol]), strings.TrimSpace(cols[p.portCol]))
		batch = append(batch, ProxyMetadata{
			Addr:    addr,
			Kind:    kind,
			Country: strings.TrimSpace(cols[p.countryCol]),
		})
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("%s: proxies not found", p.name)
	}

	p.cacheList(batch)
	return batch, nil
}

// extractTableRows tokenizes doc and returns the text content of every
// <td> in every <tr>, one []string per row.
func extractTableRows(doc string) [][]string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))

	var rows [][]string
	var row []string
	inRow, inCell := false, false
	var cellBuf strings.Builder

	flushCell := func() {
		if inCell {
			row = append(row, cellBuf.String())
			cellBuf.Reset()
			inCell = false
		}
	}
	flushRow := func() {
		flushCell()
		if inRow && len(row) > 0 {
			rows = append(rows, row)
		}
		row = nil
		inRow = false
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			flushRow()
			return rows
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "tr":
				flushRow()
				inRow = true
			case "td":
				flushCell()
				inCell = true
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "tr":
				flushRow()
			case "td":
				flushCell()
			}
		case html.TextToken:
			if inCell {
				cellBuf.Write(tokenizer.Text())
			}
		}
	}
}

var _ Provider = (*htmlTableProvider)(nil)
