package proxygen

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoadConfig()", func() {
	var path string

	writeConfig := func(body string) string {
		dir := GinkgoT().TempDir()
		p := filepath.Join(dir, "proxygen.yml")
		Expect(os.WriteFile(p, []byte(body), 0o644)).To(Succeed())
		return p
	}

	It("decodes a full config", func() {
		path = writeConfig(`
timeout: 5
verify_target: http://example.test/ip
providers:
  free-proxy-list.net:
    enabled: true
  api.proxyscrape.com:
    enabled: false
  www.cool-proxy.net:
    url: "https://example.test/cool-proxy"
filter:
  types: ["http", "https"]
  include_countries: ["US"]
  max_latency_ms: 500
dashboard:
  enabled: true
  port: 9000
`)
		cfg, err := LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Timeout).To(Equal(5))
		Expect(cfg.VerifyTarget).To(Equal("http://example.test/ip"))
		Expect(*cfg.Providers["free-proxy-list.net"].Enabled).To(BeTrue())
		Expect(*cfg.Providers["api.proxyscrape.com"].Enabled).To(BeFalse())
		Expect(cfg.Providers["www.cool-proxy.net"].URL).To(Equal("https://example.test/cool-proxy"))
		Expect(cfg.Filter.Types).To(Equal([]string{"http", "https"}))
		Expect(cfg.Dashboard.Enabled).To(BeTrue())
		Expect(cfg.Dashboard.Port).To(Equal(9000))
	})

	It("applies defaults for zero-valued tagged fields", func() {
		path = writeConfig(`providers: {}`)
		cfg, err := LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Timeout).To(Equal(10))
		Expect(cfg.VerifyTarget).To(Equal("http://httpbin.org/ip"))
		Expect(cfg.Dashboard.Port).To(Equal(8090))
	})

	It("errors for a missing file", func() {
		_, err := LoadConfig("/nonexistent/proxygen.yml")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("BuildFilter()", func() {
	It("translates country/type/latency knobs into a ProxyFilter", func() {
		f := BuildFilter(FilterConfig{
			Types:            []string{"http"},
			ExcludeCountries: []string{"cn"},
			MaxLatencyMS:     100,
		})

		Expect(f.AcceptMetadata(ProxyMetadata{Kind: Http, Country: "us"})).To(BeTrue())
		Expect(f.AcceptMetadata(ProxyMetadata{Kind: Socks5, Country: "us"})).To(BeFalse())
		Expect(f.AcceptMetadata(ProxyMetadata{Kind: Http, Country: "cn"})).To(BeFalse())
	})
})
