package proxygen

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("decodeObfuscatedJS()", func() {
	It("rotates the octet array by n and zips with ports", func() {
		// unrotated octets for 1.2.3.4 then 5.6.7.8; n picks out ps[0]=2 via "2*ps[0]",
		// so n=4 swaps the two quads
		doc := `
			var as=[1,2,3,4,5,6,7,8];
			var ps=[2,8080,3128];
			var n=(2*ps[0])%120;
		`
		batch, err := decodeObfuscatedJS(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(HaveLen(2))
		Expect(batch[0].Addr).To(Equal("5.6.7.8:2"))
		for _, m := range batch {
			Expect(m.Kind).To(Equal(Http))
		}
	})

	It("errors when the arrays or expression are missing", func() {
		_, err := decodeObfuscatedJS(`var nothing=[1,2,3];`)
		Expect(err).To(HaveOccurred())
	})

	It("skips rotation when n falls outside the array bounds", func() {
		doc := `
			var as=[1,2,3,4];
			var ps=[8080];
			var n=(500)%120;
		`
		batch, err := decodeObfuscatedJS(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(Equal([]ProxyMetadata{
			{Addr: "1.2.3.4:8080", Kind: Http, Country: "unknown"},
		}))
	})

	It("resolves country names from the sibling id-keyed table", func() {
		doc := `
			<table>
			<tr><td>1</td><td id="n1"></td><td></td><td></td><td>Germany</td></tr>
			<tr><td>2</td><td id="n2"></td><td></td><td></td><td>France</td></tr>
			</table>
			var as=[1,2,3,4,5,6,7,8];
			var ps=[8080,3128];
			var n=(0)%120;
		`
		batch, err := decodeObfuscatedJS(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(Equal([]ProxyMetadata{
			{Addr: "1.2.3.4:8080", Kind: Http, Country: "Germany"},
			{Addr: "5.6.7.8:3128", Kind: Http, Country: "France"},
		}))
	})

	It("falls back to unknown when no matching row id is present", func() {
		doc := `
			<table><tr><td>1</td><td></td><td></td><td></td><td>Germany</td></tr></table>
			var as=[1,2,3,4];
			var ps=[8080];
			var n=(0)%120;
		`
		batch, err := decodeObfuscatedJS(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(Equal([]ProxyMetadata{
			{Addr: "1.2.3.4:8080", Kind: Http, Country: "unknown"},
		}))
	})
})

var _ = Describe("extractCountryMap()", func() {
	It("keys country text by id index minus one", func() {
		doc := `<table>
			<tr><td>1</td><td id="n1"></td><td></td><td></td><td>Germany</td></tr>
			<tr><td>2</td><td id="n2"></td><td></td><td></td><td>France</td></tr>
		</table>`
		Expect(extractCountryMap(doc)).To(Equal(map[int]string{0: "Germany", 1: "France"}))
	})

	It("ignores rows with fewer than five cells", func() {
		doc := `<table><tr><td>1</td><td id="n1"></td><td></td></tr></table>`
		Expect(extractCountryMap(doc)).To(BeEmpty())
	})

	It("ignores rows whose second cell has no id attribute", func() {
		doc := `<table><tr><td>1</td><td></td><td></td><td></td><td>Germany</td></tr></table>`
		Expect(extractCountryMap(doc)).To(BeEmpty())
	})
})

var _ = Describe("evalRotation()", func() {
	It("sums plain literals", func() {
		Expect(evalRotation("1+2+3", nil)).To(Equal(6))
	})

	It("resolves ps[idx] terms", func() {
		Expect(evalRotation("10+3*ps[1]", []int{0, 7, 0})).To(Equal(10 + 3*7))
	})

	It("ignores an out-of-range index", func() {
		Expect(evalRotation("5*ps[9]", []int{1, 2})).To(Equal(0))
	})
})

var _ = Describe("jsObfuscatedProvider", func() {
	It("fetches and decodes through List(), including the sibling country table", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`
				<table><tr><td>1</td><td id="n1"></td><td></td><td></td><td>Brazil</td></tr></table>
				var as=[1,2,3,4]; var ps=[9999]; var n=(0)%120;
			`))
		}))
		defer srv.Close()

		p := newJSObfuscatedProvider("test-js", srv.URL)
		batch, err := p.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(Equal([]ProxyMetadata{
			{Addr: "1.2.3.4:9999", Kind: Http, Country: "Brazil"},
		}))
	})
})
