package proxygen

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("rot13()", func() {
	It("is its own inverse", func() {
		Expect(rot13(rot13("Hello, World!"))).To(Equal("Hello, World!"))
	})

	It("wraps within the alphabet", func() {
		Expect(rot13("xyz")).To(Equal("klm"))
		Expect(rot13("ABC")).To(Equal("NOP"))
	})
})

var _ = Describe("decodeRot13Base64()", func() {
	It("decodes a rot13'd base64 IP literal", func() {
		encoded := rot13(base64.StdEncoding.EncodeToString([]byte("203.0.113.9")))
		ip, ok := decodeRot13Base64(encoded)
		Expect(ok).To(BeTrue())
		Expect(ip).To(Equal("203.0.113.9"))
	})

	It("reports failure for invalid base64", func() {
		_, ok := decodeRot13Base64("not valid base64!!")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("rot13Provider", func() {
	It("decodes ip cells and pairs them with plain-text ports", func() {
		encoded := rot13(base64.StdEncoding.EncodeToString([]byte("203.0.113.9")))
		fixture := fmt.Sprintf(`<table><tr><td>"%s"</td><td>8080</td></tr></table>`, encoded)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(fixture))
		}))
		defer srv.Close()

		p := newROT13Provider("test-rot13", srv.URL)
		batch, err := p.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(batch).To(Equal([]ProxyMetadata{
			{Addr: "203.0.113.9:8080", Kind: Http, Country: "unknown"},
		}))
	})
})
