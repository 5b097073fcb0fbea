package proxygen

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("stats", func() {
	var s *stats

	BeforeEach(func() {
		s = newStats()
	})

	It("counts delivered, cache hits/misses, and drops independently", func() {
		s.recordDelivered()
		s.recordDelivered()
		s.recordCacheHit()
		s.recordCacheMiss()
		s.recordDropped()

		Expect(s.verified).To(Equal(2))
		Expect(s.cacheHits).To(Equal(1))
		Expect(s.cacheMiss).To(Equal(1))
		Expect(s.dropped).To(Equal(1))
	})

	It("tracks the last list size per provider", func() {
		s.recordProviderList("free-proxy-list.net", 40)
		s.recordProviderList("free-proxy-list.net", 12)
		s.recordProviderList("api.proxyscrape.com", 200)

		Expect(s.providers).To(Equal(map[string]int{
			"free-proxy-list.net": 12,
			"api.proxyscrape.com": 200,
		}))
	})

	Describe("MarshalJSON()", func() {
		It("renders every counter", func() {
			s.recordDelivered()
			s.recordCacheHit()
			s.recordDropped()
			s.recordProviderList("free-proxy-list.net", 5)

			raw, err := s.MarshalJSON()
			Expect(err).NotTo(HaveOccurred())

			var decoded map[string]any
			Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
			Expect(decoded["verified"]).To(Equal(float64(1)))
			Expect(decoded["cache_hits"]).To(Equal(float64(1)))
			Expect(decoded["dropped"]).To(Equal(float64(1)))
			Expect(decoded["providers"]).To(Equal(map[string]any{"free-proxy-list.net": float64(5)}))
		})
	})

	Describe("elapsed()", func() {
		It("is zero before two deliveries exist", func() {
			Expect(s.elapsed()).To(Equal("00:00"))
		})
	})
})
