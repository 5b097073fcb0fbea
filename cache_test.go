package proxygen

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("verifyCache", func() {
	var c *verifyCache

	BeforeEach(func() {
		c = newVerifyCache()
	})

	Describe("get()", func() {
		It("reports a miss for an absent key", func() {
			_, _, hit := c.get("1.2.3.4:80")
			Expect(hit).To(BeFalse())
		})
	})

	Describe("put() then get()", func() {
		It("round-trips a success", func() {
			c.put("1.2.3.4:80", 120*time.Millisecond, true)
			latency, ok, hit := c.get("1.2.3.4:80")
			Expect(hit).To(BeTrue())
			Expect(ok).To(BeTrue())
			Expect(latency).To(Equal(120 * time.Millisecond))
		})

		It("round-trips a failure", func() {
			c.put("1.2.3.4:80", 0, false)
			_, ok, hit := c.get("1.2.3.4:80")
			Expect(hit).To(BeTrue())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("expiry", func() {
		It("treats an expired entry as a miss and removes it", func() {
			c.m.Store("1.2.3.4:80", cacheEntry{ok: true, expiresAt: time.Now().Add(-time.Second)})
			_, _, hit := c.get("1.2.3.4:80")
			Expect(hit).To(BeFalse())

			_, loaded := c.m.Load("1.2.3.4:80")
			Expect(loaded).To(BeFalse())
		})
	})
})
