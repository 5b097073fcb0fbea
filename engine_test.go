package proxygen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubProvider hands out a fixed batch once, then an empty batch, so
// harvestLoop's repeated cycling doesn't endlessly resubmit the same jobs.
type stubProvider struct {
	mu       sync.Mutex
	name     string
	batch    []ProxyMetadata
	served   bool
	upstream string
	listErr  error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) SetUpstream(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstream = addr
}

func (s *stubProvider) List(ctx context.Context) ([]ProxyMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.served {
		return nil, nil
	}
	s.served = true
	return s.batch, nil
}

var _ = Describe("Generator", func() {
	var (
		gen    *Generator
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		verifyFn = func(ctx context.Context, addr string, kind ProxyType) (time.Duration, bool) {
			return 10 * time.Millisecond, true
		}
		gen = New()
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
		verifyFn = Verify
	})

	It("delivers a verified proxy from a registered provider", func() {
		gen.AddProvider(&stubProvider{
			name:  "stub",
			batch: []ProxyMetadata{{Addr: "203.0.113.9:8080", Kind: Http, Country: "US"}},
		})

		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		gen.Run(ctx)

		p, ok := gen.Get(ctx)
		Expect(ok).To(BeTrue())
		Expect(p.Addr).To(Equal("203.0.113.9:8080"))
		Expect(p.Provider).To(Equal("stub"))
	})

	It("drops proxies the filter rejects", func() {
		gen.SetFilter(NewFilter().WithIncludeCountries("DE"))
		gen.AddProvider(&stubProvider{
			name:  "stub",
			batch: []ProxyMetadata{{Addr: "203.0.113.9:8080", Kind: Http, Country: "US"}},
		})

		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), 300*time.Millisecond)
		gen.Run(ctx)

		_, ok := gen.Get(ctx)
		Expect(ok).To(BeFalse())
	})

	It("never delivers a verification failure", func() {
		verifyFn = func(ctx context.Context, addr string, kind ProxyType) (time.Duration, bool) {
			return 0, false
		}
		gen.AddProvider(&stubProvider{
			name:  "stub",
			batch: []ProxyMetadata{{Addr: "203.0.113.9:8080", Kind: Http, Country: "US"}},
		})

		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), 300*time.Millisecond)
		gen.Run(ctx)

		_, ok := gen.Get(ctx)
		Expect(ok).To(BeFalse())
	})

	It("clears the last-known-good relay after a provider listing error", func() {
		gen.AddProvider(&stubProvider{name: "stub", listErr: fmt.Errorf("boom")})

		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), 300*time.Millisecond)
		gen.setLastGood("1.2.3.4:80")
		gen.Run(ctx)

		Eventually(func() string {
			return gen.currentLastGood()
		}, time.Second).Should(BeEmpty())
	})

	It("feeds the just-delivered proxy back as the next upstream", func() {
		sp := &stubProvider{
			name:  "stub",
			batch: []ProxyMetadata{{Addr: "203.0.113.9:8080", Kind: Http, Country: "US"}},
		}
		gen.AddProvider(sp)

		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		gen.Run(ctx)

		_, ok := gen.Get(ctx)
		Expect(ok).To(BeTrue())
		Expect(gen.currentLastGood()).To(Equal("203.0.113.9:8080"))
	})
})

var _ = Describe("relayHealth wired into the engine", func() {
	It("retires the last-known-good relay after enough consecutive misses attributed to it", func() {
		var calls int32
		verifyFn = func(ctx context.Context, addr string, kind ProxyType) (time.Duration, bool) {
			atomic.AddInt32(&calls, 1)
			return 0, false
		}
		defer func() { verifyFn = Verify }()

		gen := New()
		gen.setLastGood("9.9.9.9:80")

		for i := 0; i < healthWindow; i++ {
			gen.cache = newVerifyCache() // force a fresh verifyFn call each round
			gen.verifyJob(context.Background(), job{
				meta:     ProxyMetadata{Addr: "9.9.9.9:80", Kind: Http},
				provider: "stub",
			})
		}

		Expect(gen.currentLastGood()).To(BeEmpty())
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(healthWindow)))
	})
})
