package proxygen

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/grishkovelli/proxygen/internal/relay"
	"github.com/grishkovelli/proxygen/internal/safeip"
)

//  ██╗   ██╗███████╗██████╗ ██╗███████╗██╗   ██╗
//  ██║   ██║██╔════╝██╔══██╗██║██╔════╝╚██╗ ██╔╝
//  ██║   ██║█████╗  ██████╔╝██║█████╗   ╚████╔╝
//  ╚██╗ ██╔╝██╔══╝  ██╔══██╗██║██╔══╝    ╚██╔╝
//   ╚████╔╝ ███████╗██║  ██║██║██║        ██║
//    ╚═══╝  ╚══════╝╚═╝  ╚═╝╚═╝╚═╝        ╚═╝
//

const defaultVerifyTimeout = 2 * time.Second

// verifyEndpoint and verifyTimeout are package-level so cmd/proxygen/main.go
// can override them from Config.VerifyTarget/Config.Timeout at startup
// without threading an extra parameter through every provider and the
// engine's dispatch loop.
var (
	verifyEndpoint = "http://httpbin.org/ip"
	verifyTimeout  = defaultVerifyTimeout
)

// checkIP is the JSON shape returned by the echo endpoint.
type checkIP struct {
	Origin string `json:"origin"`
}

// Verify attempts to relay a request through addr and returns the elapsed
// round-trip time on success. Failure (bad addr, unsafe IP, transport
// error, non-2xx, unparsable body, or an origin that doesn't contain the
// proxy's host) is reported as ok == false with a zero duration.
func Verify(ctx context.Context, addr string, kind ProxyType) (latency time.Duration, ok bool) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, false
	}

	if !safeip.Safe(host) {
		logError(fmt.Sprintf("verify: unsafe IP dropped: %s", addr))
		return 0, false
	}

	client, err := relay.NewClient(relay.Options{
		Upstream:          addr,
		Kind:              dialKind(kind),
		Timeout:           verifyTimeout,
		DisableKeepAlives: true,
	})
	if err != nil {
		logError(fmt.Sprintf("verify: cannot build client for %s: %v", addr, err))
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	body, elapsed, err := relay.Get(ctx, client, verifyEndpoint, "")
	if err != nil {
		logDebug(fmt.Sprintf("verify: %s failed: %v", addr, err))
		return 0, false
	}

	if !originMatches(body, host) {
		return 0, false
	}

	return elapsed, true
}

// originMatches reports whether the echo endpoint's JSON body names host
// as (part of) its observed origin. A substring match, not strict
// equality, since some echo endpoints append a port or a comma-separated
// proxy chain to the origin field.
func originMatches(body []byte, host string) bool {
	var check checkIP
	if err := json.Unmarshal(body, &check); err != nil {
		logError(fmt.Sprintf("verify: cannot unmarshal echo response: %v", err))
		return false
	}
	return strings.Contains(check.Origin, host)
}

func dialKind(t ProxyType) string {
	switch t {
	case Socks4:
		return "socks4"
	case Socks5:
		return "socks5"
	default:
		return "http"
	}
}
