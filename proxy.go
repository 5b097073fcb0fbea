package proxygen

import (
	"fmt"
	"time"
)

//  ██████╗ ██████╗  ██████╗ ██╗  ██╗██╗   ██╗
//  ██╔══██╗██╔══██╗██╔═══██╗╚██╗██╔╝╚██╗ ██╔╝
//  ██████╔╝██████╔╝██║   ██║ ╚███╔╝  ╚████╔╝
//  ██╔═══╝ ██╔══██╗██║   ██║ ██╔██╗   ╚██╔╝
//  ██║     ██║  ██║╚██████╔╝██╔╝ ██╗   ██║
//  ╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝
//

// ProxyType is the discriminated tag for a proxy's protocol.
type ProxyType int

const (
	Unknown ProxyType = iota
	Http
	Https
	Socks4
	Socks5
)

// String returns the canonical upper-case name of the proxy type, or
// "Unknown" for the Unknown tag.
func (t ProxyType) String() string {
	switch t {
	case Http:
		return "HTTP"
	case Https:
		return "HTTPS"
	case Socks4:
		return "SOCKS4"
	case Socks5:
		return "SOCKS5"
	default:
		return "Unknown"
	}
}

// ProxyMetadata is an unverified descriptor of a candidate proxy, as
// surfaced by a Provider's list().
type ProxyMetadata struct {
	// Addr is a host:port string; host is a literal IPv4/IPv6 address.
	Addr    string
	Kind    ProxyType
	Country string
}

// VerifiedProxy is metadata plus a measured latency, attested against the
// echo endpoint. Created only by the Verifier.
type VerifiedProxy struct {
	Addr     string
	Kind     ProxyType
	Country  string
	Provider string
	Latency  time.Duration
}

// Metadata returns the unverified view of a VerifiedProxy, used when
// re-evaluating a filter's metadata predicate against an already-verified
// result.
func (p VerifiedProxy) Metadata() ProxyMetadata {
	return ProxyMetadata{Addr: p.Addr, Kind: p.Kind, Country: p.Country}
}

// String renders a VerifiedProxy for logs and the CLI driver.
func (p VerifiedProxy) String() string {
	return fmt.Sprintf("%s (%s, %s) - %s via %s", p.Addr, p.Kind, p.Country, p.Latency, p.Provider)
}
