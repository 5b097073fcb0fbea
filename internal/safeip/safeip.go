// Package safeip decides whether a host:port addr is safe to dial as a
// candidate proxy: not loopback, unspecified, multicast, broadcast,
// link-local, or a private (RFC1918/ULA) address.
package safeip

import "net"

// Safe reports whether host (a literal IPv4/IPv6 address, no DNS names) is
// safe to treat as a proxy target.
func Safe(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	switch {
	case ip.IsLoopback(),
		ip.IsUnspecified(),
		ip.IsMulticast(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsPrivate(): // covers RFC1918 10/8, 172.16/12, 192.168/16 and IPv6 ULA fc00::/7
		return false
	}

	if ip.Equal(net.IPv4bcast) {
		return false
	}

	return true
}
