package proxygen

import (
	"strings"
	"time"
)

//  ███████╗██╗██╗  ████████╗███████╗██████╗
//  ██╔════╝██║██║  ╚══██╔══╝██╔════╝██╔══██╗
//  █████╗  ██║██║     ██║   █████╗  ██████╔╝
//  ██╔══╝  ██║██║     ██║   ██╔══╝  ██╔══██╗
//  ██║     ██║███████╗██║   ███████╗██║  ██║
//  ╚═╝     ╚═╝╚══════╝╚═╝   ╚══════╝╚═╝  ╚═╝
//

// ProxyFilter is a pure predicate over ProxyMetadata and VerifiedProxy. It
// is built by successive With* calls that each return a new filter; an
// instance is never mutated in place once built.
type ProxyFilter struct {
	types            map[ProxyType]struct{}
	includeCountries map[string]struct{}
	excludeCountries map[string]struct{}
	maxLatency       *time.Duration
}

// NewFilter returns a filter that accepts every metadata and every
// verified proxy.
func NewFilter() ProxyFilter {
	return ProxyFilter{}
}

// WithTypes restricts acceptance to the given set of proxy types.
func (f ProxyFilter) WithTypes(types ...ProxyType) ProxyFilter {
	set := make(map[ProxyType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	f.types = set
	return f
}

// WithIncludeCountries restricts acceptance to metadata whose country
// matches one of the given codes, case-insensitively.
func (f ProxyFilter) WithIncludeCountries(countries ...string) ProxyFilter {
	f.includeCountries = foldSet(countries)
	return f
}

// WithExcludeCountries rejects metadata whose country matches one of the
// given codes, case-insensitively.
func (f ProxyFilter) WithExcludeCountries(countries ...string) ProxyFilter {
	f.excludeCountries = foldSet(countries)
	return f
}

// WithMaxLatency rejects verified proxies whose latency exceeds the given
// duration.
func (f ProxyFilter) WithMaxLatency(d time.Duration) ProxyFilter {
	f.maxLatency = &d
	return f
}

// AcceptMetadata reports whether meta survives the type/country predicates.
// Absent predicates accept everything.
func (f ProxyFilter) AcceptMetadata(meta ProxyMetadata) bool {
	if f.types != nil {
		if _, ok := f.types[meta.Kind]; !ok {
			return false
		}
	}

	if f.includeCountries != nil {
		if _, ok := f.includeCountries[strings.ToLower(meta.Country)]; !ok {
			return false
		}
	}

	if f.excludeCountries != nil {
		if _, ok := f.excludeCountries[strings.ToLower(meta.Country)]; ok {
			return false
		}
	}

	return true
}

// AcceptProxy reports whether a verified proxy survives AcceptMetadata and
// the max-latency predicate.
func (f ProxyFilter) AcceptProxy(p VerifiedProxy) bool {
	if !f.AcceptMetadata(p.Metadata()) {
		return false
	}

	if f.maxLatency != nil && p.Latency > *f.maxLatency {
		return false
	}

	return true
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
