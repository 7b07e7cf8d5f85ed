package services

import "strings"

// HostClass tells how an image host may be fetched by the storefront.
type HostClass int

const (
	// HostBlocked hosts are dropped at extraction time.
	HostBlocked HostClass = iota
	// HostDirect hosts can be attached to Shopify by URL as-is.
	HostDirect
	// HostRelay hosts refuse cross-origin fetches from Shopify and must be
	// staged through object storage first.
	HostRelay
)

// DomainRules is the static allow-list used to classify image hosts. It is
// built once at startup and injected wherever classification happens.
type DomainRules struct {
	direct map[string]bool
	relay  map[string]bool
}

// NewDomainRules builds rules from explicit host lists. Hosts are compared
// case-insensitively.
func NewDomainRules(direct, relay []string) DomainRules {
	r := DomainRules{
		direct: make(map[string]bool, len(direct)),
		relay:  make(map[string]bool, len(relay)),
	}
	for _, h := range direct {
		r.direct[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, h := range relay {
		r.relay[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return r
}

// DefaultDomainRules returns the production allow-list: the storefront's own
// asset hosts plus Senetic's safe image hosts fetch directly; the Senetic
// download CDN blocks Shopify's fetcher and goes through the relay.
func DefaultDomainRules() DomainRules {
	return NewDomainRules(
		[]string{"cdn.shopify.com", "www.senetic.it", "images.senetic.com"},
		[]string{"download.senetic.com"},
	)
}

// Classify returns the class of the given hostname.
func (r DomainRules) Classify(host string) HostClass {
	h := strings.ToLower(strings.TrimSpace(host))
	switch {
	case r.direct[h]:
		return HostDirect
	case r.relay[h]:
		return HostRelay
	default:
		return HostBlocked
	}
}

// Allowed reports whether the host survives extraction at all.
func (r DomainRules) Allowed(host string) bool {
	return r.Classify(host) != HostBlocked
}
