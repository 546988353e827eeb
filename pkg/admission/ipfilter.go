package admission

import (
	"path"
	"strings"
)

// IPFilter evaluates a client address against the configured allow and
// deny lists. Entries are exact addresses or glob patterns such as
// "10.0.*". A non-empty allow list denies by default; the deny list is
// always evaluated afterwards, so a deny entry wins even when an allow
// entry matches the same address.
type IPFilter struct {
	allowed []string
	denied  []string
}

// NewIPFilter builds a filter from the configured allow and deny lists.
func NewIPFilter(allowed, denied []string) *IPFilter {
	return &IPFilter{allowed: allowed, denied: denied}
}

// Check returns nil when the address is admitted, or an IPDeniedError.
func (f *IPFilter) Check(ip string) error {
	if len(f.allowed) > 0 && !matchAny(f.allowed, ip) {
		return &IPDeniedError{IP: ip}
	}
	if matchAny(f.denied, ip) {
		return &IPDeniedError{IP: ip}
	}
	return nil
}

func matchAny(patterns []string, ip string) bool {
	for _, p := range patterns {
		if p == ip {
			return true
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, err := path.Match(p, ip); err == nil && ok {
				return true
			}
		}
	}
	return false
}
