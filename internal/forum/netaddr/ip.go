// Package netaddr normalises client addresses before they are stored.
package netaddr

import (
	"net/netip"
	"strings"
)

// NormalizeIP returns the canonical text form of addr. IPv4-mapped IPv6
// addresses collapse to IPv4 and zones are dropped. ok is false for anything
// that is not an IP address.
func NormalizeIP(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		addr = ap.Addr().String()
	}
	ip, err := netip.ParseAddr(strings.Trim(addr, "[]"))
	if err != nil {
		return "", false
	}
	ip = ip.Unmap().WithZone("")
	return ip.String(), true
}
