package core

import (
	"fmt"
	"net"
	"net/netip"
)

// ParseIPv4 turns an IPv4 literal or a hostname into the IPv4 address to probe.
func ParseIPv4(address string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(address); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", address)
		}
		return addr, nil
	}

	ipaddr, err := net.ResolveIPAddr("ip4", address)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error while resolving address %s: %w", address, err)
	}

	addr, ok := netip.AddrFromSlice(ipaddr.IP.To4())
	if !ok {
		return netip.Addr{}, fmt.Errorf("address %s did not resolve to IPv4", address)
	}

	return addr, nil
}
