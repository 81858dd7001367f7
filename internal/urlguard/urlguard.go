package urlguard

import (
	"net"
	"net/url"
	"strings"
)

// blockedNetworks are address ranges the service must never fetch from:
// loopback, link local (including the cloud metadata endpoint), the
// private RFC 1918 ranges, and their IPv6 counterparts.
var blockedNetworks []*net.IPNet

func init() {
	cidrs := []string{
		"127.0.0.0/8",
		"169.254.0.0/16",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"100.64.0.0/10",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("urlguard: bad built-in CIDR " + cidr)
		}
		blockedNetworks = append(blockedNetworks, network)
	}
}

// IsAllowed reports whether rawURL is safe for the service to fetch.
//
// A URL is allowed only when it parses, uses the https scheme, has a
// non-empty host that is not a local name, and, if the host is an IP
// literal, the address falls outside every blocked range.
func IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return false
	}

	if ip := net.ParseIP(host); ip != nil {
		return !isBlockedIP(ip)
	}
	return true
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
