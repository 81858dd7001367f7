// Package urlguard validates externally supplied URLs before the
// service fetches them.
//
// Generated cover art arrives as a URL from a third-party API; fetching
// it blindly would let a compromised or spoofed upstream point the
// service at internal infrastructure (cloud metadata endpoints, link
// local addresses, private ranges). IsAllowed accepts only HTTPS URLs
// whose host is neither a local name nor an address inside a blocked
// network range.
package urlguard
