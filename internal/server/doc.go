// Package server exposes the catalog and sync pipeline over HTTP.
//
// The router is built on chi with CORS, per-endpoint rate limits on
// the expensive trigger endpoints, and security headers on every
// response. Media routes (audio proxy, cover files) relax the
// cross-origin resource policy to same-site so players can embed them,
// while API routes stay same-origin.
package server
