// Package httpx provides the shared HTTP client for upstream requests.
//
// The Client in this package handles:
//   - A fixed User-Agent header on every request
//   - Timeout handling
//   - Small-body fetches into memory (cover images, API payloads)
//   - Streaming responses for the asset proxy
//
// # Basic Usage
//
//	client := httpx.NewClient()
//
//	// Fetch a small body into memory
//	data, err := client.Get(ctx, coverURL)
//
//	// Stream a large body through to a client
//	resp, err := client.Stream(ctx, audioURL)
//	defer resp.Body.Close()
//	io.Copy(w, resp.Body)
package httpx
